package models

import "time"

// Term models an academic term belonging to a single user.
type Term struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	UserID    string    `db:"user_id" json:"user_id"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CreateTermRequest captures the payload for creating a term.
type CreateTermRequest struct {
	Name      string    `json:"name" validate:"required,min=1,max=120"`
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required"`
}

// UpdateTermRequest carries a partial term update. Nil fields are left
// unchanged.
type UpdateTermRequest struct {
	Name      *string    `json:"name" validate:"omitempty,min=1,max=120"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}
