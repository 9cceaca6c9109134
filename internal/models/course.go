package models

import "time"

// Course models a course taught within a term.
type Course struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description,omitempty"`
	TermID      string    `db:"term_id" json:"term_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// CreateCourseRequest captures the payload for creating a course.
type CreateCourseRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=120"`
	Description string `json:"description" validate:"max=2000"`
	TermID      string `json:"term_id" validate:"required,uuid4"`
}

// UpdateCourseRequest carries a partial course update. Nil fields are left
// unchanged.
type UpdateCourseRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=120"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}
