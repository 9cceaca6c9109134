package models

import "time"

// AssignmentType distinguishes graded work categories.
type AssignmentType string

const (
	AssignmentTypeProject AssignmentType = "PROJECT"
	AssignmentTypeExam    AssignmentType = "EXAM"
)

// Valid reports whether the type is one of the known categories.
func (t AssignmentType) Valid() bool {
	return t == AssignmentTypeProject || t == AssignmentTypeExam
}

// Assignment models a graded deliverable attached to a course.
type Assignment struct {
	ID          string         `db:"id" json:"id"`
	Title       string         `db:"title" json:"title"`
	Type        AssignmentType `db:"type" json:"type"`
	Description string         `db:"description" json:"description,omitempty"`
	CourseID    string         `db:"course_id" json:"course_id"`
	Score       *int           `db:"score" json:"score,omitempty"`
	DueAt       time.Time      `db:"due_at" json:"due_at"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
}

// CreateAssignmentRequest captures the payload for creating an assignment.
type CreateAssignmentRequest struct {
	Title       string         `json:"title" validate:"required,min=1,max=200"`
	Type        AssignmentType `json:"type" validate:"required,oneof=PROJECT EXAM"`
	Description string         `json:"description" validate:"max=2000"`
	CourseID    string         `json:"course_id" validate:"required,uuid4"`
	Score       *int           `json:"score" validate:"omitempty,min=0,max=100"`
	DueAt       time.Time      `json:"due_at" validate:"required"`
}

// UpdateAssignmentRequest carries a partial assignment update. Nil fields
// are left unchanged.
type UpdateAssignmentRequest struct {
	Title       *string         `json:"title" validate:"omitempty,min=1,max=200"`
	Type        *AssignmentType `json:"type" validate:"omitempty,oneof=PROJECT EXAM"`
	Description *string         `json:"description" validate:"omitempty,max=2000"`
	Score       *int            `json:"score" validate:"omitempty,min=0,max=100"`
	DueAt       *time.Time      `json:"due_at"`
}
