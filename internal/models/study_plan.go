package models

import "time"

// StudyPlan groups topics and study sessions under a course.
type StudyPlan struct {
	ID        string          `db:"id" json:"id"`
	Title     string          `db:"title" json:"title"`
	CourseID  string          `db:"course_id" json:"course_id"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	Topics    []StudyPlanTopic `db:"-" json:"topics,omitempty"`
}

// StudyPlanTopic is a trackable unit of study within a plan.
type StudyPlanTopic struct {
	ID          string     `db:"id" json:"id"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description,omitempty"`
	PlanID      string     `db:"plan_id" json:"plan_id"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// CreateStudyPlanRequest captures the payload for creating a plan together
// with its initial topics.
type CreateStudyPlanRequest struct {
	Title    string       `json:"title" validate:"required,min=1,max=200"`
	CourseID string       `json:"course_id" validate:"required,uuid4"`
	Topics   []TopicInput `json:"topics" validate:"dive"`
}

// TopicInput is an inline topic definition used on plan creation and AI
// generation.
type TopicInput struct {
	Title       string `json:"title" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

// UpdateStudyPlanRequest carries a partial plan update.
type UpdateStudyPlanRequest struct {
	Title *string `json:"title" validate:"omitempty,min=1,max=200"`
}

// CreateTopicRequest captures the payload for adding a topic to a plan.
type CreateTopicRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

// UpdateTopicRequest carries a partial topic update. Completed toggles the
// completion timestamp when present.
type UpdateTopicRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Completed   *bool   `json:"completed"`
}

// GeneratePlanRequest asks the AI planner to draft a plan for a subject.
type GeneratePlanRequest struct {
	Subject  string `json:"subject" validate:"required,min=1,max=300"`
	CourseID string `json:"course_id" validate:"required,uuid4"`
}
