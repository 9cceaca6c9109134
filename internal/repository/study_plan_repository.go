package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/studere/studere-api/internal/models"
)

// StudyPlanRepository handles persistence for study plans and their topics.
type StudyPlanRepository struct {
	db *sqlx.DB
}

// NewStudyPlanRepository instantiates a study plan repository.
func NewStudyPlanRepository(db *sqlx.DB) *StudyPlanRepository {
	return &StudyPlanRepository{db: db}
}

// ListByUser returns plans owned by the user, optionally scoped to a course.
func (r *StudyPlanRepository) ListByUser(ctx context.Context, userID, courseID string) ([]models.StudyPlan, error) {
	query := `SELECT p.id, p.title, p.course_id, p.created_at
FROM study_plans p
JOIN courses c ON p.course_id = c.id
JOIN terms t ON c.term_id = t.id
WHERE t.user_id = $1`
	args := []interface{}{userID}
	if courseID != "" {
		query += " AND p.course_id = $2"
		args = append(args, courseID)
	}
	query += " ORDER BY p.created_at DESC"

	var plans []models.StudyPlan
	if err := r.db.SelectContext(ctx, &plans, query, args...); err != nil {
		return nil, fmt.Errorf("list study plans: %w", err)
	}
	return plans, nil
}

// FindByID loads a study plan by identifier.
func (r *StudyPlanRepository) FindByID(ctx context.Context, id string) (*models.StudyPlan, error) {
	const query = `SELECT id, title, course_id, created_at FROM study_plans WHERE id = $1`
	var plan models.StudyPlan
	if err := r.db.GetContext(ctx, &plan, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find study plan by id: %w", err)
	}
	return &plan, nil
}

// Create inserts a new study plan record.
func (r *StudyPlanRepository) Create(ctx context.Context, plan *models.StudyPlan) error {
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	plan.CreatedAt = time.Now().UTC()

	const query = `INSERT INTO study_plans (id, title, course_id, created_at) VALUES (:id, :title, :course_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, plan); err != nil {
		return fmt.Errorf("create study plan: %w", err)
	}
	return nil
}

// Update modifies a study plan's mutable fields.
func (r *StudyPlanRepository) Update(ctx context.Context, plan *models.StudyPlan) error {
	const query = `UPDATE study_plans SET title = :title, course_id = :course_id WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, plan); err != nil {
		return fmt.Errorf("update study plan: %w", err)
	}
	return nil
}

// Delete removes a plan; topics and sessions cascade at the schema level.
func (r *StudyPlanRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM study_plans WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete study plan: %w", err)
	}
	return nil
}

// CreateTopics bulk inserts topics for a plan.
func (r *StudyPlanRepository) CreateTopics(ctx context.Context, topics []models.StudyPlanTopic) error {
	if len(topics) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range topics {
		if topics[i].ID == "" {
			topics[i].ID = uuid.NewString()
		}
		topics[i].CreatedAt = now
	}

	const query = `INSERT INTO study_plan_topics (id, title, description, plan_id, completed_at, created_at) VALUES (:id, :title, :description, :plan_id, :completed_at, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, topics); err != nil {
		return fmt.Errorf("create study plan topics: %w", err)
	}
	return nil
}

// ListTopics returns all topics of a plan in creation order.
func (r *StudyPlanRepository) ListTopics(ctx context.Context, planID string) ([]models.StudyPlanTopic, error) {
	const query = `SELECT id, title, description, plan_id, completed_at, created_at FROM study_plan_topics WHERE plan_id = $1 ORDER BY created_at ASC`
	var topics []models.StudyPlanTopic
	if err := r.db.SelectContext(ctx, &topics, query, planID); err != nil {
		return nil, fmt.Errorf("list study plan topics: %w", err)
	}
	return topics, nil
}

// FindTopicByID loads a single topic.
func (r *StudyPlanRepository) FindTopicByID(ctx context.Context, id string) (*models.StudyPlanTopic, error) {
	const query = `SELECT id, title, description, plan_id, completed_at, created_at FROM study_plan_topics WHERE id = $1`
	var topic models.StudyPlanTopic
	if err := r.db.GetContext(ctx, &topic, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find study plan topic by id: %w", err)
	}
	return &topic, nil
}

// UpdateTopic modifies a topic's title, description and completion mark.
func (r *StudyPlanRepository) UpdateTopic(ctx context.Context, topic *models.StudyPlanTopic) error {
	const query = `UPDATE study_plan_topics SET title = :title, description = :description, completed_at = :completed_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, topic); err != nil {
		return fmt.Errorf("update study plan topic: %w", err)
	}
	return nil
}

// DeleteTopic removes a topic permanently.
func (r *StudyPlanRepository) DeleteTopic(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM study_plan_topics WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete study plan topic: %w", err)
	}
	return nil
}
