package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/studere/studere-api/internal/models"
)

// AssignmentRepository handles persistence for course assignments.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository instantiates an assignment repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// ListByUser returns assignments owned by the user, optionally scoped to a course.
func (r *AssignmentRepository) ListByUser(ctx context.Context, userID, courseID string) ([]models.Assignment, error) {
	query := `SELECT a.id, a.title, a.type, a.description, a.course_id, a.score, a.due_at, a.created_at
FROM assignments a
JOIN courses c ON a.course_id = c.id
JOIN terms t ON c.term_id = t.id
WHERE t.user_id = $1`
	args := []interface{}{userID}
	if courseID != "" {
		query += " AND a.course_id = $2"
		args = append(args, courseID)
	}
	query += " ORDER BY a.due_at ASC"

	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, args...); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}

// FindByID loads an assignment by identifier.
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	const query = `SELECT id, title, type, description, course_id, score, due_at, created_at FROM assignments WHERE id = $1`
	var assignment models.Assignment
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find assignment by id: %w", err)
	}
	return &assignment, nil
}

// Create inserts a new assignment record.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	const query = `INSERT INTO assignments (id, title, type, description, course_id, score, due_at, created_at) VALUES (:id, :title, :type, :description, :course_id, :score, :due_at, NOW())`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// Update modifies an existing assignment.
func (r *AssignmentRepository) Update(ctx context.Context, assignment *models.Assignment) error {
	const query = `UPDATE assignments SET title = :title, type = :type, description = :description, course_id = :course_id, score = :score, due_at = :due_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("update assignment: %w", err)
	}
	return nil
}

// Delete removes an assignment permanently.
func (r *AssignmentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM assignments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	return nil
}
