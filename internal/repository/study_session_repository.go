package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/studere/studere-api/internal/models"
)

// StudySessionRepository handles persistence for study sessions.
type StudySessionRepository struct {
	db *sqlx.DB
}

// NewStudySessionRepository instantiates a study session repository.
func NewStudySessionRepository(db *sqlx.DB) *StudySessionRepository {
	return &StudySessionRepository{db: db}
}

// CreateIfNoOpen inserts the session only when the plan has no active or
// paused session. The existence check and the insert run as one statement so
// concurrent starts on the same plan cannot both succeed. Returns false when
// the guard rejected the insert.
func (r *StudySessionRepository) CreateIfNoOpen(ctx context.Context, session *models.StudySession) (bool, error) {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}

	const query = `INSERT INTO study_sessions (id, title, description, notes, plan_id, status, started_at, total_pause_time, study_time)
SELECT $1, $2, $3, $4, $5, $6, $7, 0, 0
WHERE NOT EXISTS (
	SELECT 1 FROM study_sessions WHERE plan_id = $5 AND status IN ($8, $9)
)`
	res, err := r.db.ExecContext(ctx, query,
		session.ID,
		session.Title,
		session.Description,
		session.Notes,
		session.PlanID,
		session.Status,
		session.StartedAt,
		models.SessionStatusActive,
		models.SessionStatusPaused,
	)
	if err != nil {
		return false, fmt.Errorf("create study session: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("create study session rows affected: %w", err)
	}
	return affected == 1, nil
}

// FindByID loads a session by identifier.
func (r *StudySessionRepository) FindByID(ctx context.Context, id string) (*models.StudySession, error) {
	const query = `SELECT id, title, description, notes, plan_id, status, started_at, ended_at, last_pause_time, total_pause_time, study_time FROM study_sessions WHERE id = $1`
	var session models.StudySession
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find study session by id: %w", err)
	}
	return &session, nil
}

// FindOpenByPlan returns the single active-or-paused session of a plan.
func (r *StudySessionRepository) FindOpenByPlan(ctx context.Context, planID string) (*models.StudySession, error) {
	const query = `SELECT id, title, description, notes, plan_id, status, started_at, ended_at, last_pause_time, total_pause_time, study_time FROM study_sessions WHERE plan_id = $1 AND status IN ($2, $3) LIMIT 1`
	var session models.StudySession
	if err := r.db.GetContext(ctx, &session, query, planID, models.SessionStatusActive, models.SessionStatusPaused); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find open study session: %w", err)
	}
	return &session, nil
}

// UpdateState persists the timing and status fields after a transition.
func (r *StudySessionRepository) UpdateState(ctx context.Context, session *models.StudySession) error {
	const query = `UPDATE study_sessions SET status = :status, ended_at = :ended_at, last_pause_time = :last_pause_time, total_pause_time = :total_pause_time, study_time = :study_time WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("update study session state: %w", err)
	}
	return nil
}

// UpdateDetails persists the editable descriptive fields.
func (r *StudySessionRepository) UpdateDetails(ctx context.Context, session *models.StudySession) error {
	const query = `UPDATE study_sessions SET title = :title, description = :description, notes = :notes WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("update study session details: %w", err)
	}
	return nil
}

// Delete removes a session regardless of its state.
func (r *StudySessionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM study_sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete study session: %w", err)
	}
	return nil
}

// ListByUser returns every session reachable from the user's plans.
func (r *StudySessionRepository) ListByUser(ctx context.Context, userID string) ([]models.StudySession, error) {
	const query = `SELECT s.id, s.title, s.description, s.notes, s.plan_id, s.status, s.started_at, s.ended_at, s.last_pause_time, s.total_pause_time, s.study_time
FROM study_sessions s
JOIN study_plans p ON s.plan_id = p.id
JOIN courses c ON p.course_id = c.id
JOIN terms t ON c.term_id = t.id
WHERE t.user_id = $1
ORDER BY s.started_at DESC`
	var sessions []models.StudySession
	if err := r.db.SelectContext(ctx, &sessions, query, userID); err != nil {
		return nil, fmt.Errorf("list study sessions: %w", err)
	}
	return sessions, nil
}

// ReplaceTopics swaps the session's topic associations wholesale.
func (r *StudySessionRepository) ReplaceTopics(ctx context.Context, sessionID string, topicIDs []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace topics tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM study_session_topics WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("clear session topics: %w", err)
	}

	for _, topicID := range topicIDs {
		if _, err = tx.ExecContext(ctx, `INSERT INTO study_session_topics (session_id, topic_id) VALUES ($1, $2)`, sessionID, topicID); err != nil {
			return fmt.Errorf("attach session topic: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit replace topics tx: %w", err)
	}
	return nil
}

// ListTopics returns topics linked to a session.
func (r *StudySessionRepository) ListTopics(ctx context.Context, sessionID string) ([]models.StudyPlanTopic, error) {
	const query = `SELECT t.id, t.title, t.description, t.plan_id, t.completed_at, t.created_at
FROM study_plan_topics t
JOIN study_session_topics st ON st.topic_id = t.id
WHERE st.session_id = $1
ORDER BY t.created_at ASC`
	var topics []models.StudyPlanTopic
	if err := r.db.SelectContext(ctx, &topics, query, sessionID); err != nil {
		return nil, fmt.Errorf("list session topics: %w", err)
	}
	return topics, nil
}
