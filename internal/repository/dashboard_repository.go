package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/studere/studere-api/internal/dto"
	"github.com/studere/studere-api/internal/models"
)

// DashboardRepository aggregates completed study sessions for reporting.
// study_time is written once per session at completion, so summing it is
// equivalent to recomputing (ended_at - started_at) - total_pause_time.
type DashboardRepository struct {
	db *sqlx.DB
}

// NewDashboardRepository instantiates a dashboard repository.
func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// StudyTimeByCourse returns total studied seconds per course for a user.
func (r *DashboardRepository) StudyTimeByCourse(ctx context.Context, userID string) ([]dto.CourseStudyTime, error) {
	const query = `SELECT c.name AS course, COALESCE(SUM(s.study_time), 0) AS seconds
FROM study_sessions s
JOIN study_plans p ON s.plan_id = p.id
JOIN courses c ON p.course_id = c.id
JOIN terms t ON c.term_id = t.id
WHERE t.user_id = $1 AND s.status = $2
GROUP BY c.name
ORDER BY seconds DESC`
	var rows []dto.CourseStudyTime
	if err := r.db.SelectContext(ctx, &rows, query, userID, models.SessionStatusCompleted); err != nil {
		return nil, fmt.Errorf("study time by course: %w", err)
	}
	return rows, nil
}

// SessionDatesSince returns the distinct dates on which the user started at
// least one session, from the given date onward.
func (r *DashboardRepository) SessionDatesSince(ctx context.Context, userID string, since time.Time) ([]time.Time, error) {
	const query = `SELECT DISTINCT DATE(s.started_at) AS study_date
FROM study_sessions s
JOIN study_plans p ON s.plan_id = p.id
JOIN courses c ON p.course_id = c.id
JOIN terms t ON c.term_id = t.id
WHERE t.user_id = $1 AND s.started_at >= $2
ORDER BY study_date ASC`
	var dates []time.Time
	if err := r.db.SelectContext(ctx, &dates, query, userID, since); err != nil {
		return nil, fmt.Errorf("session dates since: %w", err)
	}
	return dates, nil
}

// WeekdayDistribution returns studied seconds keyed by ISO weekday (1=Monday).
func (r *DashboardRepository) WeekdayDistribution(ctx context.Context, userID string) ([]dto.WeekdayStudyTime, error) {
	const query = `SELECT EXTRACT(ISODOW FROM s.started_at)::int AS weekday, COALESCE(SUM(s.study_time), 0) AS seconds
FROM study_sessions s
JOIN study_plans p ON s.plan_id = p.id
JOIN courses c ON p.course_id = c.id
JOIN terms t ON c.term_id = t.id
WHERE t.user_id = $1 AND s.status = $2
GROUP BY weekday
ORDER BY weekday ASC`
	var rows []dto.WeekdayStudyTime
	if err := r.db.SelectContext(ctx, &rows, query, userID, models.SessionStatusCompleted); err != nil {
		return nil, fmt.Errorf("weekday distribution: %w", err)
	}
	return rows, nil
}
