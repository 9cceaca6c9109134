package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studere/studere-api/internal/models"
)

func TestCreateIfNoOpenInserts(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudySessionRepository(db)

	mock.ExpectExec("INSERT INTO study_sessions").
		WillReturnResult(sqlmock.NewResult(1, 1))

	session := &models.StudySession{
		Title:     "Morning review",
		PlanID:    "plan-1",
		Status:    models.SessionStatusActive,
		StartedAt: time.Now(),
	}
	inserted, err := repo.CreateIfNoOpen(context.Background(), session)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.NotEmpty(t, session.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateIfNoOpenRejectedByGuard(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudySessionRepository(db)

	// the guard subquery finds an open session, so zero rows are inserted
	mock.ExpectExec("INSERT INTO study_sessions").
		WillReturnResult(sqlmock.NewResult(0, 0))

	session := &models.StudySession{
		Title:     "Second attempt",
		PlanID:    "plan-1",
		Status:    models.SessionStatusActive,
		StartedAt: time.Now(),
	}
	inserted, err := repo.CreateIfNoOpen(context.Background(), session)
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindOpenByPlan(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudySessionRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "title", "description", "notes", "plan_id", "status", "started_at", "ended_at", "last_pause_time", "total_pause_time", "study_time"}).
		AddRow("s1", "Morning review", "", "", "plan-1", string(models.SessionStatusPaused), now, nil, now, 12.5, 0.0)
	mock.ExpectQuery("SELECT (.+) FROM study_sessions WHERE plan_id").
		WithArgs("plan-1", string(models.SessionStatusActive), string(models.SessionStatusPaused)).
		WillReturnRows(rows)

	session, err := repo.FindOpenByPlan(context.Background(), "plan-1")
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusPaused, session.Status)
	assert.Equal(t, 12.5, session.TotalPauseTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceTopics(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudySessionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM study_session_topics").
		WithArgs("s1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO study_session_topics").
		WithArgs("s1", "t1").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO study_session_topics").
		WithArgs("s1", "t2").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.ReplaceTopics(context.Background(), "s1", []string{"t1", "t2"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
