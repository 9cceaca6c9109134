package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/studere/studere-api/pkg/errors"
)

func newActiveSession(startedAt time.Time) *StudySession {
	return &StudySession{
		ID:        "sess-1",
		Title:     "Algebra",
		PlanID:    "plan-1",
		Status:    SessionStatusActive,
		StartedAt: startedAt,
	}
}

func TestStudySessionPauseUnpauseAccounting(t *testing.T) {
	t0 := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	sess := newActiveSession(t0)

	require.NoError(t, sess.Pause(t0.Add(10*time.Second)))
	assert.Equal(t, SessionStatusPaused, sess.Status)
	require.NotNil(t, sess.LastPauseTime)

	require.NoError(t, sess.Unpause(t0.Add(40*time.Second)))
	assert.Equal(t, SessionStatusActive, sess.Status)
	assert.Nil(t, sess.LastPauseTime)
	assert.InDelta(t, 30.0, sess.TotalPauseTime, 0.001)

	clamped, err := sess.End(t0.Add(100 * time.Second))
	require.NoError(t, err)
	assert.False(t, clamped)
	assert.InDelta(t, 30.0, sess.TotalPauseTime, 0.001)
	assert.InDelta(t, 70.0, sess.StudyTime, 0.001)
	require.NotNil(t, sess.EndedAt)
	assert.Equal(t, t0.Add(100*time.Second), *sess.EndedAt)
}

func TestStudySessionMultiplePauseIntervalsSum(t *testing.T) {
	t0 := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	sess := newActiveSession(t0)

	require.NoError(t, sess.Pause(t0.Add(5*time.Second)))
	require.NoError(t, sess.Unpause(t0.Add(15*time.Second)))
	require.NoError(t, sess.Pause(t0.Add(20*time.Second)))
	require.NoError(t, sess.Unpause(t0.Add(45*time.Second)))

	assert.InDelta(t, 35.0, sess.TotalPauseTime, 0.001)

	_, err := sess.End(t0.Add(60 * time.Second))
	require.NoError(t, err)
	assert.InDelta(t, 25.0, sess.StudyTime, 0.001)
}

func TestStudySessionEndWhilePausedFoldsOpenInterval(t *testing.T) {
	t0 := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	sess := newActiveSession(t0)

	require.NoError(t, sess.Pause(t0.Add(30*time.Second)))

	clamped, err := sess.End(t0.Add(90 * time.Second))
	require.NoError(t, err)
	assert.False(t, clamped)
	assert.Nil(t, sess.LastPauseTime)
	assert.InDelta(t, 60.0, sess.TotalPauseTime, 0.001)
	assert.InDelta(t, 30.0, sess.StudyTime, 0.001)
}

func TestStudySessionInvalidTransitions(t *testing.T) {
	t0 := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("pause paused session", func(t *testing.T) {
		sess := newActiveSession(t0)
		require.NoError(t, sess.Pause(t0.Add(time.Second)))
		err := sess.Pause(t0.Add(2 * time.Second))
		assert.True(t, appErrors.Is(err, appErrors.ErrInvalidTransition))
	})

	t.Run("unpause active session", func(t *testing.T) {
		sess := newActiveSession(t0)
		err := sess.Unpause(t0.Add(time.Second))
		assert.True(t, appErrors.Is(err, appErrors.ErrInvalidTransition))
	})

	t.Run("completed session is terminal", func(t *testing.T) {
		sess := newActiveSession(t0)
		_, err := sess.End(t0.Add(time.Second))
		require.NoError(t, err)

		assert.True(t, appErrors.Is(sess.Pause(t0.Add(2*time.Second)), appErrors.ErrInvalidTransition))
		assert.True(t, appErrors.Is(sess.Unpause(t0.Add(2*time.Second)), appErrors.ErrInvalidTransition))
		_, err = sess.End(t0.Add(2 * time.Second))
		assert.True(t, appErrors.Is(err, appErrors.ErrInvalidTransition))
	})
}

func TestStudySessionUnpauseWithoutPauseTimestamp(t *testing.T) {
	t0 := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	sess := newActiveSession(t0)
	sess.Status = SessionStatusPaused

	require.NoError(t, sess.Unpause(t0.Add(10*time.Second)))
	assert.Zero(t, sess.TotalPauseTime)
	assert.Equal(t, SessionStatusActive, sess.Status)
}

func TestStudySessionNegativeStudyTimeClamped(t *testing.T) {
	t0 := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	sess := newActiveSession(t0)
	sess.TotalPauseTime = 120

	clamped, err := sess.End(t0.Add(60 * time.Second))
	require.NoError(t, err)
	assert.True(t, clamped)
	assert.Zero(t, sess.StudyTime)
}

func TestStudySessionOpen(t *testing.T) {
	sess := &StudySession{Status: SessionStatusActive}
	assert.True(t, sess.Open())
	sess.Status = SessionStatusPaused
	assert.True(t, sess.Open())
	sess.Status = SessionStatusCompleted
	assert.False(t, sess.Open())
}
