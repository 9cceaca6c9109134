package models

import (
	"time"

	appErrors "github.com/studere/studere-api/pkg/errors"
)

// SessionStatus enumerates the study session lifecycle states.
type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "ACTIVE"
	SessionStatusPaused    SessionStatus = "PAUSED"
	SessionStatusCompleted SessionStatus = "COMPLETED"
)

// StudySession is a timed study interval recorded against a plan.
//
// Timing fields obey the following rules: last_pause_time is set iff the
// session is paused, total_pause_time accumulates only on unpause, and
// study_time is written exactly once when the session completes.
type StudySession struct {
	ID             string        `db:"id" json:"id"`
	Title          string        `db:"title" json:"title"`
	Description    string        `db:"description" json:"description,omitempty"`
	Notes          string        `db:"notes" json:"notes,omitempty"`
	PlanID         string        `db:"plan_id" json:"plan_id"`
	Status         SessionStatus `db:"status" json:"status"`
	StartedAt      time.Time     `db:"started_at" json:"started_at"`
	EndedAt        *time.Time    `db:"ended_at" json:"ended_at,omitempty"`
	LastPauseTime  *time.Time    `db:"last_pause_time" json:"last_pause_time,omitempty"`
	TotalPauseTime float64       `db:"total_pause_time" json:"total_pause_time"`
	StudyTime      float64       `db:"study_time" json:"study_time"`

	Topics []StudyPlanTopic `db:"-" json:"topics,omitempty"`
}

// StartSessionRequest captures the payload for starting a session.
type StartSessionRequest struct {
	Title       string   `json:"title" validate:"required,min=1,max=200"`
	Description string   `json:"description" validate:"max=2000"`
	PlanID      string   `json:"plan_id" validate:"required,uuid4"`
	TopicIDs    []string `json:"topic_ids" validate:"dive,uuid4"`
}

// UpdateSessionRequest carries a partial session update. Nil fields are
// left unchanged; TopicIDs, when present, replaces the topic set wholesale.
type UpdateSessionRequest struct {
	Title       *string   `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string   `json:"description" validate:"omitempty,max=2000"`
	Notes       *string   `json:"notes" validate:"omitempty,max=10000"`
	TopicIDs    *[]string `json:"topic_ids" validate:"omitempty,dive,uuid4"`
}

// Open reports whether the session still accepts transitions.
func (s *StudySession) Open() bool {
	return s.Status == SessionStatusActive || s.Status == SessionStatusPaused
}

// Pause transitions an active session to paused, marking the start of the
// pause interval.
func (s *StudySession) Pause(now time.Time) error {
	if s.Status != SessionStatusActive {
		return appErrors.Clone(appErrors.ErrInvalidTransition, "only an active session can be paused")
	}
	s.Status = SessionStatusPaused
	pausedAt := now
	s.LastPauseTime = &pausedAt
	return nil
}

// Unpause transitions a paused session back to active, folding the elapsed
// pause interval into the running total. A missing last_pause_time counts as
// a zero-length pause.
func (s *StudySession) Unpause(now time.Time) error {
	if s.Status != SessionStatusPaused {
		return appErrors.Clone(appErrors.ErrInvalidTransition, "only a paused session can be unpaused")
	}
	if s.LastPauseTime != nil {
		s.TotalPauseTime += now.Sub(*s.LastPauseTime).Seconds()
	}
	s.Status = SessionStatusActive
	s.LastPauseTime = nil
	return nil
}

// End completes the session. A paused session first folds its open pause
// interval, so pause time is neither lost nor double counted. The computed
// study time is (ended_at - started_at) - total_pause_time in seconds; a
// negative result indicates clock skew or corrupted pause accounting and is
// clamped, with the clamp reported to the caller.
func (s *StudySession) End(now time.Time) (clamped bool, err error) {
	switch s.Status {
	case SessionStatusCompleted:
		return false, appErrors.Clone(appErrors.ErrInvalidTransition, "session is already completed")
	case SessionStatusPaused:
		if s.LastPauseTime != nil {
			s.TotalPauseTime += now.Sub(*s.LastPauseTime).Seconds()
		}
		s.LastPauseTime = nil
	}

	endedAt := now
	s.EndedAt = &endedAt
	s.Status = SessionStatusCompleted

	s.StudyTime = now.Sub(s.StartedAt).Seconds() - s.TotalPauseTime
	if s.StudyTime < 0 {
		s.StudyTime = 0
		return true, nil
	}
	return false, nil
}
