package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/studere/studere-api/internal/models"
	appErrors "github.com/studere/studere-api/pkg/errors"
)

type mockSessionRepo struct {
	sessions    map[string]*models.StudySession
	hasOpen     bool
	topicsByID  map[string]*models.StudyPlanTopic
	attached    map[string][]string
	stateSaved  int
	deletedIDs  []string
	listedByUsr []models.StudySession
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{
		sessions:   make(map[string]*models.StudySession),
		topicsByID: make(map[string]*models.StudyPlanTopic),
		attached:   make(map[string][]string),
	}
}

func (m *mockSessionRepo) CreateIfNoOpen(ctx context.Context, session *models.StudySession) (bool, error) {
	if m.hasOpen {
		return false, nil
	}
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	m.sessions[session.ID] = session
	m.hasOpen = true
	return true, nil
}

func (m *mockSessionRepo) FindByID(ctx context.Context, id string) (*models.StudySession, error) {
	session, ok := m.sessions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *session
	return &copied, nil
}

func (m *mockSessionRepo) FindOpenByPlan(ctx context.Context, planID string) (*models.StudySession, error) {
	for _, session := range m.sessions {
		if session.PlanID == planID && session.Open() {
			return session, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockSessionRepo) UpdateState(ctx context.Context, session *models.StudySession) error {
	m.stateSaved++
	m.sessions[session.ID] = session
	if !session.Open() {
		m.hasOpen = false
	}
	return nil
}

func (m *mockSessionRepo) UpdateDetails(ctx context.Context, session *models.StudySession) error {
	m.sessions[session.ID] = session
	return nil
}

func (m *mockSessionRepo) Delete(ctx context.Context, id string) error {
	m.deletedIDs = append(m.deletedIDs, id)
	delete(m.sessions, id)
	return nil
}

func (m *mockSessionRepo) ListByUser(ctx context.Context, userID string) ([]models.StudySession, error) {
	return m.listedByUsr, nil
}

func (m *mockSessionRepo) ReplaceTopics(ctx context.Context, sessionID string, topicIDs []string) error {
	m.attached[sessionID] = topicIDs
	return nil
}

func (m *mockSessionRepo) ListTopics(ctx context.Context, sessionID string) ([]models.StudyPlanTopic, error) {
	var topics []models.StudyPlanTopic
	for _, id := range m.attached[sessionID] {
		if topic, ok := m.topicsByID[id]; ok {
			topics = append(topics, *topic)
		}
	}
	return topics, nil
}

func (m *mockSessionRepo) FindTopicByID(ctx context.Context, id string) (*models.StudyPlanTopic, error) {
	topic, ok := m.topicsByID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return topic, nil
}

func newSessionService(repo *mockSessionRepo) *StudySessionService {
	ownership := NewOwnershipService(&mockOwnerResolver{owner: "u1"}, zap.NewNop())
	return NewStudySessionService(repo, repo, ownership, nil, validator.New(), zap.NewNop())
}

const testPlanID = "0d4f9f6e-3f2a-4d8e-9a6a-0f0e0d0c0b0a"

func TestStartSession(t *testing.T) {
	repo := newMockSessionRepo()
	svc := newSessionService(repo)

	session, err := svc.Start(context.Background(), "u1", models.StartSessionRequest{
		Title:  "Morning review",
		PlanID: testPlanID,
	})
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusActive, session.Status)
	assert.False(t, session.StartedAt.IsZero())
}

func TestStartSessionConflict(t *testing.T) {
	repo := newMockSessionRepo()
	repo.hasOpen = true
	svc := newSessionService(repo)

	_, err := svc.Start(context.Background(), "u1", models.StartSessionRequest{
		Title:  "Second attempt",
		PlanID: testPlanID,
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestPauseUnpauseEndAccumulatesPauseTime(t *testing.T) {
	repo := newMockSessionRepo()
	svc := newSessionService(repo)

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	session, err := svc.Start(context.Background(), "u1", models.StartSessionRequest{
		Title:  "Timed session",
		PlanID: testPlanID,
	})
	require.NoError(t, err)

	svc.now = func() time.Time { return base.Add(10 * time.Second) }
	paused, err := svc.Pause(context.Background(), "u1", session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusPaused, paused.Status)
	require.NotNil(t, paused.LastPauseTime)

	svc.now = func() time.Time { return base.Add(40 * time.Second) }
	resumed, err := svc.Unpause(context.Background(), "u1", session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusActive, resumed.Status)
	assert.InDelta(t, 30.0, resumed.TotalPauseTime, 0.001)
	assert.Nil(t, resumed.LastPauseTime)

	svc.now = func() time.Time { return base.Add(100 * time.Second) }
	ended, err := svc.End(context.Background(), "u1", session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusCompleted, ended.Status)
	assert.InDelta(t, 70.0, ended.StudyTime, 0.001)
}

func TestEndWhilePausedFoldsOpenInterval(t *testing.T) {
	repo := newMockSessionRepo()
	svc := newSessionService(repo)

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	session, err := svc.Start(context.Background(), "u1", models.StartSessionRequest{
		Title:  "Paused finish",
		PlanID: testPlanID,
	})
	require.NoError(t, err)

	svc.now = func() time.Time { return base.Add(20 * time.Second) }
	_, err = svc.Pause(context.Background(), "u1", session.ID)
	require.NoError(t, err)

	svc.now = func() time.Time { return base.Add(60 * time.Second) }
	ended, err := svc.End(context.Background(), "u1", session.ID)
	require.NoError(t, err)
	assert.InDelta(t, 40.0, ended.TotalPauseTime, 0.001)
	assert.InDelta(t, 20.0, ended.StudyTime, 0.001)
}

func TestPauseCompletedSession(t *testing.T) {
	repo := newMockSessionRepo()
	svc := newSessionService(repo)

	session, err := svc.Start(context.Background(), "u1", models.StartSessionRequest{
		Title:  "Done",
		PlanID: testPlanID,
	})
	require.NoError(t, err)
	_, err = svc.End(context.Background(), "u1", session.ID)
	require.NoError(t, err)

	_, err = svc.Pause(context.Background(), "u1", session.ID)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidTransition))

	_, err = svc.End(context.Background(), "u1", session.ID)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidTransition))
}

func TestUpdateSessionReplacesTopics(t *testing.T) {
	repo := newMockSessionRepo()
	topicID := "7c0a5b1e-2d3c-4e5f-8a9b-1c2d3e4f5a6b"
	repo.topicsByID[topicID] = &models.StudyPlanTopic{ID: topicID, Title: "Recursion", PlanID: testPlanID}
	svc := newSessionService(repo)

	session, err := svc.Start(context.Background(), "u1", models.StartSessionRequest{
		Title:  "Editable",
		PlanID: testPlanID,
	})
	require.NoError(t, err)

	notes := "covered chapters 1-3"
	topicIDs := []string{topicID}
	updated, err := svc.Update(context.Background(), "u1", session.ID, models.UpdateSessionRequest{
		Notes:    &notes,
		TopicIDs: &topicIDs,
	})
	require.NoError(t, err)
	assert.Equal(t, notes, updated.Notes)
	require.Len(t, updated.Topics, 1)
	assert.Equal(t, "Recursion", updated.Topics[0].Title)
}

func TestUpdateSessionRejectsForeignPlanTopic(t *testing.T) {
	repo := newMockSessionRepo()
	topicID := "7c0a5b1e-2d3c-4e5f-8a9b-1c2d3e4f5a6b"
	repo.topicsByID[topicID] = &models.StudyPlanTopic{ID: topicID, PlanID: "another-plan"}
	svc := newSessionService(repo)

	session, err := svc.Start(context.Background(), "u1", models.StartSessionRequest{
		Title:  "Strict",
		PlanID: testPlanID,
	})
	require.NoError(t, err)

	topicIDs := []string{topicID}
	_, err = svc.Update(context.Background(), "u1", session.ID, models.UpdateSessionRequest{TopicIDs: &topicIDs})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestDeleteSession(t *testing.T) {
	repo := newMockSessionRepo()
	svc := newSessionService(repo)

	session, err := svc.Start(context.Background(), "u1", models.StartSessionRequest{
		Title:  "Disposable",
		PlanID: testPlanID,
	})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), "u1", session.ID)
	require.NoError(t, err)
	assert.Contains(t, repo.deletedIDs, session.ID)
}
