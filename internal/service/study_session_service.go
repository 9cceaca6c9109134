package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/studere/studere-api/internal/models"
	"github.com/studere/studere-api/internal/repository"
	appErrors "github.com/studere/studere-api/pkg/errors"
)

type studySessionRepository interface {
	CreateIfNoOpen(ctx context.Context, session *models.StudySession) (bool, error)
	FindByID(ctx context.Context, id string) (*models.StudySession, error)
	FindOpenByPlan(ctx context.Context, planID string) (*models.StudySession, error)
	UpdateState(ctx context.Context, session *models.StudySession) error
	UpdateDetails(ctx context.Context, session *models.StudySession) error
	Delete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string) ([]models.StudySession, error)
	ReplaceTopics(ctx context.Context, sessionID string, topicIDs []string) error
	ListTopics(ctx context.Context, sessionID string) ([]models.StudyPlanTopic, error)
}

type topicFinder interface {
	FindTopicByID(ctx context.Context, id string) (*models.StudyPlanTopic, error)
}

// StudySessionService drives the session lifecycle. All timing transitions
// go through the state methods on models.StudySession so accounting rules
// live in one place.
type StudySessionService struct {
	repo      studySessionRepository
	topics    topicFinder
	ownership *OwnershipService
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewStudySessionService constructs a StudySessionService.
func NewStudySessionService(repo studySessionRepository, topics topicFinder, ownership *OwnershipService, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *StudySessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &StudySessionService{
		repo:      repo,
		topics:    topics,
		ownership: ownership,
		cache:     cache,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Start opens a session on one of the user's plans. A plan can hold at most
// one active-or-paused session; a second start reports a conflict.
func (s *StudySessionService) Start(ctx context.Context, userID string, req models.StartSessionRequest) (*models.StudySession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}
	if err := s.ownership.Authorize(ctx, repository.ResourcePlan, req.PlanID, userID); err != nil {
		return nil, err
	}
	if err := s.checkTopicsBelongToPlan(ctx, userID, req.PlanID, req.TopicIDs); err != nil {
		return nil, err
	}

	session := &models.StudySession{
		Title:       req.Title,
		Description: req.Description,
		PlanID:      req.PlanID,
		Status:      models.SessionStatusActive,
		StartedAt:   s.now(),
	}
	inserted, err := s.repo.CreateIfNoOpen(ctx, session)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to start session")
	}
	if !inserted {
		return nil, appErrors.Clone(appErrors.ErrConflict, "plan already has an open session")
	}

	if len(req.TopicIDs) > 0 {
		if err := s.repo.ReplaceTopics(ctx, session.ID, req.TopicIDs); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to attach session topics")
		}
	}

	s.logger.Info("study session started",
		zap.String("session_id", session.ID),
		zap.String("plan_id", session.PlanID))
	return s.loadWithTopics(ctx, session)
}

// Get returns one of the user's sessions together with its topics.
func (s *StudySessionService) Get(ctx context.Context, userID, id string) (*models.StudySession, error) {
	session, err := s.authorizeAndLoad(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return s.loadWithTopics(ctx, session)
}

// List returns every session reachable from the user's plans.
func (s *StudySessionService) List(ctx context.Context, userID string) ([]models.StudySession, error) {
	sessions, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	if sessions == nil {
		sessions = []models.StudySession{}
	}
	return sessions, nil
}

// Pause suspends an active session.
func (s *StudySessionService) Pause(ctx context.Context, userID, id string) (*models.StudySession, error) {
	session, err := s.authorizeAndLoad(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := session.Pause(s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateState(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to pause session")
	}
	return session, nil
}

// Unpause resumes a paused session.
func (s *StudySessionService) Unpause(ctx context.Context, userID, id string) (*models.StudySession, error) {
	session, err := s.authorizeAndLoad(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := session.Unpause(s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateState(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to unpause session")
	}
	return session, nil
}

// End completes a session and freezes its study time. Cached dashboard
// aggregates for the user are invalidated since they just changed.
func (s *StudySessionService) End(ctx context.Context, userID, id string) (*models.StudySession, error) {
	session, err := s.authorizeAndLoad(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	clamped, err := session.End(s.now())
	if err != nil {
		return nil, err
	}
	if clamped {
		s.logger.Warn("session study time clamped to zero",
			zap.String("session_id", session.ID),
			zap.Float64("total_pause_time", session.TotalPauseTime))
	}
	if err := s.repo.UpdateState(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to end session")
	}

	if err := s.cache.Invalidate(ctx, fmt.Sprintf("dashboard:%s:*", userID)); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}

	s.logger.Info("study session completed",
		zap.String("session_id", session.ID),
		zap.Float64("study_time", session.StudyTime))
	return session, nil
}

// Update edits the descriptive fields of a session and, when topic ids are
// provided, replaces its topic set wholesale.
func (s *StudySessionService) Update(ctx context.Context, userID, id string, req models.UpdateSessionRequest) (*models.StudySession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}

	session, err := s.authorizeAndLoad(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		session.Title = *req.Title
	}
	if req.Description != nil {
		session.Description = *req.Description
	}
	if req.Notes != nil {
		session.Notes = *req.Notes
	}
	if err := s.repo.UpdateDetails(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update session")
	}

	if req.TopicIDs != nil {
		if err := s.checkTopicsBelongToPlan(ctx, userID, session.PlanID, *req.TopicIDs); err != nil {
			return nil, err
		}
		if err := s.repo.ReplaceTopics(ctx, session.ID, *req.TopicIDs); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to replace session topics")
		}
	}

	return s.loadWithTopics(ctx, session)
}

// Delete removes one of the user's sessions regardless of its state.
func (s *StudySessionService) Delete(ctx context.Context, userID, id string) error {
	if err := s.ownership.Authorize(ctx, repository.ResourceSession, id, userID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete session")
	}
	if err := s.cache.Invalidate(ctx, fmt.Sprintf("dashboard:%s:*", userID)); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
	return nil
}

func (s *StudySessionService) authorizeAndLoad(ctx context.Context, userID, id string) (*models.StudySession, error) {
	if err := s.ownership.Authorize(ctx, repository.ResourceSession, id, userID); err != nil {
		return nil, err
	}
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	return session, nil
}

func (s *StudySessionService) loadWithTopics(ctx context.Context, session *models.StudySession) (*models.StudySession, error) {
	topics, err := s.repo.ListTopics(ctx, session.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session topics")
	}
	session.Topics = topics
	return session, nil
}

// checkTopicsBelongToPlan rejects topic ids that do not exist under the
// session's plan. Foreign topics surface as not-found.
func (s *StudySessionService) checkTopicsBelongToPlan(ctx context.Context, userID, planID string, topicIDs []string) error {
	for _, topicID := range topicIDs {
		if err := s.ownership.Authorize(ctx, repository.ResourceTopic, topicID, userID); err != nil {
			return err
		}
		topic, err := s.topics.FindTopicByID(ctx, topicID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "topic not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load topic")
		}
		if topic.PlanID != planID {
			return appErrors.Clone(appErrors.ErrValidation, "topic does not belong to the session's plan")
		}
	}
	return nil
}
