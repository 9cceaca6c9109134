package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/studere/studere-api/internal/models"
	"github.com/studere/studere-api/internal/repository"
	appErrors "github.com/studere/studere-api/pkg/errors"
)

type studyPlanRepository interface {
	ListByUser(ctx context.Context, userID, courseID string) ([]models.StudyPlan, error)
	FindByID(ctx context.Context, id string) (*models.StudyPlan, error)
	Create(ctx context.Context, plan *models.StudyPlan) error
	Update(ctx context.Context, plan *models.StudyPlan) error
	Delete(ctx context.Context, id string) error
	CreateTopics(ctx context.Context, topics []models.StudyPlanTopic) error
	ListTopics(ctx context.Context, planID string) ([]models.StudyPlanTopic, error)
	FindTopicByID(ctx context.Context, id string) (*models.StudyPlanTopic, error)
	UpdateTopic(ctx context.Context, topic *models.StudyPlanTopic) error
	DeleteTopic(ctx context.Context, id string) error
}

type planDrafter interface {
	Draft(ctx context.Context, subject string) (string, []models.TopicInput, error)
}

// StudyPlanService provides plan and topic management use cases.
type StudyPlanService struct {
	repo      studyPlanRepository
	planner   planDrafter
	ownership *OwnershipService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewStudyPlanService constructs a StudyPlanService. The planner may be nil
// when AI generation is disabled.
func NewStudyPlanService(repo studyPlanRepository, planner planDrafter, ownership *OwnershipService, validate *validator.Validate, logger *zap.Logger) *StudyPlanService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &StudyPlanService{
		repo:      repo,
		planner:   planner,
		ownership: ownership,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// List returns the user's plans, optionally scoped to a course.
func (s *StudyPlanService) List(ctx context.Context, userID, courseID string) ([]models.StudyPlan, error) {
	if courseID != "" {
		if err := s.ownership.Authorize(ctx, repository.ResourceCourse, courseID, userID); err != nil {
			return nil, err
		}
	}
	plans, err := s.repo.ListByUser(ctx, userID, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list study plans")
	}
	if plans == nil {
		plans = []models.StudyPlan{}
	}
	return plans, nil
}

// Get returns one of the user's plans together with its topics.
func (s *StudyPlanService) Get(ctx context.Context, userID, id string) (*models.StudyPlan, error) {
	if err := s.ownership.Authorize(ctx, repository.ResourcePlan, id, userID); err != nil {
		return nil, err
	}
	plan, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "study plan not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load study plan")
	}
	topics, err := s.repo.ListTopics(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load plan topics")
	}
	plan.Topics = topics
	return plan, nil
}

// Create adds a plan under one of the user's courses, with optional inline
// topics.
func (s *StudyPlanService) Create(ctx context.Context, userID string, req models.CreateStudyPlanRequest) (*models.StudyPlan, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid study plan payload")
	}
	if err := s.ownership.Authorize(ctx, repository.ResourceCourse, req.CourseID, userID); err != nil {
		return nil, err
	}

	plan := &models.StudyPlan{
		Title:    req.Title,
		CourseID: req.CourseID,
	}
	if err := s.repo.Create(ctx, plan); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create study plan")
	}

	if len(req.Topics) > 0 {
		topics := make([]models.StudyPlanTopic, 0, len(req.Topics))
		for _, input := range req.Topics {
			topics = append(topics, models.StudyPlanTopic{
				ID:          uuid.NewString(),
				Title:       input.Title,
				Description: input.Description,
				PlanID:      plan.ID,
				CreatedAt:   s.now(),
			})
		}
		if err := s.repo.CreateTopics(ctx, topics); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create plan topics")
		}
		plan.Topics = topics
	}

	return plan, nil
}

// Generate drafts a plan for the subject via the AI planner and persists it
// under the given course.
func (s *StudyPlanService) Generate(ctx context.Context, userID string, req models.GeneratePlanRequest) (*models.StudyPlan, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generate payload")
	}
	if s.planner == nil {
		return nil, appErrors.Clone(appErrors.ErrUpstream, "plan generation is disabled")
	}
	if err := s.ownership.Authorize(ctx, repository.ResourceCourse, req.CourseID, userID); err != nil {
		return nil, err
	}

	title, topics, err := s.planner.Draft(ctx, req.Subject)
	if err != nil {
		return nil, err
	}

	s.logger.Info("study plan drafted",
		zap.String("course_id", req.CourseID),
		zap.Int("topics", len(topics)))

	return s.Create(ctx, userID, models.CreateStudyPlanRequest{
		Title:    title,
		CourseID: req.CourseID,
		Topics:   topics,
	})
}

// Update applies a partial update to one of the user's plans.
func (s *StudyPlanService) Update(ctx context.Context, userID, id string, req models.UpdateStudyPlanRequest) (*models.StudyPlan, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid study plan payload")
	}

	plan, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		plan.Title = *req.Title
	}

	if err := s.repo.Update(ctx, plan); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update study plan")
	}
	return plan, nil
}

// Delete removes one of the user's plans.
func (s *StudyPlanService) Delete(ctx context.Context, userID, id string) error {
	if err := s.ownership.Authorize(ctx, repository.ResourcePlan, id, userID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete study plan")
	}
	return nil
}

// AddTopic appends a topic to one of the user's plans.
func (s *StudyPlanService) AddTopic(ctx context.Context, userID, planID string, req models.CreateTopicRequest) (*models.StudyPlanTopic, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid topic payload")
	}
	if err := s.ownership.Authorize(ctx, repository.ResourcePlan, planID, userID); err != nil {
		return nil, err
	}

	topic := models.StudyPlanTopic{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		PlanID:      planID,
		CreatedAt:   s.now(),
	}
	if err := s.repo.CreateTopics(ctx, []models.StudyPlanTopic{topic}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create topic")
	}
	return &topic, nil
}

// UpdateTopic applies a partial update to a topic, including toggling its
// completion state.
func (s *StudyPlanService) UpdateTopic(ctx context.Context, userID, topicID string, req models.UpdateTopicRequest) (*models.StudyPlanTopic, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid topic payload")
	}
	if err := s.ownership.Authorize(ctx, repository.ResourceTopic, topicID, userID); err != nil {
		return nil, err
	}

	topic, err := s.repo.FindTopicByID(ctx, topicID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "topic not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load topic")
	}

	if req.Title != nil {
		topic.Title = *req.Title
	}
	if req.Description != nil {
		topic.Description = *req.Description
	}
	if req.Completed != nil {
		if *req.Completed {
			completedAt := s.now()
			topic.CompletedAt = &completedAt
		} else {
			topic.CompletedAt = nil
		}
	}

	if err := s.repo.UpdateTopic(ctx, topic); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update topic")
	}
	return topic, nil
}

// DeleteTopic removes a topic from one of the user's plans.
func (s *StudyPlanService) DeleteTopic(ctx context.Context, userID, topicID string) error {
	if err := s.ownership.Authorize(ctx, repository.ResourceTopic, topicID, userID); err != nil {
		return err
	}
	if err := s.repo.DeleteTopic(ctx, topicID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete topic")
	}
	return nil
}
