package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/studere/studere-api/internal/models"
	"github.com/studere/studere-api/internal/repository"
	appErrors "github.com/studere/studere-api/pkg/errors"
)

type assignmentRepository interface {
	ListByUser(ctx context.Context, userID, courseID string) ([]models.Assignment, error)
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
	Create(ctx context.Context, assignment *models.Assignment) error
	Update(ctx context.Context, assignment *models.Assignment) error
	Delete(ctx context.Context, id string) error
}

// AssignmentService provides assignment management use cases.
type AssignmentService struct {
	repo      assignmentRepository
	ownership *OwnershipService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssignmentService constructs an AssignmentService.
func NewAssignmentService(repo assignmentRepository, ownership *OwnershipService, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AssignmentService{repo: repo, ownership: ownership, validator: validate, logger: logger}
}

// List returns the user's assignments, optionally scoped to a course.
func (s *AssignmentService) List(ctx context.Context, userID, courseID string) ([]models.Assignment, error) {
	if courseID != "" {
		if err := s.ownership.Authorize(ctx, repository.ResourceCourse, courseID, userID); err != nil {
			return nil, err
		}
	}
	assignments, err := s.repo.ListByUser(ctx, userID, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	if assignments == nil {
		assignments = []models.Assignment{}
	}
	return assignments, nil
}

// Get returns one of the user's assignments.
func (s *AssignmentService) Get(ctx context.Context, userID, id string) (*models.Assignment, error) {
	if err := s.ownership.Authorize(ctx, repository.ResourceAssignment, id, userID); err != nil {
		return nil, err
	}
	assignment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	return assignment, nil
}

// Create adds an assignment under one of the user's courses.
func (s *AssignmentService) Create(ctx context.Context, userID string, req models.CreateAssignmentRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	if err := s.ownership.Authorize(ctx, repository.ResourceCourse, req.CourseID, userID); err != nil {
		return nil, err
	}

	assignment := &models.Assignment{
		Title:       req.Title,
		Type:        req.Type,
		Description: req.Description,
		CourseID:    req.CourseID,
		Score:       req.Score,
		DueAt:       req.DueAt,
	}
	if err := s.repo.Create(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
	}
	return assignment, nil
}

// Update applies a partial update to one of the user's assignments.
func (s *AssignmentService) Update(ctx context.Context, userID, id string, req models.UpdateAssignmentRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	assignment, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		assignment.Title = *req.Title
	}
	if req.Type != nil {
		assignment.Type = *req.Type
	}
	if req.Description != nil {
		assignment.Description = *req.Description
	}
	if req.Score != nil {
		assignment.Score = req.Score
	}
	if req.DueAt != nil {
		assignment.DueAt = *req.DueAt
	}

	if err := s.repo.Update(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update assignment")
	}
	return assignment, nil
}

// Delete removes one of the user's assignments.
func (s *AssignmentService) Delete(ctx context.Context, userID, id string) error {
	if err := s.ownership.Authorize(ctx, repository.ResourceAssignment, id, userID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete assignment")
	}
	return nil
}
