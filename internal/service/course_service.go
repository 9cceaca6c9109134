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

type courseRepository interface {
	ListByUser(ctx context.Context, userID, termID string) ([]models.Course, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
}

// CourseService provides course management use cases.
type CourseService struct {
	repo      courseRepository
	ownership *OwnershipService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs a CourseService.
func NewCourseService(repo courseRepository, ownership *OwnershipService, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CourseService{repo: repo, ownership: ownership, validator: validate, logger: logger}
}

// List returns the user's courses, optionally scoped to a term.
func (s *CourseService) List(ctx context.Context, userID, termID string) ([]models.Course, error) {
	if termID != "" {
		if err := s.ownership.Authorize(ctx, repository.ResourceTerm, termID, userID); err != nil {
			return nil, err
		}
	}
	courses, err := s.repo.ListByUser(ctx, userID, termID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	if courses == nil {
		courses = []models.Course{}
	}
	return courses, nil
}

// Get returns one of the user's courses.
func (s *CourseService) Get(ctx context.Context, userID, id string) (*models.Course, error) {
	if err := s.ownership.Authorize(ctx, repository.ResourceCourse, id, userID); err != nil {
		return nil, err
	}
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// Create adds a course under one of the user's terms.
func (s *CourseService) Create(ctx context.Context, userID string, req models.CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	if err := s.ownership.Authorize(ctx, repository.ResourceTerm, req.TermID, userID); err != nil {
		return nil, err
	}

	course := &models.Course{
		Name:        req.Name,
		Description: req.Description,
		TermID:      req.TermID,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	return course, nil
}

// Update applies a partial update to one of the user's courses.
func (s *CourseService) Update(ctx context.Context, userID, id string, req models.UpdateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	course, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		course.Name = *req.Name
	}
	if req.Description != nil {
		course.Description = *req.Description
	}

	if err := s.repo.Update(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}
	return course, nil
}

// Delete removes one of the user's courses.
func (s *CourseService) Delete(ctx context.Context, userID, id string) error {
	if err := s.ownership.Authorize(ctx, repository.ResourceCourse, id, userID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}
	return nil
}
