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

type termRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.Term, error)
	FindByID(ctx context.Context, id string) (*models.Term, error)
	Create(ctx context.Context, term *models.Term) error
	Update(ctx context.Context, term *models.Term) error
	Delete(ctx context.Context, id string) error
}

// TermService provides term management use cases.
type TermService struct {
	repo      termRepository
	ownership *OwnershipService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTermService constructs a TermService.
func NewTermService(repo termRepository, ownership *OwnershipService, validate *validator.Validate, logger *zap.Logger) *TermService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &TermService{repo: repo, ownership: ownership, validator: validate, logger: logger}
}

// List returns the user's terms.
func (s *TermService) List(ctx context.Context, userID string) ([]models.Term, error) {
	terms, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list terms")
	}
	if terms == nil {
		terms = []models.Term{}
	}
	return terms, nil
}

// Get returns one of the user's terms.
func (s *TermService) Get(ctx context.Context, userID, id string) (*models.Term, error) {
	if err := s.ownership.Authorize(ctx, repository.ResourceTerm, id, userID); err != nil {
		return nil, err
	}
	term, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "term not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term")
	}
	return term, nil
}

// Create adds a new term owned by the user.
func (s *TermService) Create(ctx context.Context, userID string, req models.CreateTermRequest) (*models.Term, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid term payload")
	}
	if !req.EndDate.After(req.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must be after start_date")
	}

	term := &models.Term{
		Name:      req.Name,
		UserID:    userID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}
	if err := s.repo.Create(ctx, term); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create term")
	}
	return term, nil
}

// Update applies a partial update to one of the user's terms.
func (s *TermService) Update(ctx context.Context, userID, id string, req models.UpdateTermRequest) (*models.Term, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid term payload")
	}

	term, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		term.Name = *req.Name
	}
	if req.StartDate != nil {
		term.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		term.EndDate = *req.EndDate
	}
	if !term.EndDate.After(term.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must be after start_date")
	}

	if err := s.repo.Update(ctx, term); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update term")
	}
	return term, nil
}

// Delete removes one of the user's terms and everything beneath it.
func (s *TermService) Delete(ctx context.Context, userID, id string) error {
	if err := s.ownership.Authorize(ctx, repository.ResourceTerm, id, userID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete term")
	}
	s.logger.Info("term deleted", zap.String("term_id", id))
	return nil
}
