package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/studere/studere-api/internal/repository"
	appErrors "github.com/studere/studere-api/pkg/errors"
)

type ownerResolver interface {
	OwnerOf(ctx context.Context, kind repository.ResourceKind, id string) (string, error)
}

// OwnershipService checks that a resource belongs to the requesting user.
// A resource that does not exist and a resource owned by someone else both
// resolve to not-found, so callers cannot probe for foreign identifiers.
type OwnershipService struct {
	repo   ownerResolver
	logger *zap.Logger
}

// NewOwnershipService constructs an OwnershipService.
func NewOwnershipService(repo ownerResolver, logger *zap.Logger) *OwnershipService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OwnershipService{repo: repo, logger: logger}
}

// Authorize resolves the owner of the resource and compares it to userID.
func (s *OwnershipService) Authorize(ctx context.Context, kind repository.ResourceKind, id, userID string) error {
	owner, err := s.repo.OwnerOf(ctx, kind, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "resource not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve resource owner")
	}
	if owner != userID {
		s.logger.Debug("ownership mismatch",
			zap.String("kind", string(kind)),
			zap.String("resource_id", id))
		return appErrors.Clone(appErrors.ErrNotFound, "resource not found")
	}
	return nil
}
