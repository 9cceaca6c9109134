package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/studere/studere-api/internal/repository"
	appErrors "github.com/studere/studere-api/pkg/errors"
)

type mockOwnerResolver struct {
	owner string
	err   error
}

func (m *mockOwnerResolver) OwnerOf(ctx context.Context, kind repository.ResourceKind, id string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.owner, nil
}

func TestAuthorizeOwnedResource(t *testing.T) {
	svc := NewOwnershipService(&mockOwnerResolver{owner: "u1"}, zap.NewNop())
	err := svc.Authorize(context.Background(), repository.ResourceTerm, "t1", "u1")
	assert.NoError(t, err)
}

func TestAuthorizeForeignResourceLooksMissing(t *testing.T) {
	svc := NewOwnershipService(&mockOwnerResolver{owner: "someone-else"}, zap.NewNop())
	err := svc.Authorize(context.Background(), repository.ResourceCourse, "c1", "u1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestAuthorizeMissingResource(t *testing.T) {
	svc := NewOwnershipService(&mockOwnerResolver{err: sql.ErrNoRows}, zap.NewNop())
	err := svc.Authorize(context.Background(), repository.ResourceSession, "missing", "u1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}
