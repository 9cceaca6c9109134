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

type mockTermRepo struct {
	terms map[string]*models.Term
}

func newMockTermRepo() *mockTermRepo {
	return &mockTermRepo{terms: make(map[string]*models.Term)}
}

func (m *mockTermRepo) ListByUser(ctx context.Context, userID string) ([]models.Term, error) {
	var terms []models.Term
	for _, term := range m.terms {
		if term.UserID == userID {
			terms = append(terms, *term)
		}
	}
	return terms, nil
}

func (m *mockTermRepo) FindByID(ctx context.Context, id string) (*models.Term, error) {
	term, ok := m.terms[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *term
	return &copied, nil
}

func (m *mockTermRepo) Create(ctx context.Context, term *models.Term) error {
	if term.ID == "" {
		term.ID = uuid.NewString()
	}
	m.terms[term.ID] = term
	return nil
}

func (m *mockTermRepo) Update(ctx context.Context, term *models.Term) error {
	m.terms[term.ID] = term
	return nil
}

func (m *mockTermRepo) Delete(ctx context.Context, id string) error {
	delete(m.terms, id)
	return nil
}

func newTermService(repo *mockTermRepo) *TermService {
	ownership := NewOwnershipService(&mockOwnerResolver{owner: "u1"}, zap.NewNop())
	return NewTermService(repo, ownership, validator.New(), zap.NewNop())
}

func TestCreateTermValidatesDates(t *testing.T) {
	svc := newTermService(newMockTermRepo())

	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.Create(context.Background(), "u1", models.CreateTermRequest{
		Name:      "Backwards term",
		StartDate: start,
		EndDate:   start.AddDate(0, -4, 0),
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestCreateAndGetTerm(t *testing.T) {
	repo := newMockTermRepo()
	svc := newTermService(repo)

	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	term, err := svc.Create(context.Background(), "u1", models.CreateTermRequest{
		Name:      "Fall 2026",
		StartDate: start,
		EndDate:   start.AddDate(0, 4, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, "u1", term.UserID)

	loaded, err := svc.Get(context.Background(), "u1", term.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fall 2026", loaded.Name)
}

func TestUpdateTermPartial(t *testing.T) {
	repo := newMockTermRepo()
	svc := newTermService(repo)

	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	term, err := svc.Create(context.Background(), "u1", models.CreateTermRequest{
		Name:      "Fall 2026",
		StartDate: start,
		EndDate:   start.AddDate(0, 4, 0),
	})
	require.NoError(t, err)

	name := "Fall Semester 2026"
	updated, err := svc.Update(context.Background(), "u1", term.ID, models.UpdateTermRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, term.StartDate, updated.StartDate)
}

func TestListTermsEmpty(t *testing.T) {
	svc := newTermService(newMockTermRepo())

	terms, err := svc.List(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotNil(t, terms)
	assert.Empty(t, terms)
}
