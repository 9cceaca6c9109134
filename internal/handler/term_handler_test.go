package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/studere/studere-api/internal/middleware"
	"github.com/studere/studere-api/internal/models"
	"github.com/studere/studere-api/internal/repository"
	"github.com/studere/studere-api/internal/service"
)

type termRepoStub struct {
	terms map[string]*models.Term
}

func newTermRepoStub() *termRepoStub {
	return &termRepoStub{terms: make(map[string]*models.Term)}
}

func (s *termRepoStub) ListByUser(ctx context.Context, userID string) ([]models.Term, error) {
	var out []models.Term
	for _, term := range s.terms {
		if term.UserID == userID {
			out = append(out, *term)
		}
	}
	return out, nil
}

func (s *termRepoStub) FindByID(ctx context.Context, id string) (*models.Term, error) {
	term, ok := s.terms[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return term, nil
}

func (s *termRepoStub) Create(ctx context.Context, term *models.Term) error {
	if term.ID == "" {
		term.ID = uuid.NewString()
	}
	s.terms[term.ID] = term
	return nil
}

func (s *termRepoStub) Update(ctx context.Context, term *models.Term) error {
	s.terms[term.ID] = term
	return nil
}

func (s *termRepoStub) Delete(ctx context.Context, id string) error {
	delete(s.terms, id)
	return nil
}

type ownerStub struct {
	owner string
	err   error
}

func (s *ownerStub) OwnerOf(ctx context.Context, kind repository.ResourceKind, id string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.owner, nil
}

func newTermHandler(repo *termRepoStub) *TermHandler {
	ownership := service.NewOwnershipService(&ownerStub{owner: "u1"}, zap.NewNop())
	return NewTermHandler(service.NewTermService(repo, ownership, validator.New(), zap.NewNop()))
}

func TestTermHandlerListRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTermHandler(newTermRepoStub())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/terms", nil)

	handler.List(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTermHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := newTermRepoStub()
	handler := newTermHandler(repo)

	payload := models.CreateTermRequest{
		Name:      "Fall 2026",
		StartDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 12, 20, 0, 0, 0, 0, time.UTC),
	}
	body, _ := json.Marshal(payload)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/terms", bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u1"})

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, repo.terms, 1)
}

func TestTermHandlerCreateInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTermHandler(newTermRepoStub())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/terms", bytes.NewBufferString(`{"name":`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u1"})

	handler.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTermHandlerGetForeignTermLooksMissing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := newTermRepoStub()
	ownership := service.NewOwnershipService(&ownerStub{owner: "someone-else"}, zap.NewNop())
	handler := NewTermHandler(service.NewTermService(repo, ownership, validator.New(), zap.NewNop()))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/terms/t1", nil)
	c.Params = gin.Params{{Key: "id", Value: "t1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u1"})

	handler.Get(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}
