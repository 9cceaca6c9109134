package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studere/studere-api/internal/models"
)

func TestListTermsByUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTermRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "user_id", "start_date", "end_date", "created_at", "updated_at"}).
		AddRow("t1", "Fall 2026", "u1", now, now.AddDate(0, 4, 0), now, now).
		AddRow("t2", "Spring 2026", "u1", now.AddDate(0, -8, 0), now.AddDate(0, -4, 0), now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, user_id, start_date, end_date, created_at, updated_at FROM terms WHERE user_id = $1 ORDER BY start_date DESC")).
		WithArgs("u1").
		WillReturnRows(rows)

	terms, err := repo.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, terms, 2)
	assert.Equal(t, "Fall 2026", terms[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTerm(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTermRepository(db)

	mock.ExpectExec("INSERT INTO terms").WillReturnResult(sqlmock.NewResult(1, 1))

	term := &models.Term{Name: "Fall 2026", UserID: "u1", StartDate: time.Now(), EndDate: time.Now().AddDate(0, 4, 0)}
	err := repo.Create(context.Background(), term)
	require.NoError(t, err)
	assert.NotEmpty(t, term.ID)
	assert.False(t, term.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindTermByIDNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTermRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM terms WHERE id").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
