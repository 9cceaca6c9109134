package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/studere/studere-api/internal/dto"
	appErrors "github.com/studere/studere-api/pkg/errors"
)

type mockDashboardRepo struct {
	byCourse []dto.CourseStudyTime
	dates    []time.Time
	weekdays []dto.WeekdayStudyTime
}

func (m *mockDashboardRepo) StudyTimeByCourse(ctx context.Context, userID string) ([]dto.CourseStudyTime, error) {
	return m.byCourse, nil
}

func (m *mockDashboardRepo) SessionDatesSince(ctx context.Context, userID string, since time.Time) ([]time.Time, error) {
	return m.dates, nil
}

func (m *mockDashboardRepo) WeekdayDistribution(ctx context.Context, userID string) ([]dto.WeekdayStudyTime, error) {
	return m.weekdays, nil
}

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestOverviewAggregates(t *testing.T) {
	repo := &mockDashboardRepo{
		byCourse: []dto.CourseStudyTime{
			{Course: "Algorithms", Seconds: 7200},
			{Course: "Chemistry", Seconds: 1800},
		},
		weekdays: []dto.WeekdayStudyTime{{Weekday: 1, Seconds: 9000}},
	}
	svc := NewDashboardService(repo, nil, nil, DashboardConfig{}, zap.NewNop())

	overview, err := svc.Overview(context.Background(), "u1")
	require.NoError(t, err)
	assert.InDelta(t, 9000.0, overview.TotalSeconds, 0.001)
	assert.Len(t, overview.StudyTimeByCourse, 2)
	assert.Len(t, overview.WeekdayBreakdown, 1)
}

func TestStreakCountsConsecutiveDays(t *testing.T) {
	repo := &mockDashboardRepo{
		dates: []time.Time{day("2026-02-26"), day("2026-02-27"), day("2026-02-28"), day("2026-03-01")},
	}
	svc := NewDashboardService(repo, nil, nil, DashboardConfig{}, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC) }

	overview, err := svc.Overview(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 4, overview.Streak.CurrentDays)
	assert.True(t, overview.Streak.ActiveToday)
	assert.Equal(t, []bool{false, false, false, true, true, true, true}, overview.Streak.LastSevenDays)
}

func TestStreakSurvivesMissingToday(t *testing.T) {
	repo := &mockDashboardRepo{
		dates: []time.Time{day("2026-02-27"), day("2026-02-28")},
	}
	svc := NewDashboardService(repo, nil, nil, DashboardConfig{}, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }

	overview, err := svc.Overview(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, overview.Streak.CurrentDays)
	assert.False(t, overview.Streak.ActiveToday)
}

func TestStreakBrokenByGap(t *testing.T) {
	repo := &mockDashboardRepo{
		dates: []time.Time{day("2026-02-20"), day("2026-02-25")},
	}
	svc := NewDashboardService(repo, nil, nil, DashboardConfig{}, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }

	overview, err := svc.Overview(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, overview.Streak.CurrentDays)
}

func TestExportStudyTimeCSV(t *testing.T) {
	repo := &mockDashboardRepo{
		byCourse: []dto.CourseStudyTime{
			{Course: "Algorithms", Seconds: 7200},
			{Course: "Chemistry", Seconds: 1800},
		},
	}
	svc := NewDashboardService(repo, nil, nil, DashboardConfig{}, zap.NewNop())

	payload, filename, err := svc.ExportStudyTime(context.Background(), "u1", "csv")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(filename, ".csv"))

	content := string(payload)
	assert.Contains(t, content, "Course,Hours Studied")
	assert.Contains(t, content, "Algorithms,2.00")
	assert.Contains(t, content, "Total,2.50")
}

func TestExportStudyTimePDF(t *testing.T) {
	repo := &mockDashboardRepo{
		byCourse: []dto.CourseStudyTime{{Course: "Algorithms", Seconds: 3600}},
	}
	svc := NewDashboardService(repo, nil, nil, DashboardConfig{}, zap.NewNop())

	payload, filename, err := svc.ExportStudyTime(context.Background(), "u1", "pdf")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(filename, ".pdf"))
	assert.True(t, strings.HasPrefix(string(payload), "%PDF"))
}

func TestExportStudyTimeUnknownFormat(t *testing.T) {
	svc := NewDashboardService(&mockDashboardRepo{}, nil, nil, DashboardConfig{}, zap.NewNop())

	_, _, err := svc.ExportStudyTime(context.Background(), "u1", "xlsx")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}
