package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/studere/studere-api/internal/dto"
	appErrors "github.com/studere/studere-api/pkg/errors"
	"github.com/studere/studere-api/pkg/export"
)

type dashboardRepository interface {
	StudyTimeByCourse(ctx context.Context, userID string) ([]dto.CourseStudyTime, error)
	SessionDatesSince(ctx context.Context, userID string, since time.Time) ([]time.Time, error)
	WeekdayDistribution(ctx context.Context, userID string) ([]dto.WeekdayStudyTime, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// DashboardConfig tunes dashboard behaviour.
type DashboardConfig struct {
	CacheTTL       time.Duration
	StreakLookback time.Duration
}

// DashboardService composes study aggregates and renders exports.
type DashboardService struct {
	repo    dashboardRepository
	cache   *CacheService
	metrics *MetricsService
	csv     csvRenderer
	pdf     pdfRenderer
	logger  *zap.Logger
	now     func() time.Time
	cfg     DashboardConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(repo dashboardRepository, cache *CacheService, metrics *MetricsService, cfg DashboardConfig, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.StreakLookback <= 0 {
		cfg.StreakLookback = 365 * 24 * time.Hour
	}
	return &DashboardService{
		repo:    repo,
		cache:   cache,
		metrics: metrics,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
		cfg:     cfg,
	}
}

// Overview builds the aggregated dashboard payload, served from cache when
// available.
func (s *DashboardService) Overview(ctx context.Context, userID string) (*dto.DashboardOverviewResponse, error) {
	cacheKey := fmt.Sprintf("dashboard:%s:overview", userID)
	var cached dto.DashboardOverviewResponse
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	start := time.Now()
	byCourse, err := s.repo.StudyTimeByCourse(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate study time")
	}
	weekdays, err := s.repo.WeekdayDistribution(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate weekday distribution")
	}
	since := s.now().Add(-s.cfg.StreakLookback)
	dates, err := s.repo.SessionDatesSince(ctx, userID, since)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session dates")
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("dashboard_overview", time.Since(start))
	}

	if byCourse == nil {
		byCourse = []dto.CourseStudyTime{}
	}
	if weekdays == nil {
		weekdays = []dto.WeekdayStudyTime{}
	}

	var total float64
	for _, row := range byCourse {
		total += row.Seconds
	}

	overview := &dto.DashboardOverviewResponse{
		StudyTimeByCourse: byCourse,
		Streak:            s.computeStreak(dates),
		WeekdayBreakdown:  weekdays,
		TotalSeconds:      total,
	}

	if err := s.cache.Set(ctx, cacheKey, overview, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("failed to cache dashboard overview", zap.Error(err))
	}
	return overview, nil
}

// ExportStudyTime renders the per-course study time table in the requested
// format. Supported formats are "csv" and "pdf".
func (s *DashboardService) ExportStudyTime(ctx context.Context, userID, format string) ([]byte, string, error) {
	byCourse, err := s.repo.StudyTimeByCourse(ctx, userID)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate study time")
	}

	var total float64
	rows := make([]map[string]string, 0, len(byCourse))
	for _, row := range byCourse {
		total += row.Seconds
		rows = append(rows, map[string]string{
			"Course":        row.Course,
			"Hours Studied": fmt.Sprintf("%.2f", row.Seconds/3600),
		})
	}

	dataset := export.Dataset{
		Headers: []string{"Course", "Hours Studied"},
		Rows:    rows,
		Footer: map[string]string{
			"Course":        "Total",
			"Hours Studied": fmt.Sprintf("%.2f", total/3600),
		},
	}

	timestamp := s.now().Format("20060102_150405")
	switch format {
	case "csv":
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return payload, fmt.Sprintf("study_time_%s.csv", timestamp), nil
	case "pdf":
		payload, err := s.pdf.Render(dataset, "Study Time by Course")
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return payload, fmt.Sprintf("study_time_%s.pdf", timestamp), nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

// computeStreak counts consecutive study days ending today, or yesterday
// when today has no session yet.
func (s *DashboardService) computeStreak(dates []time.Time) dto.StreakSummary {
	studied := make(map[string]bool, len(dates))
	for _, d := range dates {
		studied[d.UTC().Format("2006-01-02")] = true
	}

	today := s.now().Truncate(24 * time.Hour)
	activeToday := studied[today.Format("2006-01-02")]

	cursor := today
	if !activeToday {
		cursor = today.AddDate(0, 0, -1)
	}

	days := 0
	for studied[cursor.Format("2006-01-02")] {
		days++
		cursor = cursor.AddDate(0, 0, -1)
	}

	week := make([]bool, 7)
	for i := range week {
		day := today.AddDate(0, 0, i-6)
		week[i] = studied[day.Format("2006-01-02")]
	}

	return dto.StreakSummary{CurrentDays: days, ActiveToday: activeToday, LastSevenDays: week}
}
