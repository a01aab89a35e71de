package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-attend-api/internal/models"
)

type attendanceLister interface {
	ListByUser(ctx context.Context, userID string) ([]models.AttendanceRecord, error)
}

// StatsServiceConfig tunes dashboard aggregation.
type StatsServiceConfig struct {
	CacheTTL           time.Duration
	RequiredPercentage float64
}

// StatsService aggregates attendance history into the dashboard payload:
// an overall percentage, per-subject summaries, and weekly/monthly trend
// series. Results are cached per user until the next attendance write.
type StatsService struct {
	attendance attendanceLister
	cache      *CacheService
	logger     *zap.Logger
	now        func() time.Time
	cfg        StatsServiceConfig
}

// StatsServiceParams groups constructor dependencies.
type StatsServiceParams struct {
	Attendance attendanceLister
	Cache      *CacheService
	Logger     *zap.Logger
	Config     StatsServiceConfig
}

// NewStatsService constructs a StatsService with sane defaults.
func NewStatsService(params StatsServiceParams) *StatsService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.RequiredPercentage <= 0 {
		cfg.RequiredPercentage = 75
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{
		attendance: params.Attendance,
		cache:      params.Cache,
		logger:     logger,
		now:        time.Now,
		cfg:        cfg,
	}
}

// Dashboard returns the aggregated stats payload and indicates cache
// utilisation.
func (s *StatsService) Dashboard(ctx context.Context, userID string) (*models.DashboardStats, bool, error) {
	cacheKey := statsCacheKey(userID)
	if s.cache != nil {
		var cached models.DashboardStats
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	records, err := s.attendance.ListByUser(ctx, userID)
	if err != nil {
		return nil, false, err
	}

	now := s.now().UTC()
	stats := &models.DashboardStats{
		Overall:  s.overall(records),
		Subjects: s.Subjects(records),
		Weekly:   s.weekly(records, now),
		Monthly:  s.monthly(records, now),
		Split:    split(records),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, stats, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("stats cache write failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return stats, false, nil
}

// SubjectSummaries returns per-subject attendance for a user, bypassing the
// full dashboard composition. The low-attendance policy feeds off this.
func (s *StatsService) SubjectSummaries(ctx context.Context, userID string) ([]models.SubjectSummary, error) {
	records, err := s.attendance.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.Subjects(records), nil
}

// Invalidate drops the cached dashboard for a user. Called after every
// attendance write so reads never serve stale aggregates past the TTL
// they were computed under.
func (s *StatsService) Invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, statsCacheKey(userID)); err != nil {
		s.logger.Warn("stats cache invalidate failed", zap.String("user_id", userID), zap.Error(err))
	}
}

// split tallies the pie-chart status counts over the full history.
func split(records []models.AttendanceRecord) models.StatusSplit {
	var out models.StatusSplit
	for _, rec := range records {
		switch rec.Status {
		case models.AttendanceStatusPresent:
			out.Present++
		case models.AttendanceStatusAbsent:
			out.Absent++
		case models.AttendanceStatusHoliday:
			out.Holiday++
		case models.AttendanceStatusPending:
			out.Pending++
		}
	}
	return out
}

func statsCacheKey(userID string) string {
	return fmt.Sprintf("stats:dashboard:%s", userID)
}

// overall counts present records against all records. Holiday and pending
// records still count toward the denominator, matching the recorded history
// rather than a scheduled-classes model.
func (s *StatsService) overall(records []models.AttendanceRecord) models.OverallSummary {
	present := 0
	for _, rec := range records {
		if rec.Status == models.AttendanceStatusPresent {
			present++
		}
	}
	summary := models.OverallSummary{
		RequiredPercentage: s.cfg.RequiredPercentage,
		DaysPresent:        present,
		TotalDays:          len(records),
	}
	if len(records) > 0 {
		summary.Percentage = roundPercent(float64(present) / float64(len(records)) * 100)
	}
	return summary
}

// Subjects groups records by class and computes per-subject percentages,
// sorted by class name for stable output.
func (s *StatsService) Subjects(records []models.AttendanceRecord) []models.SubjectSummary {
	type bucket struct {
		name    string
		code    string
		present int
		total   int
	}
	buckets := map[string]*bucket{}
	for _, rec := range records {
		b, ok := buckets[rec.ClassID]
		if !ok {
			b = &bucket{name: rec.ClassName, code: rec.ClassCode}
			buckets[rec.ClassID] = b
		}
		if b.name == "" && rec.ClassName != "" {
			b.name = rec.ClassName
		}
		b.total++
		if rec.Status == models.AttendanceStatusPresent {
			b.present++
		}
	}

	summaries := make([]models.SubjectSummary, 0, len(buckets))
	for classID, b := range buckets {
		name := b.name
		if name == "" {
			name = classID
		}
		summary := models.SubjectSummary{
			ClassID:            classID,
			ClassName:          name,
			ClassCode:          b.code,
			ClassesConducted:   b.total,
			ClassesAttended:    b.present,
			RequiredPercentage: s.cfg.RequiredPercentage,
		}
		if b.total > 0 {
			summary.Percentage = roundPercent(float64(b.present) / float64(b.total) * 100)
		}
		summaries = append(summaries, summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].ClassName == summaries[j].ClassName {
			return summaries[i].ClassID < summaries[j].ClassID
		}
		return summaries[i].ClassName < summaries[j].ClassName
	})
	return summaries
}

// weekly buckets the last seven days by weekday, Monday through Friday.
func (s *StatsService) weekly(records []models.AttendanceRecord, now time.Time) []models.TrendPoint {
	labels := []string{"Mon", "Tue", "Wed", "Thu", "Fri"}
	points := make([]models.TrendPoint, len(labels))
	for i, label := range labels {
		points[i] = models.TrendPoint{Name: label}
	}

	cutoff := now.AddDate(0, 0, -7)
	for _, rec := range records {
		day, ok := parseRecordDate(rec.Date)
		if !ok || day.Before(cutoff) || day.After(now) {
			continue
		}
		idx := int(day.Weekday()) - 1 // Sunday is 0
		if idx < 0 || idx >= len(points) {
			continue
		}
		points[idx].Total++
		switch rec.Status {
		case models.AttendanceStatusPresent:
			points[idx].Present++
		case models.AttendanceStatusAbsent:
			points[idx].Absent++
		}
	}
	return points
}

// monthly buckets the last twenty-eight days into four week-sized windows,
// Week 1 being the most recent.
func (s *StatsService) monthly(records []models.AttendanceRecord, now time.Time) []models.TrendPoint {
	points := []models.TrendPoint{
		{Name: "Week 1"},
		{Name: "Week 2"},
		{Name: "Week 3"},
		{Name: "Week 4"},
	}

	cutoff := now.AddDate(0, 0, -28)
	for _, rec := range records {
		day, ok := parseRecordDate(rec.Date)
		if !ok || day.Before(cutoff) || day.After(now) {
			continue
		}
		age := int(now.Sub(day).Hours() / 24)
		idx := age / 7
		if idx > 3 {
			idx = 3
		}
		points[idx].Total++
		switch rec.Status {
		case models.AttendanceStatusPresent:
			points[idx].Present++
		case models.AttendanceStatusAbsent:
			points[idx].Absent++
		}
	}
	return points
}

func parseRecordDate(date string) (time.Time, bool) {
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}, false
	}
	return parsed.UTC(), true
}

func roundPercent(v float64) float64 {
	return math.Round(v*100) / 100
}
