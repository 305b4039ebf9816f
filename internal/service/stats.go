package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shenikar/binalert/internal/models"
)

// Исторические данные, которых нет в хранилище, для публичной статистики
const (
	historicalReports  = 1242
	historicalResolved = 895
	yearsExperience    = 3
)

// chartDays - глубина графика отчетов на панели муниципалитета
const chartDays = 7

// DashboardStats - показатели панели муниципалитета
type DashboardStats struct {
	TotalReports    int                    `json:"totalReports"`
	CriticalReports int                    `json:"criticalReports"` // HIGH и CRITICAL
	PendingReports  int                    `json:"pendingReports"`
	ResolvedReports int                    `json:"resolvedReports"`
	AverageOverflow float64                `json:"averageOverflow"`
	ByUrgency       map[models.Urgency]int `json:"byUrgency"`
	ByWasteType     map[string]int         `json:"byWasteType"`
	Daily           []DailyCount           `json:"daily"`
}

// DailyCount - число отчетов за день
type DailyCount struct {
	Name    string `json:"name"` // Mon, Tue, ...
	Date    string `json:"date"`
	Reports int    `json:"reports"`
}

// PublicStats - показатели для главной страницы
type PublicStats struct {
	TotalReports    int `json:"totalReports"`
	ResolvedReports int `json:"resolvedReports"`
	YearsExperience int `json:"yearsExperience"`
}

// DashboardStats считает показатели по всем отчетам
func (s *reportService) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	reports, err := s.reports.ListReports(ctx, 0)
	if err != nil {
		s.logger.WithError(err).WithField("method", "DashboardStats").Error("Failed to list reports from repository")
		return nil, fmt.Errorf("service: could not compute dashboard stats: %w", err)
	}
	return computeDashboardStats(reports, s.now()), nil
}

// PublicStats добавляет исторические данные к текущим
func (s *reportService) PublicStats(ctx context.Context) (*PublicStats, error) {
	reports, err := s.reports.ListReports(ctx, 0)
	if err != nil {
		s.logger.WithError(err).WithField("method", "PublicStats").Error("Failed to list reports from repository")
		return nil, fmt.Errorf("service: could not compute public stats: %w", err)
	}

	resolved := 0
	for _, r := range reports {
		if r.Status == models.StatusResolved {
			resolved++
		}
	}
	return &PublicStats{
		TotalReports:    len(reports) + historicalReports,
		ResolvedReports: resolved + historicalResolved,
		YearsExperience: yearsExperience,
	}, nil
}

func computeDashboardStats(reports []*models.WasteReport, now time.Time) *DashboardStats {
	stats := &DashboardStats{
		TotalReports: len(reports),
		ByUrgency:    make(map[models.Urgency]int, len(models.Urgencies)),
		ByWasteType:  make(map[string]int),
		Daily:        make([]DailyCount, chartDays),
	}
	for _, u := range models.Urgencies {
		stats.ByUrgency[u] = 0
	}

	today := now.UTC().Truncate(24 * time.Hour)
	first := today.AddDate(0, 0, -(chartDays - 1))
	for i := range stats.Daily {
		day := first.AddDate(0, 0, i)
		stats.Daily[i] = DailyCount{Name: day.Format("Mon"), Date: day.Format(time.DateOnly)}
	}

	overflowSum := 0
	for _, r := range reports {
		if r.Urgency.Severe() {
			stats.CriticalReports++
		}
		switch r.Status {
		case models.StatusPending:
			stats.PendingReports++
		case models.StatusResolved:
			stats.ResolvedReports++
		}
		stats.ByUrgency[r.Urgency]++
		for _, wt := range r.WasteType {
			stats.ByWasteType[wt]++
		}
		overflowSum += r.OverflowLevel

		created := time.UnixMilli(r.Timestamp).UTC()
		if created.Before(first) {
			continue
		}
		if idx := int(created.Sub(first) / (24 * time.Hour)); idx < chartDays {
			stats.Daily[idx].Reports++
		}
	}

	if len(reports) > 0 {
		stats.AverageOverflow = float64(overflowSum) / float64(len(reports))
	}
	return stats
}
