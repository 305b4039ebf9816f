package service

import (
	"testing"
	"time"

	"github.com/shenikar/binalert/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeDashboardStats(t *testing.T) {
	now := time.Date(2026, 3, 12, 15, 0, 0, 0, time.UTC) // четверг
	at := func(d time.Duration) int64 { return now.Add(-d).UnixMilli() }

	reports := []*models.WasteReport{
		{Urgency: models.UrgencyCritical, Status: models.StatusPending, WasteType: []string{"Hazardous"}, OverflowLevel: 100, Timestamp: at(time.Hour)},
		{Urgency: models.UrgencyHigh, Status: models.StatusAssigned, WasteType: []string{"Organic", "Plastic"}, OverflowLevel: 90, Timestamp: at(25 * time.Hour)},
		{Urgency: models.UrgencyLow, Status: models.StatusResolved, WasteType: []string{"Plastic"}, OverflowLevel: 20, Timestamp: at(6 * 24 * time.Hour)},
		{Urgency: models.UrgencyMedium, Status: models.StatusPending, WasteType: []string{"Paper"}, OverflowLevel: 50, Timestamp: at(30 * 24 * time.Hour)},
	}

	stats := computeDashboardStats(reports, now)

	assert.Equal(t, 4, stats.TotalReports)
	assert.Equal(t, 2, stats.CriticalReports)
	assert.Equal(t, 2, stats.PendingReports)
	assert.Equal(t, 1, stats.ResolvedReports)
	assert.InDelta(t, 65.0, stats.AverageOverflow, 0.001)
	assert.Equal(t, map[models.Urgency]int{
		models.UrgencyLow: 1, models.UrgencyMedium: 1, models.UrgencyHigh: 1, models.UrgencyCritical: 1,
	}, stats.ByUrgency)
	assert.Equal(t, 2, stats.ByWasteType["Plastic"])

	require.Len(t, stats.Daily, 7)
	assert.Equal(t, "Fri", stats.Daily[0].Name)
	assert.Equal(t, "2026-03-06", stats.Daily[0].Date)
	assert.Equal(t, 1, stats.Daily[0].Reports)
	assert.Equal(t, "Wed", stats.Daily[5].Name)
	assert.Equal(t, 1, stats.Daily[5].Reports)
	assert.Equal(t, "Thu", stats.Daily[6].Name)
	assert.Equal(t, 1, stats.Daily[6].Reports)
}

func TestComputeDashboardStats_Empty(t *testing.T) {
	stats := computeDashboardStats(nil, time.Now())

	assert.Zero(t, stats.TotalReports)
	assert.Zero(t, stats.AverageOverflow)
	assert.Len(t, stats.Daily, 7)
	assert.Len(t, stats.ByUrgency, 4)
}
