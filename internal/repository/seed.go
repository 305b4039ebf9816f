package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shenikar/binalert/internal/models"
	"github.com/shenikar/binalert/internal/service"
)

// центр демонстрационного города
const (
	demoLat = 34.0522
	demoLng = -118.2437
)

var demoWasteTypes = []string{"Plastic", "Organic", "Paper", "Metal", "Hazardous", "General Waste"}

// DemoReports возвращает два исходных отчета для панели муниципалитета
func DemoReports(now time.Time) []*models.WasteReport {
	return []*models.WasteReport{
		{
			ID:             "1",
			ImageURL:       "https://picsum.photos/seed/trash1/300/300",
			Timestamp:      now.Add(-100 * time.Second).UnixMilli(),
			Location:       models.GeoLocation{Lat: 34.05, Lng: -118.25},
			Status:         models.StatusPending,
			Urgency:        models.UrgencyHigh,
			WasteType:      []string{"Organic", "Plastic"},
			OverflowLevel:  90,
			AIAnalysisText: "Severely overflowing bin with organic waste spilling.",
			ReporterID:     "user-999",
		},
		{
			ID:             "2",
			ImageURL:       "https://picsum.photos/seed/trash2/300/300",
			Timestamp:      now.Add(-500 * time.Second).UnixMilli(),
			Location:       models.GeoLocation{Lat: 34.06, Lng: -118.26},
			Status:         models.StatusPending,
			Urgency:        models.UrgencyLow,
			WasteType:      []string{"Cardboard"},
			OverflowLevel:  45,
			AIAnalysisText: "Bin is nearing capacity, mostly cardboard.",
			ReporterID:     "user-999",
		},
	}
}

// RandomReports генерирует n правдоподобных отчетов за последнюю неделю
func RandomReports(n int, seed int64, reporters []string, now time.Time) []*models.WasteReport {
	f := gofakeit.New(seed)
	if len(reporters) == 0 {
		reporters = []string{"user-999"}
	}

	reports := make([]*models.WasteReport, 0, n)
	for i := 0; i < n; i++ {
		urgency := models.Urgencies[f.Number(0, len(models.Urgencies)-1)]
		status := models.StatusPending
		switch f.Number(0, 9) {
		case 0, 1:
			status = models.StatusResolved
		case 2:
			status = models.StatusAssigned
		}

		wasteTypes := []string{f.RandomString(demoWasteTypes)}
		if f.Bool() {
			if extra := f.RandomString(demoWasteTypes); extra != wasteTypes[0] {
				wasteTypes = append(wasteTypes, extra)
			}
		}

		age := time.Duration(f.Number(0, int(7*24*time.Hour/time.Minute))) * time.Minute
		reports = append(reports, &models.WasteReport{
			ID:             f.UUID(),
			ImageURL:       fmt.Sprintf("https://picsum.photos/seed/bin%d/300/300", f.Number(1, 100000)),
			Timestamp:      now.Add(-age).UnixMilli(),
			Location:       models.GeoLocation{Lat: demoLat + f.Float64Range(-0.05, 0.05), Lng: demoLng + f.Float64Range(-0.05, 0.05)},
			Status:         status,
			Urgency:        urgency,
			WasteType:      wasteTypes,
			OverflowLevel:  f.Number(10, 100),
			AIAnalysisText: f.Sentence(8),
			ReporterID:     f.RandomString(reporters),
		})
	}
	return reports
}

// RandomCitizens генерирует n граждан для таблицы лидеров
func RandomCitizens(n int, seed int64) []*models.User {
	f := gofakeit.New(seed)
	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		users = append(users, &models.User{
			ID:     fmt.Sprintf("citizen-%03d", i+1),
			Name:   f.Name(),
			Role:   models.RoleCitizen,
			Points: f.Number(0, 40) * 50,
			Avatar: fmt.Sprintf("https://picsum.photos/seed/avatar%d/200", i+1),
		})
	}
	return users
}

// Seed загружает демонстрационные данные.
// Существующих пользователей не перезаписывает, отчеты добавляет только в пустое хранилище.
func Seed(ctx context.Context, reports service.ReportRepository, users service.UserRepository, seedUsers []*models.User, seedReports []*models.WasteReport) error {
	for _, u := range seedUsers {
		_, err := users.GetUser(ctx, u.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("seed: failed to check user %s: %w", u.ID, err)
		}
		if err := users.SaveUser(ctx, u); err != nil {
			return fmt.Errorf("seed: failed to save user %s: %w", u.ID, err)
		}
	}

	existing, err := reports.ListReports(ctx, 1)
	if err != nil {
		return fmt.Errorf("seed: failed to list reports: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	// старые первыми, чтобы новые оказались в голове коллекции
	ordered := append([]*models.WasteReport(nil), seedReports...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Timestamp < ordered[j].Timestamp })
	for _, r := range ordered {
		if err := reports.AddReport(ctx, r); err != nil {
			return fmt.Errorf("seed: failed to add report %s: %w", r.ID, err)
		}
	}
	return nil
}
