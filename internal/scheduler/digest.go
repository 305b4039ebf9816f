// Package scheduler запускает периодические задачи сервиса.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shenikar/binalert/internal/service"
	"github.com/shenikar/binalert/internal/webhook"
	"github.com/sirupsen/logrus"
)

// runTimeout ограничивает один запуск сводки
const runTimeout = 30 * time.Second

// StatsProvider - источник показателей для сводки
type StatsProvider interface {
	DashboardStats(ctx context.Context) (*service.DashboardStats, error)
}

// DigestJob по расписанию считает показатели панели и отправляет сводку диспетчерам
type DigestJob struct {
	stats     StatsProvider
	publisher webhook.WebhookPublisher
	logger    *logrus.Logger
	cron      *cron.Cron
	now       func() time.Time
}

func NewDigestJob(stats StatsProvider, publisher webhook.WebhookPublisher, logger *logrus.Logger) *DigestJob {
	return &DigestJob{
		stats:     stats,
		publisher: publisher,
		logger:    logger,
		cron:      cron.New(),
		now:       time.Now,
	}
}

// Start регистрирует задачу по расписанию и запускает планировщик
func (j *DigestJob) Start(schedule string) error {
	_, err := j.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		if err := j.Run(ctx); err != nil {
			j.logger.WithError(err).Error("Digest run failed")
		}
	})
	if err != nil {
		return fmt.Errorf("scheduler: invalid digest schedule %q: %w", schedule, err)
	}

	j.cron.Start()
	j.logger.WithField("schedule", schedule).Info("Digest job scheduled")
	return nil
}

// Stop останавливает планировщик и ждет завершения текущего запуска
func (j *DigestJob) Stop(ctx context.Context) {
	select {
	case <-j.cron.Stop().Done():
	case <-ctx.Done():
		j.logger.Warn("Digest job did not stop in time")
	}
}

// Run один раз формирует и публикует сводку
func (j *DigestJob) Run(ctx context.Context) error {
	stats, err := j.stats.DashboardStats(ctx)
	if err != nil {
		return fmt.Errorf("scheduler: could not compute stats: %w", err)
	}

	j.logger.WithFields(logrus.Fields{
		"total":    stats.TotalReports,
		"critical": stats.CriticalReports,
		"pending":  stats.PendingReports,
		"resolved": stats.ResolvedReports,
	}).Info("Daily digest")

	event := webhook.DispatchEvent{
		Kind:      webhook.KindDigest,
		Timestamp: j.now().UTC(),
		Summary:   stats,
	}
	if err := j.publisher.Publish(ctx, event); err != nil {
		return fmt.Errorf("scheduler: could not publish digest: %w", err)
	}
	return nil
}
