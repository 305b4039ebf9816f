package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shenikar/binalert/internal/models"
	"github.com/sirupsen/logrus"
)

//go:generate mockgen -source=publisher.go -destination=mocks/publisher.go -package=mocks

const (
	webhookQueueKey = "dispatch_events"
)

// Виды событий диспетчеризации
const (
	KindReport = "report"
	KindDigest = "digest"
)

// DispatchEvent - событие для службы вывоза: срочный отчет или сводка
type DispatchEvent struct {
	Kind          string         `json:"kind"`
	ReportID      string         `json:"report_id,omitempty"`
	ReporterID    string         `json:"reporter_id,omitempty"`
	Urgency       models.Urgency `json:"urgency,omitempty"`
	WasteTypes    []string       `json:"waste_types,omitempty"`
	OverflowLevel int            `json:"overflow_level,omitempty"`
	Latitude      float64        `json:"latitude,omitempty"`
	Longitude     float64        `json:"longitude,omitempty"`
	Timestamp     time.Time      `json:"timestamp"`
	Summary       any            `json:"summary,omitempty"` // статистика для сводки
}

// WebhookPublisher - интерфейс для публикации вебхуков
type WebhookPublisher interface {
	Publish(ctx context.Context, event DispatchEvent) error
}

// RedisWebhookPublisher - реализация WebhookPublisher, использующая Redis
type RedisWebhookPublisher struct {
	redisClient *redis.Client
}

// NewRedisWebhookPublisher создает новый RedisWebhookPublisher
func NewRedisWebhookPublisher(client *redis.Client) *RedisWebhookPublisher {
	return &RedisWebhookPublisher{
		redisClient: client,
	}
}

// Publish публикует событие вебхука в очередь Redis
func (p *RedisWebhookPublisher) Publish(ctx context.Context, event DispatchEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal dispatch event: %w", err)
	}

	// LPUSH в голову списка, воркер забирает с хвоста через BRPOP
	if err := p.redisClient.LPush(ctx, webhookQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish dispatch event to Redis: %w", err)
	}
	return nil
}

// NopPublisher отбрасывает события, когда очередь не настроена
type NopPublisher struct {
	logger *logrus.Logger
}

func NewNopPublisher(logger *logrus.Logger) *NopPublisher {
	return &NopPublisher{logger: logger}
}

func (p *NopPublisher) Publish(_ context.Context, event DispatchEvent) error {
	p.logger.WithFields(logrus.Fields{
		"kind":      event.Kind,
		"report_id": event.ReportID,
	}).Debug("Dispatch queue is not configured, event dropped")
	return nil
}
