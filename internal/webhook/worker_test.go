package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/binalert/internal/config"
	"github.com/shenikar/binalert/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах
	return logger
}

func newTestRedis(t *testing.T) *redis.Client {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func testConfig(url string) *config.Config {
	return &config.Config{
		WebhookURL:        url,
		WebhookSecret:     "s3cret",
		WebhookTimeout:    time.Second,
		WebhookMaxRetries: 3,
		WebhookBaseDelay:  time.Millisecond,
	}
}

func TestProcessEvent_DeliversSignedPayload(t *testing.T) {
	payload := `{"kind":"report","report_id":"r1"}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, payload, string(body))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, generateHMACSHA256(payload, "s3cret"), r.Header.Get("X-Webhook-Signature"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	worker := NewWebhookWorker(nil, newTestLogger(), testConfig(srv.URL))

	ok := worker.processEvent(context.Background(), DispatchEvent{Kind: KindReport, ReportID: "r1"}, payload)
	assert.True(t, ok)
}

func TestProcessEvent_RetriesUntilSuccess(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	worker := NewWebhookWorker(nil, newTestLogger(), testConfig(srv.URL))

	ok := worker.processEvent(context.Background(), DispatchEvent{Kind: KindReport}, `{}`)
	assert.True(t, ok)
	assert.Equal(t, int32(3), calls.Load())
}

func TestProcessEvent_GivesUp(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	worker := NewWebhookWorker(nil, newTestLogger(), testConfig(srv.URL))

	ok := worker.processEvent(context.Background(), DispatchEvent{Kind: KindReport}, `{}`)
	assert.False(t, ok)
	assert.Equal(t, int32(3), calls.Load())
}

func TestProcessEvent_NoURL(t *testing.T) {
	worker := NewWebhookWorker(nil, newTestLogger(), testConfig(""))
	assert.False(t, worker.processEvent(context.Background(), DispatchEvent{}, `{}`))
}

func TestRedisWebhookPublisher_Publish(t *testing.T) {
	client := newTestRedis(t)
	publisher := NewRedisWebhookPublisher(client)
	ctx := context.Background()

	event := DispatchEvent{
		Kind:       KindReport,
		ReportID:   "r1",
		Urgency:    models.UrgencyCritical,
		WasteTypes: []string{"hazardous"},
		Timestamp:  time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	require.NoError(t, publisher.Publish(ctx, event))

	raw, err := client.RPop(ctx, webhookQueueKey).Result()
	require.NoError(t, err)

	var got DispatchEvent
	require.NoError(t, json.Unmarshal([]byte(raw), &got))
	assert.Equal(t, event, got)
}

func TestWebhookWorker_ConsumesQueue(t *testing.T) {
	delivered := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var event DispatchEvent
		_ = json.NewDecoder(r.Body).Decode(&event)
		delivered <- event.ReportID
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := newTestRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker := NewWebhookWorker(client, newTestLogger(), testConfig(srv.URL))
	worker.Start(ctx)

	require.NoError(t, NewRedisWebhookPublisher(client).Publish(ctx, DispatchEvent{Kind: KindReport, ReportID: "queued"}))

	select {
	case id := <-delivered:
		assert.Equal(t, "queued", id)
	case <-time.After(5 * time.Second):
		t.Fatal("dispatch event was not delivered")
	}
}
