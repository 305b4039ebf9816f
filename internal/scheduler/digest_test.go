package scheduler

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shenikar/binalert/internal/service"
	"github.com/shenikar/binalert/internal/service/mocks"
	"github.com/shenikar/binalert/internal/webhook"
	webhook_mocks "github.com/shenikar/binalert/internal/webhook/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestDigestJob(t *testing.T) (*DigestJob, *mocks.MockReportService, *webhook_mocks.MockWebhookPublisher) {
	ctrl := gomock.NewController(t)
	statsMock := mocks.NewMockReportService(ctrl)
	publisherMock := webhook_mocks.NewMockWebhookPublisher(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	return NewDigestJob(statsMock, publisherMock, logger), statsMock, publisherMock
}

func TestDigestJob_Run(t *testing.T) {
	job, statsMock, publisherMock := newTestDigestJob(t)
	ctx := context.Background()
	fixed := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	job.now = func() time.Time { return fixed }

	stats := &service.DashboardStats{TotalReports: 5, CriticalReports: 2}
	statsMock.EXPECT().DashboardStats(ctx).Return(stats, nil)
	publisherMock.EXPECT().Publish(ctx, webhook.DispatchEvent{
		Kind:      webhook.KindDigest,
		Timestamp: fixed,
		Summary:   stats,
	}).Return(nil)

	require.NoError(t, job.Run(ctx))
}

func TestDigestJob_RunErrors(t *testing.T) {
	t.Run("stats failure", func(t *testing.T) {
		job, statsMock, publisherMock := newTestDigestJob(t)
		statsMock.EXPECT().DashboardStats(gomock.Any()).Return(nil, errors.New("db down"))
		publisherMock.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(0)

		assert.ErrorContains(t, job.Run(context.Background()), "db down")
	})

	t.Run("publish failure", func(t *testing.T) {
		job, statsMock, publisherMock := newTestDigestJob(t)
		statsMock.EXPECT().DashboardStats(gomock.Any()).Return(&service.DashboardStats{}, nil)
		publisherMock.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("queue down"))

		assert.ErrorContains(t, job.Run(context.Background()), "queue down")
	})
}

func TestDigestJob_StartRejectsBadSchedule(t *testing.T) {
	job, _, _ := newTestDigestJob(t)
	assert.Error(t, job.Start("not a schedule"))
}

func TestDigestJob_StartStop(t *testing.T) {
	job, _, _ := newTestDigestJob(t)
	require.NoError(t, job.Start("@daily"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	job.Stop(ctx)
}
