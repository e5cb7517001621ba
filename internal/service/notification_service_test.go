package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salvaalejos/ceitm-web/internal/models"
	"github.com/salvaalejos/ceitm-web/pkg/config"
	"github.com/salvaalejos/ceitm-web/pkg/mailer"
)

// flakySender fails the first n sends, then delivers.
type flakySender struct {
	failures int32
	calls    int32
	to       atomic.Value
}

func (f *flakySender) Send(ctx context.Context, msg mailer.Message) error {
	if atomic.AddInt32(&f.calls, 1) <= f.failures {
		return errors.New("smtp unavailable")
	}
	f.to.Store(msg.To)
	return nil
}

func notificationConfig() config.NotificationsConfig {
	return config.NotificationsConfig{
		Enabled:    true,
		Workers:    1,
		MaxRetries: 2,
		RetryDelay: time.Millisecond,
	}
}

func TestNotificationDeliveryRetriesTransientFailures(t *testing.T) {
	sender := &flakySender{failures: 2}
	svc := NewNotificationService(sender, notificationConfig(), nil, nil)
	svc.Start(context.Background())
	defer svc.Stop()

	svc.ApplicationReceived(&models.ScholarshipApplication{
		ID:       "app-1",
		FullName: "Ana Torres",
		Email:    "ana@example.com",
	}, "Beca Alimenticia 2026")

	require.Eventually(t, func() bool {
		return sender.to.Load() != nil
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, "ana@example.com", sender.to.Load())
	assert.EqualValues(t, 3, atomic.LoadInt32(&sender.calls))
}

func TestNotificationDroppedAfterRetriesExhausted(t *testing.T) {
	sender := &flakySender{failures: 100}
	svc := NewNotificationService(sender, notificationConfig(), nil, nil)
	svc.Start(context.Background())
	defer svc.Stop()

	svc.ComplaintReceived(&models.Complaint{
		FullName:     "Luis Mora",
		Email:        "luis@example.com",
		TrackingCode: "CEITM-2026-001",
	})

	// One initial attempt plus two retries, then the mail is given up on.
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&sender.calls) == 3
	}, 2*time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.EqualValues(t, 3, atomic.LoadInt32(&sender.calls))
}
