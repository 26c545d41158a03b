package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Kilat-Pet-Delivery/service-appointment/internal/domain/schedule"
	"github.com/Kilat-Pet-Delivery/service-appointment/internal/kafka"
	"github.com/Kilat-Pet-Delivery/service-appointment/internal/notify"
	"github.com/Kilat-Pet-Delivery/service-appointment/internal/repository"
)

const testSession = "session-1"

var (
	may20 = schedule.MustParseDate("2025-05-20")
	may21 = schedule.MustParseDate("2025-05-21")
	may22 = schedule.MustParseDate("2025-05-22")
)

// fakeSender records every message and fails when err is set.
type fakeSender struct {
	mu   sync.Mutex
	msgs []notify.EmailMessage
	err  error
}

func (f *fakeSender) Send(_ context.Context, msg notify.EmailMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, msg)
	return f.err
}

func (f *fakeSender) sent() []notify.EmailMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notify.EmailMessage(nil), f.msgs...)
}

// recordingPublisher keeps published event types in order.
type recordingPublisher struct {
	mu     sync.Mutex
	events []kafka.CloudEvent
}

func (p *recordingPublisher) PublishEvent(_ context.Context, _ string, event kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) find(eventType string) (kafka.CloudEvent, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range p.events {
		if e.Type == eventType {
			return e, true
		}
	}
	return kafka.CloudEvent{}, false
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type serviceStack struct {
	service    *BookingService
	settings   *SettingsService
	dispatcher *NotificationDispatcher
	repo       *repository.MemoryAppointmentRepository
	sender     *fakeSender
	publisher  *recordingPublisher
}

// newServiceStack wires a BookingService over the sample calendar with the
// clock fixed at 2025-05-19 10:00 UTC.
func newServiceStack(t *testing.T) *serviceStack {
	t.Helper()
	store := schedule.NewStore(schedule.WithIDGenerator(schedule.NewSequenceGenerator(12)))
	require.NoError(t, store.Restore(schedule.SampleDates()))

	logger := zap.NewNop()
	repo := repository.NewMemoryAppointmentRepository()
	settingsSvc := NewSettingsService(repository.NewMemorySettingsRepository(), logger)
	sender := &fakeSender{}
	publisher := &recordingPublisher{}
	dispatcher := NewNotificationDispatcher(sender, repo, settingsSvc, time.Second, nil, logger)

	svc := NewBookingService(store, repo, dispatcher, publisher, logger,
		WithClock(func() time.Time { return time.Date(2025, 5, 19, 10, 0, 0, 0, time.UTC) }),
		WithSettings(settingsSvc),
	)
	return &serviceStack{
		service:    svc,
		settings:   settingsSvc,
		dispatcher: dispatcher,
		repo:       repo,
		sender:     sender,
		publisher:  publisher,
	}
}

var errSMTPDown = errors.New("smtp: connection refused")
