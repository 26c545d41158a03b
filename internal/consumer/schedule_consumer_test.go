package consumer

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Kilat-Pet-Delivery/service-appointment/internal/application"
	"github.com/Kilat-Pet-Delivery/service-appointment/internal/domain/schedule"
	"github.com/Kilat-Pet-Delivery/service-appointment/internal/events"
	"github.com/Kilat-Pet-Delivery/service-appointment/internal/kafka"
	"github.com/Kilat-Pet-Delivery/service-appointment/internal/notify"
	"github.com/Kilat-Pet-Delivery/service-appointment/internal/repository"
)

// newTestConsumer builds a consumer around a real service; the Kafka reader is
// never started.
func newTestConsumer(t *testing.T) (*ScheduleCommandConsumer, *application.BookingService) {
	t.Helper()
	logger := zap.NewNop()
	store := schedule.NewStore()
	require.NoError(t, store.Restore(schedule.SampleDates()))
	repo := repository.NewMemoryAppointmentRepository()
	dispatcher := application.NewNotificationDispatcher(notify.NewLogSender(logger), repo, nil, time.Second, nil, logger)
	svc := application.NewBookingService(store, repo, dispatcher, kafka.NoopPublisher{}, logger)

	return &ScheduleCommandConsumer{service: svc, logger: logger}, svc
}

func message(t *testing.T, eventType string, data interface{}) kafkago.Message {
	t.Helper()
	ce, err := kafka.NewCloudEvent("calendar-sync", eventType, data)
	require.NoError(t, err)
	value, err := json.Marshal(ce)
	require.NoError(t, err)
	return kafkago.Message{Topic: events.TopicScheduleCommands, Value: value}
}

func TestHandleMessage_SlotRequested(t *testing.T) {
	c, svc := newTestConsumer(t)

	err := c.handleMessage(context.Background(), message(t, events.ScheduleSlotRequested,
		events.SlotRequestedCommand{Date: "2025-06-03", Time: "13:15"}))
	require.NoError(t, err)

	d, err := svc.GetDate(schedule.MustParseDate("2025-06-03"))
	require.NoError(t, err)
	require.Len(t, d.TimeSlots, 1)
	assert.Equal(t, "01:15 PM", d.TimeSlots[0].Time)
}

func TestHandleMessage_DateClosed(t *testing.T) {
	c, svc := newTestConsumer(t)
	msg := message(t, events.ScheduleDateClosed, events.DateClosedCommand{Date: "2025-05-21"})

	require.NoError(t, c.handleMessage(context.Background(), msg))
	_, err := svc.GetDate(schedule.MustParseDate("2025-05-21"))
	assert.Error(t, err)

	// Closing twice is not an error.
	assert.NoError(t, c.handleMessage(context.Background(), msg))
}

func TestHandleMessage_DropsBadInput(t *testing.T) {
	c, svc := newTestConsumer(t)
	ctx := context.Background()

	assert.NoError(t, c.handleMessage(ctx, kafkago.Message{Value: []byte("{not json")}))
	assert.NoError(t, c.handleMessage(ctx, message(t, "schedule.unknown", map[string]string{})))
	assert.NoError(t, c.handleMessage(ctx, message(t, events.ScheduleSlotRequested,
		events.SlotRequestedCommand{Date: "tomorrow", Time: "10:00"})))
	assert.NoError(t, c.handleMessage(ctx, message(t, events.ScheduleSlotRequested,
		events.SlotRequestedCommand{Date: "2025-06-03", Time: "noon"})))

	assert.Len(t, svc.ListDates(), 3)
}
