package consumer

import (
	"context"

	"github.com/Kilat-Pet-Delivery/service-appointment/internal/application"
	"github.com/Kilat-Pet-Delivery/service-appointment/internal/domain"
	"github.com/Kilat-Pet-Delivery/service-appointment/internal/domain/schedule"
	"github.com/Kilat-Pet-Delivery/service-appointment/internal/events"
	"github.com/Kilat-Pet-Delivery/service-appointment/internal/kafka"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ScheduleCommandConsumer applies schedule commands sent by other services,
// such as a calendar sync opening slots or closing a day.
type ScheduleCommandConsumer struct {
	consumer *kafka.Consumer
	service  *application.BookingService
	logger   *zap.Logger
}

// NewScheduleCommandConsumer creates a new ScheduleCommandConsumer.
func NewScheduleCommandConsumer(
	brokers []string,
	groupID string,
	service *application.BookingService,
	logger *zap.Logger,
) *ScheduleCommandConsumer {
	return &ScheduleCommandConsumer{
		consumer: kafka.NewConsumer(brokers, groupID, events.TopicScheduleCommands, logger),
		service:  service,
		logger:   logger,
	}
}

// Start begins consuming commands. This blocks until the context is cancelled.
func (c *ScheduleCommandConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *ScheduleCommandConsumer) Close() error {
	return c.consumer.Close()
}

func (c *ScheduleCommandConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from schedule topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case events.ScheduleSlotRequested:
		return c.handleSlotRequested(ctx, cloudEvent)
	case events.ScheduleDateClosed:
		return c.handleDateClosed(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled schedule command type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *ScheduleCommandConsumer) handleSlotRequested(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var cmd events.SlotRequestedCommand
	if err := cloudEvent.ParseData(&cmd); err != nil {
		c.logger.Error("failed to parse SlotRequestedCommand data", zap.Error(err))
		return nil
	}

	date, err := schedule.ParseDate(cmd.Date)
	if err != nil {
		c.logger.Warn("rejecting slot request", zap.String("date", cmd.Date), zap.Error(err))
		return nil
	}

	slot, err := c.service.AddTimeSlot(ctx, date, cmd.Time)
	if err != nil {
		if domain.IsValidation(err) {
			c.logger.Warn("rejecting slot request", zap.String("time", cmd.Time), zap.Error(err))
			return nil
		}
		return err
	}

	c.logger.Info("slot opened from command",
		zap.String("date", date.String()),
		zap.String("slot_id", slot.ID),
	)
	return nil
}

func (c *ScheduleCommandConsumer) handleDateClosed(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var cmd events.DateClosedCommand
	if err := cloudEvent.ParseData(&cmd); err != nil {
		c.logger.Error("failed to parse DateClosedCommand data", zap.Error(err))
		return nil
	}

	date, err := schedule.ParseDate(cmd.Date)
	if err != nil {
		c.logger.Warn("rejecting date close", zap.String("date", cmd.Date), zap.Error(err))
		return nil
	}

	if err := c.service.RemoveAvailableDate(ctx, date); err != nil {
		if domain.IsNotFound(err) {
			c.logger.Debug("date already closed", zap.String("date", date.String()))
			return nil
		}
		return err
	}

	c.logger.Info("date closed from command", zap.String("date", date.String()))
	return nil
}
