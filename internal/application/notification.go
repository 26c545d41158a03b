package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Kilat-Pet-Delivery/service-appointment/internal/domain/appointment"
	"github.com/Kilat-Pet-Delivery/service-appointment/internal/domain/settings"
	"github.com/Kilat-Pet-Delivery/service-appointment/internal/metrics"
	"github.com/Kilat-Pet-Delivery/service-appointment/internal/notify"
	"go.uber.org/zap"
)

// ConfirmationSubject is the subject line of every booking confirmation.
const ConfirmationSubject = "Your Appointment Confirmation"

// SettingsProvider supplies the effective settings for confirmations and slot windows.
type SettingsProvider interface {
	Current(ctx context.Context) settings.Settings
}

// ComposeConfirmation builds the confirmation email for appt. The body is the
// rendered template followed by a fixed summary of the date and time.
func ComposeConfirmation(cfg settings.Settings, appt *appointment.Appointment) notify.EmailMessage {
	contact := appt.Contact()
	template := cfg.EmailTemplate
	if template == "" {
		template = settings.DefaultEmailTemplate
	}
	body := settings.Render(template, settings.TemplateData{
		BusinessName:  cfg.BusinessName,
		Date:          appt.Date().String(),
		DisplayDate:   appt.Date().Display(),
		Time:          appt.SlotTime(),
		CustomerName:  contact.Name,
		CustomerEmail: contact.Email,
	})
	body += fmt.Sprintf("\n\nReference: %s\nDate: %s (%s)\nTime: %s\n",
		appt.Reference(), appt.Date().Display(), appt.Date().String(), appt.SlotTime())

	return notify.EmailMessage{
		To:      contact.Email,
		ToName:  contact.Name,
		Subject: ConfirmationSubject,
		Body:    body,
	}
}

// NotificationDispatcher sends confirmations in the background and records the
// outcome on the appointment. Sends are never retried.
type NotificationDispatcher struct {
	sender   notify.EmailSender
	repo     appointment.Repository
	settings SettingsProvider
	timeout  time.Duration
	metrics  *metrics.BookingMetrics
	logger   *zap.Logger

	wg sync.WaitGroup
}

// NewNotificationDispatcher creates a dispatcher. provider and m may be nil.
func NewNotificationDispatcher(
	sender notify.EmailSender,
	repo appointment.Repository,
	provider SettingsProvider,
	timeout time.Duration,
	m *metrics.BookingMetrics,
	logger *zap.Logger,
) *NotificationDispatcher {
	return &NotificationDispatcher{
		sender:   sender,
		repo:     repo,
		settings: provider,
		timeout:  timeout,
		metrics:  m,
		logger:   logger,
	}
}

// Dispatch starts delivery of the confirmation for appt and returns immediately.
func (d *NotificationDispatcher) Dispatch(appt *appointment.Appointment) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.deliver(appt)
	}()
}

// Wait blocks until every dispatched confirmation has finished.
func (d *NotificationDispatcher) Wait() {
	d.wg.Wait()
}

func (d *NotificationDispatcher) deliver(appt *appointment.Appointment) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	cfg := settings.Defaults()
	if d.settings != nil {
		cfg = d.settings.Current(ctx)
	}
	msg := ComposeConfirmation(cfg, appt)

	start := time.Now()
	err := d.sender.Send(ctx, msg)
	elapsed := time.Since(start).Seconds()

	if err != nil {
		d.logger.Error("failed to send booking confirmation",
			zap.String("appointment_id", appt.ID().String()),
			zap.String("to", msg.To),
			zap.Error(err),
		)
		d.metrics.ObserveNotification(appointment.NotificationFailed.String(), elapsed)
		if markErr := appt.MarkNotificationFailed(err.Error()); markErr != nil {
			d.logger.Warn("cannot record notification failure", zap.Error(markErr))
			return
		}
	} else {
		d.logger.Info("booking confirmation sent",
			zap.String("appointment_id", appt.ID().String()),
			zap.String("to", msg.To),
		)
		d.metrics.ObserveNotification(appointment.NotificationSent.String(), elapsed)
		if markErr := appt.MarkNotified(); markErr != nil {
			d.logger.Warn("cannot record notification", zap.Error(markErr))
			return
		}
	}

	// The send may have consumed the whole timeout, so persist on a fresh context.
	saveCtx, saveCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer saveCancel()
	if err := d.repo.Update(saveCtx, appt); err != nil {
		d.logger.Error("failed to record notification status",
			zap.String("appointment_id", appt.ID().String()),
			zap.Error(err),
		)
	}
}
