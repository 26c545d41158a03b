package application

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/Kilat-Pet-Delivery/service-appointment/internal/domain"
	"github.com/Kilat-Pet-Delivery/service-appointment/internal/domain/appointment"
	"github.com/Kilat-Pet-Delivery/service-appointment/internal/domain/schedule"
	"github.com/Kilat-Pet-Delivery/service-appointment/internal/domain/settings"
	"github.com/Kilat-Pet-Delivery/service-appointment/internal/events"
	"github.com/Kilat-Pet-Delivery/service-appointment/internal/kafka"
	"github.com/Kilat-Pet-Delivery/service-appointment/internal/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	eventSource    = "service-appointment"
	exportPageSize = 100
)

// BookingService is the application service orchestrating schedule and booking use cases.
type BookingService struct {
	store      *schedule.Store
	repo       appointment.Repository
	dispatcher *NotificationDispatcher
	producer   kafka.EventPublisher
	settings   SettingsProvider
	metrics    *metrics.BookingMetrics
	logger     *zap.Logger

	location *time.Location
	now      func() time.Time
}

// ServiceOption configures a BookingService.
type ServiceOption func(*BookingService)

// WithLocation sets the time zone that decides which dates are in the past
// for listing and selection.
func WithLocation(loc *time.Location) ServiceOption {
	return func(s *BookingService) { s.location = loc }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *BookingService) { s.now = now }
}

// WithSettings supplies the slot duration used for booked appointment windows.
func WithSettings(provider SettingsProvider) ServiceOption {
	return func(s *BookingService) { s.settings = provider }
}

// WithMetrics attaches Prometheus collectors.
func WithMetrics(m *metrics.BookingMetrics) ServiceOption {
	return func(s *BookingService) { s.metrics = m }
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	store *schedule.Store,
	repo appointment.Repository,
	dispatcher *NotificationDispatcher,
	producer kafka.EventPublisher,
	logger *zap.Logger,
	opts ...ServiceOption,
) *BookingService {
	s := &BookingService{
		store:      store,
		repo:       repo,
		dispatcher: dispatcher,
		producer:   producer,
		logger:     logger,
		location:   time.UTC,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.refreshAvailability()
	return s
}

// Today returns the current calendar date in the service time zone.
func (s *BookingService) Today() schedule.Date {
	return schedule.DateOf(s.now().In(s.location))
}

// --- Admin schedule management ---

// AddAvailableDate opens date with no slots. It reports whether the date was
// created; adding an existing date changes nothing.
func (s *BookingService) AddAvailableDate(ctx context.Context, date schedule.Date) bool {
	if !s.store.AddAvailableDate(date) {
		return false
	}
	s.logger.Info("date added", zap.String("date", date.String()))
	s.metrics.ObserveScheduleChange("date_added")
	s.publishEvent(ctx, events.ScheduleDateAdded, date.String(), events.DateAddedEvent{
		Date:       date.String(),
		OccurredAt: time.Now().UTC(),
	})
	return true
}

// AddTimeSlot adds an available slot at timeOfDay ("HH:MM" or "hh:mm AM") to
// date, creating the date if needed.
func (s *BookingService) AddTimeSlot(ctx context.Context, date schedule.Date, timeOfDay string) (*schedule.TimeSlot, error) {
	normalized, err := schedule.NormalizeTime(timeOfDay)
	if err != nil {
		return nil, err
	}

	slot, dateCreated := s.store.AddTimeSlot(date, normalized)
	if dateCreated {
		s.metrics.ObserveScheduleChange("date_added")
		s.publishEvent(ctx, events.ScheduleDateAdded, date.String(), events.DateAddedEvent{
			Date:       date.String(),
			OccurredAt: time.Now().UTC(),
		})
	}

	s.logger.Info("time slot added",
		zap.String("date", date.String()),
		zap.String("slot_id", slot.ID),
		zap.String("time", slot.Time),
		zap.Bool("date_created", dateCreated),
	)
	s.metrics.ObserveScheduleChange("slot_added")
	s.refreshAvailability()
	s.publishEvent(ctx, events.ScheduleSlotAdded, date.String(), events.SlotAddedEvent{
		Date:       date.String(),
		SlotID:     slot.ID,
		Time:       slot.Time,
		OccurredAt: time.Now().UTC(),
	})
	return &slot, nil
}

// RemoveTimeSlot deletes a slot. The date goes too when it was its last slot.
func (s *BookingService) RemoveTimeSlot(ctx context.Context, date schedule.Date, slotID string) error {
	removed, dateRemoved := s.store.RemoveTimeSlot(date, slotID)
	if !removed {
		return domain.NewNotFoundError("TimeSlot", fmt.Sprintf("%s/%s", date, slotID))
	}

	s.logger.Info("time slot removed",
		zap.String("date", date.String()),
		zap.String("slot_id", slotID),
		zap.Bool("date_removed", dateRemoved),
	)
	s.metrics.ObserveScheduleChange("slot_removed")
	s.refreshAvailability()
	s.publishEvent(ctx, events.ScheduleSlotRemoved, date.String(), events.SlotRemovedEvent{
		Date:       date.String(),
		SlotID:     slotID,
		OccurredAt: time.Now().UTC(),
	})
	if dateRemoved {
		s.metrics.ObserveScheduleChange("date_removed")
		s.publishEvent(ctx, events.ScheduleDateRemoved, date.String(), events.DateRemovedEvent{
			Date:       date.String(),
			Cascade:    true,
			OccurredAt: time.Now().UTC(),
		})
	}
	return nil
}

// RemoveAvailableDate deletes date and all its slots.
func (s *BookingService) RemoveAvailableDate(ctx context.Context, date schedule.Date) error {
	if !s.store.RemoveAvailableDate(date) {
		return domain.NewNotFoundError("AppointmentDate", date.String())
	}

	s.logger.Info("date removed", zap.String("date", date.String()))
	s.metrics.ObserveScheduleChange("date_removed")
	s.refreshAvailability()
	s.publishEvent(ctx, events.ScheduleDateRemoved, date.String(), events.DateRemovedEvent{
		Date:       date.String(),
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

// --- Booking ---

// BookSlot books slotID on date for the client and reports success. A slot can
// only be booked once; later calls return false and send nothing.
func (s *BookingService) BookSlot(ctx context.Context, date schedule.Date, slotID, clientEmail, clientName string) bool {
	_, err := s.Book(ctx, BookSlotRequest{
		Date:   date.String(),
		SlotID: slotID,
		Name:   clientName,
		Email:  clientEmail,
	})
	return err == nil
}

// Book validates the contact, marks the slot booked, records the appointment
// and starts the confirmation email. Only a missing date, a missing slot or an
// already booked slot refuse the booking; how far the date lies in the past is
// left to the listing and selection queries. The result does not depend on delivery.
func (s *BookingService) Book(ctx context.Context, req BookSlotRequest) (*AppointmentDTO, error) {
	date, err := schedule.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	contact := appointment.Contact{Name: req.Name, Email: req.Email, Phone: req.Phone, Notes: req.Notes}
	if err := contact.Validate(); err != nil {
		s.metrics.ObserveBooking("rejected")
		return nil, err
	}

	slot, ok := s.store.BookSlot(date, req.SlotID)
	if !ok {
		s.metrics.ObserveBooking("unavailable")
		return nil, s.bookingFailure(date, req.SlotID, slot)
	}

	appt, err := appointment.NewAppointment(date, slot, contact)
	if err != nil {
		// The slot is already taken; the failure is reported without undoing it.
		s.logger.Error("failed to create appointment for booked slot",
			zap.String("date", date.String()),
			zap.String("slot_id", slot.ID),
			zap.Error(err),
		)
		return nil, err
	}
	if err := s.repo.Save(ctx, appt); err != nil {
		s.logger.Error("failed to save appointment",
			zap.String("appointment_id", appt.ID().String()),
			zap.Error(err),
		)
	}

	s.logger.Info("slot booked",
		zap.String("appointment_id", appt.ID().String()),
		zap.String("reference", appt.Reference()),
		zap.String("date", date.String()),
		zap.String("slot_id", slot.ID),
		zap.String("time", slot.Time),
	)
	s.metrics.ObserveBooking("booked")
	s.refreshAvailability()
	if n := s.store.ResetSelectionsHolding(date, slot.ID); n > 0 {
		s.logger.Debug("selections released by booking", zap.String("slot_id", slot.ID), zap.Int("sessions", n))
	}

	booked := events.AppointmentBookedEvent{
		AppointmentID: appt.ID().String(),
		Reference:     appt.Reference(),
		Date:          date.String(),
		SlotID:        slot.ID,
		Time:          slot.Time,
		ClientName:    appt.Contact().Name,
		ClientEmail:   appt.Contact().Email,
		OccurredAt:    time.Now().UTC(),
	}
	if start, err := date.At(slot.Time, s.location); err == nil {
		booked.StartsAt = start.UTC()
		booked.EndsAt = start.Add(s.slotDuration(ctx)).UTC()
	} else {
		s.logger.Warn("slot time not parseable", zap.String("slot_id", slot.ID), zap.Error(err))
	}
	s.publishEvent(ctx, events.AppointmentBooked, date.String(), booked)

	result := toAppointmentDTO(appt)
	s.dispatcher.Dispatch(appt)
	return &result, nil
}

// bookingFailure explains why BookSlot refused.
func (s *BookingService) bookingFailure(date schedule.Date, slotID string, slot schedule.TimeSlot) error {
	if slot.ID != "" {
		return domain.NewConflictError(fmt.Sprintf("time slot %s on %s is already booked", slotID, date))
	}
	if _, ok := s.store.Date(date); !ok {
		return domain.NewNotFoundError("AppointmentDate", date.String())
	}
	return domain.NewNotFoundError("TimeSlot", slotID)
}

// --- Queries ---

// ListDates returns every date, including past and fully booked ones.
func (s *BookingService) ListDates() []AppointmentDateDTO {
	return toDateDTOs(s.store.Dates())
}

// ListBookableDates returns the dates a client may pick today, each with only
// its available slots.
func (s *BookingService) ListBookableDates() []AppointmentDateDTO {
	dates := s.store.BookableDates(s.Today())
	for i := range dates {
		dates[i].TimeSlots = dates[i].AvailableSlots()
	}
	return toDateDTOs(dates)
}

// GetDate returns one date with all its slots.
func (s *BookingService) GetDate(date schedule.Date) (*AppointmentDateDTO, error) {
	ad, ok := s.store.Date(date)
	if !ok {
		return nil, domain.NewNotFoundError("AppointmentDate", date.String())
	}
	result := toAppointmentDateDTO(ad)
	return &result, nil
}

// AvailableSlots returns the available slots of date in the order they were added.
func (s *BookingService) AvailableSlots(date schedule.Date) ([]schedule.TimeSlot, error) {
	if _, ok := s.store.Date(date); !ok {
		return nil, domain.NewNotFoundError("AppointmentDate", date.String())
	}
	return s.store.AvailableSlots(date), nil
}

// --- Selection ---

// GetSelection returns the selection of session.
func (s *BookingService) GetSelection(session string) SelectionDTO {
	sel := s.store.Selection(session)
	return SelectionDTO{Date: sel.Date, TimeSlot: sel.TimeSlot}
}

// SelectDate selects a bookable date for session, or clears its selection when
// date is nil. Picking a different date drops the selected slot.
func (s *BookingService) SelectDate(session string, date *schedule.Date) (SelectionDTO, error) {
	if date != nil && !s.store.IsBookable(*date, s.Today()) {
		if _, ok := s.store.Date(*date); !ok {
			return SelectionDTO{}, domain.NewNotFoundError("AppointmentDate", date.String())
		}
		return SelectionDTO{}, domain.NewConflictError(fmt.Sprintf("date %s is not bookable", date))
	}
	s.store.SetSelectedDate(session, date)
	return s.GetSelection(session), nil
}

// SelectTimeSlot selects a slot of the session's selected date; an empty id clears it.
func (s *BookingService) SelectTimeSlot(session, slotID string) (SelectionDTO, error) {
	if err := s.store.SetSelectedTimeSlot(session, slotID); err != nil {
		return SelectionDTO{}, err
	}
	return s.GetSelection(session), nil
}

// ClearSelection resets the selection of session.
func (s *BookingService) ClearSelection(session string) {
	s.store.ResetSelection(session)
}

// --- Appointment ledger (admin) ---

// ListAppointments returns appointments newest first.
func (s *BookingService) ListAppointments(ctx context.Context, page, limit int) (*PaginatedResult[AppointmentDTO], error) {
	appts, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}

	dtos := make([]AppointmentDTO, len(appts))
	for i, a := range appts {
		dtos[i] = toAppointmentDTO(a)
	}
	result := NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// GetAppointment returns one appointment.
func (s *BookingService) GetAppointment(ctx context.Context, id uuid.UUID) (*AppointmentDTO, error) {
	appt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	result := toAppointmentDTO(appt)
	return &result, nil
}

// ExportAppointments writes every appointment to w as CSV, newest first.
func (s *BookingService) ExportAppointments(ctx context.Context, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"reference", "date", "time", "name", "email", "phone", "notes", "notification_status", "created_at",
	}); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for page := 1; ; page++ {
		appts, total, err := s.repo.ListAll(ctx, page, exportPageSize)
		if err != nil {
			return fmt.Errorf("failed to export appointments: %w", err)
		}
		for _, a := range appts {
			c := a.Contact()
			if err := cw.Write([]string{
				a.Reference(),
				a.Date().String(),
				a.SlotTime(),
				c.Name,
				c.Email,
				c.Phone,
				c.Notes,
				a.NotificationStatus().String(),
				a.CreatedAt().Format(time.RFC3339),
			}); err != nil {
				return fmt.Errorf("failed to write csv row: %w", err)
			}
		}
		if len(appts) == 0 || int64(page*exportPageSize) >= total {
			break
		}
	}

	cw.Flush()
	return cw.Error()
}

// ClearAppointments deletes the ledger. Booked slots stay booked.
func (s *BookingService) ClearAppointments(ctx context.Context) (int64, error) {
	removed, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to clear appointments: %w", err)
	}

	s.logger.Info("appointments cleared", zap.Int64("removed", removed))
	s.publishEvent(ctx, events.AppointmentsCleared, "", events.AppointmentsClearedEvent{
		Removed:    removed,
		OccurredAt: time.Now().UTC(),
	})
	return removed, nil
}

// GetStats returns schedule and ledger statistics.
func (s *BookingService) GetStats(ctx context.Context) (*StatsDTO, error) {
	counts, err := s.repo.CountByNotificationStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment stats: %w", err)
	}

	stats := &StatsDTO{ByNotificationStatus: counts}
	for _, c := range counts {
		stats.TotalAppointments += c
	}
	for _, d := range s.store.Dates() {
		stats.TotalDates++
		for _, slot := range d.TimeSlots {
			stats.TotalSlots++
			if slot.IsAvailable {
				stats.AvailableSlots++
			} else {
				stats.BookedSlots++
			}
		}
	}
	return stats, nil
}

// --- Helpers ---

func toDateDTOs(dates []schedule.AppointmentDate) []AppointmentDateDTO {
	out := make([]AppointmentDateDTO, len(dates))
	for i, d := range dates {
		out[i] = toAppointmentDateDTO(d)
	}
	return out
}

func (s *BookingService) slotDuration(ctx context.Context) time.Duration {
	if s.settings == nil {
		return settings.Defaults().SlotDuration()
	}
	return s.settings.Current(ctx).SlotDuration()
}

func (s *BookingService) refreshAvailability() {
	if s.metrics == nil {
		return
	}
	n := 0
	for _, d := range s.store.Dates() {
		n += len(d.AvailableSlots())
	}
	s.metrics.SetAvailableSlots(n)
}

func (s *BookingService) publishEvent(ctx context.Context, eventType, subject string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent(eventSource, eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}
	cloudEvent.Subject = subject

	if err := s.producer.PublishEvent(ctx, events.TopicAppointmentEvents, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", events.TopicAppointmentEvents),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
