package settings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Kilat-Pet-Delivery/service-appointment/internal/domain"
)

// DefaultEmailTemplate is used when no custom template has been saved.
const DefaultEmailTemplate = "Thank you for booking with {businessName}! Your appointment is scheduled for {displayDate} ({date}) at {time}."

// AllowedSlotDurations lists the slot lengths, in minutes, an admin may choose.
var AllowedSlotDurations = []int{15, 30, 45, 60, 90, 120}

// Settings is the business configuration edited from the admin panel. It is
// independent of the booking model.
type Settings struct {
	BusinessName        string `json:"business_name"`
	EmailTemplate       string `json:"email_template"`
	SlotDurationMinutes int    `json:"slot_duration_minutes"`
	BusinessHoursStart  string `json:"business_hours_start"`
	BusinessHoursEnd    string `json:"business_hours_end"`
	SquarespaceAPIKey   string `json:"squarespace_api_key,omitempty"`
}

// Defaults returns the settings used before anything is saved.
func Defaults() Settings {
	return Settings{
		BusinessName:        "My Booking Business",
		EmailTemplate:       DefaultEmailTemplate,
		SlotDurationMinutes: 60,
		BusinessHoursStart:  "09:00",
		BusinessHoursEnd:    "17:00",
	}
}

// Validate checks required fields, the slot duration and the business hours window.
func (s Settings) Validate() error {
	if strings.TrimSpace(s.BusinessName) == "" {
		return domain.NewValidationError("business name is required")
	}
	if strings.TrimSpace(s.EmailTemplate) == "" {
		return domain.NewValidationError("email template is required")
	}
	if !isAllowedDuration(s.SlotDurationMinutes) {
		return domain.NewValidationError(fmt.Sprintf("slot duration must be one of %v minutes", AllowedSlotDurations))
	}
	start, err := time.Parse("15:04", s.BusinessHoursStart)
	if err != nil {
		return domain.NewValidationError("business hours start must be HH:MM")
	}
	end, err := time.Parse("15:04", s.BusinessHoursEnd)
	if err != nil {
		return domain.NewValidationError("business hours end must be HH:MM")
	}
	if !start.Before(end) {
		return domain.NewValidationError("business hours start must be before end")
	}
	return nil
}

// SlotDuration returns the configured slot length.
func (s Settings) SlotDuration() time.Duration {
	return time.Duration(s.SlotDurationMinutes) * time.Minute
}

func isAllowedDuration(minutes int) bool {
	for _, d := range AllowedSlotDurations {
		if d == minutes {
			return true
		}
	}
	return false
}

// TemplateData holds the values substituted into an email template.
type TemplateData struct {
	BusinessName  string
	Date          string
	DisplayDate   string
	Time          string
	CustomerName  string
	CustomerEmail string
}

// Render replaces {businessName}, {date}, {displayDate}, {time}, {customerName}
// and {customerEmail} in template. Unknown placeholders are left as-is.
func Render(template string, data TemplateData) string {
	return strings.NewReplacer(
		"{businessName}", data.BusinessName,
		"{date}", data.Date,
		"{displayDate}", data.DisplayDate,
		"{time}", data.Time,
		"{customerName}", data.CustomerName,
		"{customerEmail}", data.CustomerEmail,
	).Replace(template)
}

// Repository is the key/value store that persists Settings.
type Repository interface {
	// Get returns the stored settings; found is false when nothing was saved yet.
	Get(ctx context.Context) (cfg Settings, found bool, err error)
	// Set stores cfg, replacing any previous value.
	Set(ctx context.Context, cfg Settings) error
	// Delete removes the stored value.
	Delete(ctx context.Context) error
}
