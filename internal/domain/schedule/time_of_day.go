package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/Kilat-Pet-Delivery/service-appointment/internal/domain"
)

// TimeLayout is the display format of slot times, e.g. "09:00 AM".
const TimeLayout = "03:04 PM"

var acceptedTimeLayouts = []string{
	TimeLayout,
	"3:04 PM",
	"03:04PM",
	"3:04PM",
	"15:04",
}

// NormalizeTime accepts a 12-hour ("9:00 AM", "09:00 PM") or 24-hour ("14:30")
// wall-clock time and returns it in TimeLayout.
func NormalizeTime(s string) (string, error) {
	raw := strings.ToUpper(strings.TrimSpace(s))
	if raw == "" {
		return "", domain.NewValidationError("time is required")
	}
	for _, layout := range acceptedTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(TimeLayout), nil
		}
	}
	return "", domain.NewValidationError(fmt.Sprintf("invalid time %q: expected HH:MM or hh:mm AM/PM", s))
}

// To24Hour converts a display time to "HH:MM".
func To24Hour(s string) (string, error) {
	normalized, err := NormalizeTime(s)
	if err != nil {
		return "", err
	}
	t, _ := time.Parse(TimeLayout, normalized)
	return t.Format("15:04"), nil
}
