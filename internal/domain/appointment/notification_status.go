package appointment

import "fmt"

// NotificationStatus tracks delivery of the booking confirmation.
type NotificationStatus string

const (
	NotificationPending NotificationStatus = "pending"
	NotificationSent    NotificationStatus = "sent"
	NotificationFailed  NotificationStatus = "failed"
)

// validTransitions defines the confirmation delivery state machine. There is
// no retry, so both outcomes are terminal.
var validTransitions = map[NotificationStatus][]NotificationStatus{
	NotificationPending: {NotificationSent, NotificationFailed},
	NotificationSent:    {},
	NotificationFailed:  {},
}

// IsValid returns true if the status is recognized.
func (s NotificationStatus) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s NotificationStatus) CanTransitionTo(target NotificationStatus) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s NotificationStatus) IsTerminal() bool {
	allowed, exists := validTransitions[s]
	return !exists || len(allowed) == 0
}

func (s NotificationStatus) String() string {
	return string(s)
}

// ParseNotificationStatus converts a string to a NotificationStatus.
func ParseNotificationStatus(s string) (NotificationStatus, error) {
	status := NotificationStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid notification status: %s", s)
	}
	return status, nil
}
