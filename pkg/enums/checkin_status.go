package enums

import "fmt"

// CheckinStatus records the outcome of a facility admission attempt.
type CheckinStatus string

const (
	CheckinStatusAllowed CheckinStatus = "ALLOWED"
	CheckinStatusDenied  CheckinStatus = "DENIED"
)

var validCheckinStatuses = []CheckinStatus{
	CheckinStatusAllowed,
	CheckinStatusDenied,
}

// IsValid reports whether the value is a known CheckinStatus.
func (c CheckinStatus) IsValid() bool {
	for _, candidate := range validCheckinStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCheckinStatus converts raw input into a CheckinStatus.
func ParseCheckinStatus(value string) (CheckinStatus, error) {
	for _, candidate := range validCheckinStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid checkin status %q", value)
}
