package model

import (
	"strconv"
	"strings"
)

// ActionItemTimestamp marks discussion points that are action items.
const ActionItemTimestamp = "action_item"

// ParseClock parses a recording clock into seconds. Two-part values such as
// "6:16" are minutes and seconds, three-part values are hours, minutes and
// seconds. Every part after the first has two digits and is below 60.
func ParseClock(clock string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(clock), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}

	total := 0
	for i, part := range parts {
		if part == "" || !isDigits(part) {
			return 0, false
		}
		if i > 0 && len(part) != 2 {
			return 0, false
		}
		if i == 0 && len(part) > 2 {
			return 0, false
		}

		value, err := strconv.Atoi(part)
		if err != nil {
			return 0, false
		}
		if i > 0 && value >= 60 {
			return 0, false
		}
		total = total*60 + value
	}

	return total, true
}

// ClockOffset returns the offset in seconds of a timestamp or nil when it
// is absent or not a clock value.
func ClockOffset(timestamp *string) *int {
	if timestamp == nil {
		return nil
	}
	offset, ok := ParseClock(*timestamp)
	if !ok {
		return nil
	}
	return &offset
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
