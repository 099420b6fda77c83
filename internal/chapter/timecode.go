package chapter

import (
	"strconv"
	"strings"
)

// ValidateTime checks a MM:SS or HH:MM:SS timestamp.
// Hours are unbounded; minutes and seconds must be below 60.
func ValidateTime(s string) error {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) > 3 {
		return Errorf(KindInvalidTime, "invalid time %q: too many fields (4-field format not supported)", s)
	}
	if len(parts) < 2 {
		return Errorf(KindInvalidTime, "invalid time %q: at least MM:SS format required", s)
	}

	fields, err := parseFields(parts)
	if err != nil {
		return Wrap(KindInvalidTime, err, "invalid time "+strconv.Quote(s))
	}

	seconds := fields[len(fields)-1]
	minutes := fields[len(fields)-2]
	if seconds >= 60 {
		return Errorf(KindInvalidTime, "invalid time %q: seconds must be less than 60", s)
	}
	if minutes >= 60 {
		if len(fields) == 2 {
			return Errorf(KindInvalidTime, "invalid time %q: minutes must be less than 60, add an hours field", s)
		}
		return Errorf(KindInvalidTime, "invalid time %q: minutes must be less than 60", s)
	}
	return nil
}

// TimeToSeconds converts HH:MM:SS or MM:SS to seconds; anything else is 0
func TimeToSeconds(s string) int {
	parts := strings.Split(strings.TrimSpace(s), ":")
	fields, err := parseFields(parts)
	if err != nil {
		return 0
	}
	switch len(fields) {
	case 3:
		return fields[0]*3600 + fields[1]*60 + fields[2]
	case 2:
		return fields[0]*60 + fields[1]
	default:
		return 0
	}
}

func parseFields(parts []string) ([]int, error) {
	fields := make([]int, len(parts))
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if !allDigits(p) {
			return nil, Errorf(KindInvalidTime, "field %q is not a number", p)
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, Errorf(KindInvalidTime, "field %q is out of range", p)
		}
		fields[i] = n
	}
	return fields, nil
}

// allDigits reports whether s is non-empty and only ASCII digits; signs are rejected
func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
