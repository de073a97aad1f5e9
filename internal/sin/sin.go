package sin

import (
	"fmt"
	"strconv"
	"strings"
)

// IsNumber reports whether s is a run of digits, optionally grouped with
// spaces ("770 898 021").
func IsNumber(s string) bool {
	digits := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == ' ' || r == '\t':
		default:
			return false
		}
	}
	return digits > 0
}

// Parse converts "770 898 021" or "770898021" into 770898021.
func Parse(s string) (int, error) {
	if !IsNumber(s) {
		return 0, fmt.Errorf("invalid identification number %q", s)
	}
	n, err := strconv.Atoi(strings.Join(strings.Fields(s), ""))
	if err != nil {
		return 0, fmt.Errorf("invalid identification number %q: %w", s, err)
	}
	return n, nil
}

// Format returns the grouped form, e.g. 770898021 -> "770 898 021".
// Numbers are zero-padded to nine digits.
func Format(n int) string {
	s := fmt.Sprintf("%09d", n)
	if len(s) != 9 {
		return s
	}
	return s[0:3] + " " + s[3:6] + " " + s[6:9]
}

// Mask hides all but the last three digits: 770898021 -> "***-***-021".
func Mask(n int) string {
	s := fmt.Sprintf("%09d", n)
	return "***-***-" + s[len(s)-3:]
}
