package model

import (
	"fmt"
	"strconv"
	"strings"
)

// FinancialRange is the closed interval [Low, High].
type FinancialRange struct {
	Low  float64 `yaml:"low"`
	High float64 `yaml:"high"`
}

// Contains reports whether v lies within the range, inclusive of both ends.
func (r FinancialRange) Contains(v float64) bool {
	return r.Low <= v && v <= r.High
}

func (r FinancialRange) String() string {
	return fmt.Sprintf("[%s, %s]", strconv.FormatFloat(r.Low, 'f', -1, 64), strconv.FormatFloat(r.High, 'f', -1, 64))
}

// ParseFinancialRange parses "low:high", e.g. "100:5000".
func ParseFinancialRange(s string) (FinancialRange, error) {
	lo, hi, ok := strings.Cut(s, ":")
	if !ok {
		return FinancialRange{}, fmt.Errorf("invalid range %q: expected low:high", s)
	}
	low, err := strconv.ParseFloat(strings.TrimSpace(lo), 64)
	if err != nil {
		return FinancialRange{}, fmt.Errorf("parsing range low %q: %w", lo, err)
	}
	high, err := strconv.ParseFloat(strings.TrimSpace(hi), 64)
	if err != nil {
		return FinancialRange{}, fmt.Errorf("parsing range high %q: %w", hi, err)
	}
	if low > high {
		return FinancialRange{}, fmt.Errorf("invalid range %q: low exceeds high", s)
	}
	return FinancialRange{Low: low, High: high}, nil
}
