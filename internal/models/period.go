package models

import "fmt"

// PeriodType is the cadence of a budget or of an income.
type PeriodType string

const (
	PeriodWeekly    PeriodType = "WEEKLY"
	PeriodMonthly   PeriodType = "MONTHLY"
	PeriodQuarterly PeriodType = "QUARTERLY"
	PeriodYearly    PeriodType = "YEARLY"
	PeriodOneTime   PeriodType = "ONE_TIME"
)

// PeriodTypes lists every supported period type.
var PeriodTypes = []PeriodType{PeriodWeekly, PeriodMonthly, PeriodQuarterly, PeriodYearly, PeriodOneTime}

// Valid reports whether p is one of the supported period types.
func (p PeriodType) Valid() bool {
	switch p {
	case PeriodWeekly, PeriodMonthly, PeriodQuarterly, PeriodYearly, PeriodOneTime:
		return true
	}
	return false
}

// IsRecurring reports whether p repeats. ONE_TIME is the only non-recurring type.
func (p PeriodType) IsRecurring() bool {
	return p.Valid() && p != PeriodOneTime
}

// ParsePeriodType validates an untrusted period string.
func ParsePeriodType(s string) (PeriodType, error) {
	p := PeriodType(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown period type %q", s)
	}
	return p, nil
}
