// Package duedate computes instance due dates from a template's deadline
// specification.
package duedate

import (
	"strconv"
	"time"
)

// Deadline units accepted by Compute.
const (
	UnitDays   = "days"
	UnitWeeks  = "weeks"
	UnitMonths = "months"
)

// Compute adds magnitude units to the reference time and returns the result.
// It returns nil when unit or magnitude is absent, when magnitude does not
// parse as an integer, or when the unit is unknown.
//
// Month arithmetic uses time.AddDate, which normalizes overflow rather than
// clamping: 2024-01-31 plus one month is 2024-03-02. Deterministic for a
// given reference.
func Compute(unit, magnitude *string, reference time.Time) *time.Time {
	if unit == nil || magnitude == nil || *unit == "" || *magnitude == "" {
		return nil
	}

	n, err := strconv.Atoi(*magnitude)
	if err != nil {
		return nil
	}

	var due time.Time
	switch *unit {
	case UnitDays:
		due = reference.AddDate(0, 0, n)
	case UnitWeeks:
		due = reference.AddDate(0, 0, n*7)
	case UnitMonths:
		due = reference.AddDate(0, n, 0)
	default:
		return nil
	}

	return &due
}
