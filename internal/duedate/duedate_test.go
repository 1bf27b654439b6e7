package duedate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestCompute_Days(t *testing.T) {
	ref := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	due := Compute(strPtr(UnitDays), strPtr("7"), ref)

	assert.NotNil(t, due)
	assert.Equal(t, time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), *due)
}

func TestCompute_Weeks(t *testing.T) {
	ref := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	due := Compute(strPtr(UnitWeeks), strPtr("2"), ref)

	assert.NotNil(t, due)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), *due)
}

func TestCompute_MonthOverflowNormalizes(t *testing.T) {
	// AddDate normalizes Jan 31 + 1 month to Mar 2 in a leap year
	ref := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	due := Compute(strPtr(UnitMonths), strPtr("1"), ref)

	assert.NotNil(t, due)
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), *due)
}

func TestCompute_Deterministic(t *testing.T) {
	ref := time.Date(2024, 6, 15, 12, 30, 0, 0, time.UTC)

	first := Compute(strPtr(UnitMonths), strPtr("3"), ref)
	second := Compute(strPtr(UnitMonths), strPtr("3"), ref)

	assert.NotNil(t, first)
	assert.NotNil(t, second)
	assert.Equal(t, *first, *second)
}

func TestCompute_InvalidInputs(t *testing.T) {
	ref := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		unit      *string
		magnitude *string
	}{
		{"nil unit", nil, strPtr("7")},
		{"nil magnitude", strPtr(UnitDays), nil},
		{"empty unit", strPtr(""), strPtr("7")},
		{"empty magnitude", strPtr(UnitDays), strPtr("")},
		{"non-numeric magnitude", strPtr(UnitDays), strPtr("abc")},
		{"unknown unit", strPtr("fortnights"), strPtr("7")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, Compute(tt.unit, tt.magnitude, ref))
		})
	}
}
