/*
recurrence.go - Recurrence descriptor and validation

PURPOSE:
  A Descriptor is the single canonical description of how often a unit of
  work recurs and which calendar period it targets. Form payloads that
  previously re-derived recurrence rules at every call site funnel
  through Parse, so there is exactly one set of cadences, anchors and
  defaults in the system.

ANCHOR SEMANTICS BY CADENCE:
  daily        none
  weekly       start-of-week day (Monday..Sunday)
  monthly      day-of-month 1-31 the period starts on
  quarterly    starting month (1-12) of the first quarter
  half_yearly  starting month (1, 4 or 7) of the first half
  yearly       financial-year starting month (1, 4, 7 or 10)

DEFAULTS (applied only when the anchor is OMITTED, never when invalid):
  weekly -> Monday, monthly -> 1, quarterly -> January,
  half_yearly -> January, yearly -> April

SEE ALSO:
  - period.go: Resolves a descriptor + reference date into a concrete period
*/
package billing

import (
	"strings"
	"time"
)

// =============================================================================
// CADENCE AND SELECTOR ENUMS
// =============================================================================

// Cadence is the recurrence frequency category.
type Cadence string

const (
	CadenceDaily      Cadence = "daily"
	CadenceWeekly     Cadence = "weekly"
	CadenceMonthly    Cadence = "monthly"
	CadenceQuarterly  Cadence = "quarterly"
	CadenceHalfYearly Cadence = "half_yearly"
	CadenceYearly     Cadence = "yearly"
)

// PeriodSelector picks which period instance relative to the reference
// date should be resolved.
type PeriodSelector string

const (
	SelectPrevious PeriodSelector = "previous_period"
	SelectCurrent  PeriodSelector = "current_period"
	SelectNext     PeriodSelector = "next_period"
)

// =============================================================================
// DESCRIPTOR - Validated recurrence value object
// =============================================================================

// Descriptor describes how often work recurs and which period it targets.
// Build one with Parse, or set fields directly and call Validate before
// handing it to Resolve.
type Descriptor struct {
	Cadence  Cadence
	Selector PeriodSelector

	// Weekday anchors weekly periods (the start-of-week day).
	Weekday time.Weekday

	// AnchorDay is the day-of-month (1-31) a monthly period starts on.
	AnchorDay int

	// AnchorMonth is the starting month for quarterly, half-yearly and
	// yearly cadences.
	AnchorMonth time.Month
}

// Raw carries unvalidated recurrence form fields. Zero values mean
// "omitted" and receive the documented defaults.
type Raw struct {
	Cadence     string
	Selector    string
	Weekday     string // "monday".."sunday", empty = default
	AnchorDay   int    // 0 = default
	AnchorMonth int    // 0 = default
}

// ParseSelector converts a raw selector string. Empty means current_period.
func ParseSelector(s string) (PeriodSelector, error) {
	sel := PeriodSelector(strings.ToLower(strings.TrimSpace(s)))
	if sel == "" {
		return SelectCurrent, nil
	}
	switch sel {
	case SelectPrevious, SelectCurrent, SelectNext:
		return sel, nil
	}
	return "", &ValidationError{
		Field: "selector", Value: s,
		Reason: "not one of previous_period/current_period/next_period",
		Err:    ErrInvalidSelector,
	}
}

var weekdayNames = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

// Parse converts raw form fields into a validated Descriptor, applying
// defaults for omitted anchors. An omitted selector means current_period.
func Parse(raw Raw) (Descriptor, error) {
	d := Descriptor{
		Cadence:  Cadence(strings.ToLower(strings.TrimSpace(raw.Cadence))),
		Selector: PeriodSelector(strings.ToLower(strings.TrimSpace(raw.Selector))),
	}
	if raw.Selector == "" {
		d.Selector = SelectCurrent
	}

	switch d.Cadence {
	case CadenceDaily:
		// No anchor.

	case CadenceWeekly:
		name := strings.ToLower(strings.TrimSpace(raw.Weekday))
		if name == "" {
			d.Weekday = time.Monday
		} else {
			wd, ok := weekdayNames[name]
			if !ok {
				return Descriptor{}, &ValidationError{
					Field: "weekday", Value: raw.Weekday,
					Reason: "not a weekday name", Err: ErrInvalidAnchor,
				}
			}
			d.Weekday = wd
		}

	case CadenceMonthly:
		d.AnchorDay = raw.AnchorDay
		if raw.AnchorDay == 0 {
			d.AnchorDay = 1
		}

	case CadenceQuarterly, CadenceHalfYearly:
		d.AnchorMonth = time.Month(raw.AnchorMonth)
		if raw.AnchorMonth == 0 {
			d.AnchorMonth = time.January
		}

	case CadenceYearly:
		d.AnchorMonth = time.Month(raw.AnchorMonth)
		if raw.AnchorMonth == 0 {
			d.AnchorMonth = time.April
		}

	default:
		return Descriptor{}, &ValidationError{
			Field: "cadence", Value: raw.Cadence,
			Reason: "not one of daily/weekly/monthly/quarterly/half_yearly/yearly",
			Err:    ErrInvalidCadence,
		}
	}

	if err := d.Validate(); err != nil {
		return Descriptor{}, err
	}
	return d, nil
}

// Validate checks that the cadence, selector and anchor are within their
// documented domains.
func (d Descriptor) Validate() error {
	switch d.Selector {
	case SelectPrevious, SelectCurrent, SelectNext:
	default:
		return &ValidationError{
			Field: "selector", Value: string(d.Selector),
			Reason: "not one of previous_period/current_period/next_period",
			Err:    ErrInvalidSelector,
		}
	}

	switch d.Cadence {
	case CadenceDaily:
		return nil

	case CadenceWeekly:
		if d.Weekday < time.Sunday || d.Weekday > time.Saturday {
			return &ValidationError{
				Field: "weekday", Value: int(d.Weekday),
				Reason: "not a weekday", Err: ErrInvalidAnchor,
			}
		}
		return nil

	case CadenceMonthly:
		if d.AnchorDay < 1 || d.AnchorDay > 31 {
			return &ValidationError{
				Field: "anchor_day", Value: d.AnchorDay,
				Reason: "day-of-month must be 1-31", Err: ErrInvalidAnchor,
			}
		}
		return nil

	case CadenceQuarterly:
		if d.AnchorMonth < time.January || d.AnchorMonth > time.December {
			return &ValidationError{
				Field: "anchor_month", Value: int(d.AnchorMonth),
				Reason: "quarter start month must be 1-12", Err: ErrInvalidAnchor,
			}
		}
		return nil

	case CadenceHalfYearly:
		switch d.AnchorMonth {
		case time.January, time.April, time.July:
			return nil
		}
		return &ValidationError{
			Field: "anchor_month", Value: int(d.AnchorMonth),
			Reason: "half-year start month must be 1, 4 or 7", Err: ErrInvalidAnchor,
		}

	case CadenceYearly:
		switch d.AnchorMonth {
		case time.January, time.April, time.July, time.October:
			return nil
		}
		return &ValidationError{
			Field: "anchor_month", Value: int(d.AnchorMonth),
			Reason: "financial year start month must be 1, 4, 7 or 10", Err: ErrInvalidAnchor,
		}

	default:
		return &ValidationError{
			Field: "cadence", Value: string(d.Cadence),
			Reason: "not one of daily/weekly/monthly/quarterly/half_yearly/yearly",
			Err:    ErrInvalidCadence,
		}
	}
}
