/*
period.go - The canonical period resolver

PURPOSE:
  Given a validated recurrence Descriptor and a reference date, resolve
  the concrete start/end dates of the period the descriptor targets.
  Periods of the same descriptor partition time into contiguous,
  non-overlapping intervals: every reference date inside an interval
  resolves to that same interval.

ALGORITHM PER CADENCE:
  daily        [ref, ref]; previous/next shift +-1 day
  weekly       start = most recent anchor weekday on or before ref,
               end = start + 6 days; shift +-7 days
  monthly      start = most recent anchor day-of-month on or before ref
               (clamped to the month's last day when the anchor exceeds
               it), end = day before the next anchored start; shift by
               calendar months, not a fixed day count
  quarterly    the 3-month block beginning at the anchor month that
               contains ref; shift +-3 months
  half_yearly  the 6-month block; shift +-6 months
  yearly       the financial year beginning at the anchor month that
               contains ref; shift +-12 months
*/
package billing

import "time"

// =============================================================================
// PERIOD - A resolved calendar interval
// =============================================================================

// Period is a resolved [Start, End] calendar interval, Start <= End.
type Period struct {
	Start Date
	End   Date
}

// Contains returns true if the date is within the period [Start, End].
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Days returns the number of calendar days the period covers.
func (p Period) Days() int { return DaysBetween(p.Start, p.End) + 1 }

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// =============================================================================
// RESOLVER
// =============================================================================

// Resolve computes the concrete period the descriptor targets relative
// to the reference date. Descriptors that fail validation are rejected
// with an InvalidDescriptorError; Resolve must never be reached by an
// unvalidated descriptor.
func Resolve(d Descriptor, ref Date) (Period, error) {
	if err := d.Validate(); err != nil {
		return Period{}, &InvalidDescriptorError{Cause: err}
	}

	var current Period
	switch d.Cadence {
	case CadenceDaily:
		current = Period{Start: ref, End: ref}
	case CadenceWeekly:
		current = weeklyPeriod(ref, d.Weekday)
	case CadenceMonthly:
		current = monthlyPeriod(ref, d.AnchorDay)
	case CadenceQuarterly:
		current = monthBlockPeriod(ref, d.AnchorMonth, 3)
	case CadenceHalfYearly:
		current = monthBlockPeriod(ref, d.AnchorMonth, 6)
	case CadenceYearly:
		current = monthBlockPeriod(ref, d.AnchorMonth, 12)
	}

	switch d.Selector {
	case SelectPrevious:
		return shiftPeriod(d, current, -1), nil
	case SelectNext:
		return shiftPeriod(d, current, +1), nil
	default:
		return current, nil
	}
}

func weeklyPeriod(ref Date, startDay time.Weekday) Period {
	back := (int(ref.Weekday()) - int(startDay) + 7) % 7
	start := ref.AddDays(-back)
	return Period{Start: start, End: start.AddDays(6)}
}

func monthlyPeriod(ref Date, anchorDay int) Period {
	start := anchoredDay(ref.Year(), ref.Month(), anchorDay)
	if start.After(ref) {
		y, m := monthOffset(ref.Year(), ref.Month(), -1)
		start = anchoredDay(y, m, anchorDay)
	}
	ny, nm := monthOffset(start.Year(), start.Month(), 1)
	return Period{Start: start, End: anchoredDay(ny, nm, anchorDay).AddDays(-1)}
}

func monthBlockPeriod(ref Date, anchorMonth time.Month, months int) Period {
	start := NewDate(ref.Year(), anchorMonth, 1)
	for start.After(ref) {
		start = start.AddMonths(-months)
	}
	for next := start.AddMonths(months); !next.After(ref); next = start.AddMonths(months) {
		start = next
	}
	return Period{Start: start, End: start.AddMonths(months).AddDays(-1)}
}

func shiftPeriod(d Descriptor, p Period, direction int) Period {
	switch d.Cadence {
	case CadenceDaily:
		return Period{Start: p.Start.AddDays(direction), End: p.End.AddDays(direction)}

	case CadenceWeekly:
		return Period{Start: p.Start.AddDays(7 * direction), End: p.End.AddDays(7 * direction)}

	case CadenceMonthly:
		y, m := monthOffset(p.Start.Year(), p.Start.Month(), direction)
		start := anchoredDay(y, m, d.AnchorDay)
		ny, nm := monthOffset(y, m, 1)
		return Period{Start: start, End: anchoredDay(ny, nm, d.AnchorDay).AddDays(-1)}

	default:
		months := blockMonths(d.Cadence)
		start := p.Start.AddMonths(months * direction)
		return Period{Start: start, End: start.AddMonths(months).AddDays(-1)}
	}
}

func blockMonths(c Cadence) int {
	switch c {
	case CadenceQuarterly:
		return 3
	case CadenceHalfYearly:
		return 6
	default:
		return 12
	}
}

// anchoredDay is the anchor day-of-month, clamped to the month's last
// day (anchor 31 in February starts on Feb 28/29).
func anchoredDay(year int, month time.Month, day int) Date {
	if last := DaysInMonth(year, month); day > last {
		day = last
	}
	return NewDate(year, month, day)
}

func monthOffset(year int, month time.Month, delta int) (int, time.Month) {
	t := time.Date(year, month+time.Month(delta), 1, 0, 0, 0, 0, time.UTC)
	return t.Year(), t.Month()
}
