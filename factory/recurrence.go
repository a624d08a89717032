/*
Package factory provides JSON to Go recurrence conversion.

PURPOSE:
  Converts JSON schedule definitions into billing.Descriptor values.
  Front-end form payloads and stored schedule configs stay as JSON;
  the factory is the single place they become validated descriptors,
  so no call site re-derives recurrence rules on its own.

JSON SCHEMA:
  {
    "cadence": "monthly",
    "period": "current_period",
    "month_day": 15
  }

  Field use by cadence:
    weekly       "week_start": "monday".."sunday"
    monthly      "month_day": 1-31
    quarterly    "start_month": 1-12
    half_yearly  "start_month": 1, 4 or 7
    yearly       "start_month": 1, 4, 7 or 10

USAGE:
  descriptor, err := factory.ParseSchedule(jsonString)

  // Or from a preset:
  jsonStr := factory.MonthlyOnDayJSON(15, "current_period")

SEE ALSO:
  - billing/recurrence.go: Descriptor validation and defaults
*/
package factory

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/warp/billing-engine/billing"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ScheduleJSON is the JSON representation of a recurrence schedule.
type ScheduleJSON struct {
	Cadence    string `json:"cadence"`
	Period     string `json:"period,omitempty"` // previous_period|current_period|next_period
	WeekStart  string `json:"week_start,omitempty"`
	MonthDay   int    `json:"month_day,omitempty"`
	StartMonth int    `json:"start_month,omitempty"`
}

// Raw maps the JSON fields onto the unvalidated form representation.
func (s ScheduleJSON) Raw() billing.Raw {
	return billing.Raw{
		Cadence:     s.Cadence,
		Selector:    s.Period,
		Weekday:     s.WeekStart,
		AnchorDay:   s.MonthDay,
		AnchorMonth: s.StartMonth,
	}
}

// Descriptor converts the JSON fields into a validated descriptor.
func (s ScheduleJSON) Descriptor() (billing.Descriptor, error) {
	return billing.Parse(s.Raw())
}

// ParseSchedule converts a JSON schedule string into a descriptor.
func ParseSchedule(jsonStr string) (billing.Descriptor, error) {
	var s ScheduleJSON
	if err := json.Unmarshal([]byte(jsonStr), &s); err != nil {
		return billing.Descriptor{}, fmt.Errorf("invalid schedule JSON: %w", err)
	}
	return s.Descriptor()
}

// FromDescriptor converts a descriptor back to its JSON representation,
// for storage and API responses.
func FromDescriptor(d billing.Descriptor) ScheduleJSON {
	s := ScheduleJSON{
		Cadence: string(d.Cadence),
		Period:  string(d.Selector),
	}
	switch d.Cadence {
	case billing.CadenceWeekly:
		s.WeekStart = weekdayName(d.Weekday)
	case billing.CadenceMonthly:
		s.MonthDay = d.AnchorDay
	case billing.CadenceQuarterly, billing.CadenceHalfYearly, billing.CadenceYearly:
		s.StartMonth = int(d.AnchorMonth)
	}
	return s
}

// =============================================================================
// PRESETS - Common schedules as ready-made JSON
// =============================================================================

// MonthlyOnDayJSON is a monthly schedule starting on the given day.
func MonthlyOnDayJSON(day int, period string) string {
	return marshal(ScheduleJSON{Cadence: "monthly", Period: period, MonthDay: day})
}

// WeeklyJSON is a weekly schedule starting on the given weekday name.
func WeeklyJSON(weekStart, period string) string {
	return marshal(ScheduleJSON{Cadence: "weekly", Period: period, WeekStart: weekStart})
}

// CalendarQuartersJSON is a quarterly schedule on calendar quarters
// (Jan-Mar, Apr-Jun, Jul-Sep, Oct-Dec).
func CalendarQuartersJSON(period string) string {
	return marshal(ScheduleJSON{Cadence: "quarterly", Period: period, StartMonth: 1})
}

// FinancialYearAprilJSON is a yearly schedule on the April-March
// financial year.
func FinancialYearAprilJSON(period string) string {
	return marshal(ScheduleJSON{Cadence: "yearly", Period: period, StartMonth: 4})
}

func marshal(s ScheduleJSON) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func weekdayName(w time.Weekday) string {
	return strings.ToLower(w.String())
}
