package factory_test

import (
	"testing"
	"time"

	"github.com/warp/billing-engine/billing"
	"github.com/warp/billing-engine/factory"
)

func TestParseSchedule(t *testing.T) {
	// GIVEN: A monthly schedule JSON
	jsonStr := `{"cadence": "monthly", "period": "previous_period", "month_day": 15}`

	// WHEN: Parsing it
	d, err := factory.ParseSchedule(jsonStr)
	if err != nil {
		t.Fatalf("Failed to parse schedule: %v", err)
	}

	// THEN: The descriptor carries the anchors
	if d.Cadence != billing.CadenceMonthly {
		t.Errorf("Expected monthly, got %s", d.Cadence)
	}
	if d.Selector != billing.SelectPrevious {
		t.Errorf("Expected previous_period, got %s", d.Selector)
	}
	if d.AnchorDay != 15 {
		t.Errorf("Expected anchor day 15, got %d", d.AnchorDay)
	}
}

func TestParseSchedule_InvalidJSON(t *testing.T) {
	if _, err := factory.ParseSchedule(`{"cadence": `); err == nil {
		t.Error("Expected error for truncated JSON")
	}
}

func TestParseSchedule_InvalidAnchor(t *testing.T) {
	_, err := factory.ParseSchedule(`{"cadence": "monthly", "month_day": 32}`)
	if err == nil {
		t.Fatal("Expected error for day 32")
	}
	if !billing.IsClientError(err) {
		t.Errorf("Expected client error, got %v", err)
	}
}

func TestFromDescriptor_RoundTrip(t *testing.T) {
	// GIVEN: Descriptors of every cadence
	raws := []billing.Raw{
		{Cadence: "daily"},
		{Cadence: "weekly", Weekday: "sunday", Selector: "next_period"},
		{Cadence: "monthly", AnchorDay: 28},
		{Cadence: "quarterly", AnchorMonth: 2},
		{Cadence: "half_yearly", AnchorMonth: 7},
		{Cadence: "yearly", AnchorMonth: 10, Selector: "previous_period"},
	}

	for _, raw := range raws {
		d, err := billing.Parse(raw)
		if err != nil {
			t.Fatalf("%s: parse failed: %v", raw.Cadence, err)
		}

		// WHEN: Converting to JSON form and back
		back, err := factory.FromDescriptor(d).Descriptor()
		if err != nil {
			t.Fatalf("%s: round trip failed: %v", raw.Cadence, err)
		}

		// THEN: The descriptor survives unchanged
		if back != d {
			t.Errorf("%s: round trip mismatch: %+v != %+v", raw.Cadence, back, d)
		}
	}
}

func TestPresets(t *testing.T) {
	d, err := factory.ParseSchedule(factory.FinancialYearAprilJSON("current_period"))
	if err != nil {
		t.Fatalf("Failed to parse preset: %v", err)
	}
	if d.Cadence != billing.CadenceYearly || d.AnchorMonth != time.April {
		t.Errorf("Expected yearly April FY, got %+v", d)
	}

	d, err = factory.ParseSchedule(factory.WeeklyJSON("friday", ""))
	if err != nil {
		t.Fatalf("Failed to parse weekly preset: %v", err)
	}
	if d.Weekday != time.Friday {
		t.Errorf("Expected Friday, got %s", d.Weekday)
	}
}
