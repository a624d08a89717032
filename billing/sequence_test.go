package billing_test

import (
	"errors"
	"testing"

	"github.com/warp/billing-engine/billing"
)

func TestFormatID_ZeroPadded(t *testing.T) {
	cfg := billing.SequenceConfig{Prefix: "INV", Width: 6, ZeroPad: true, NextNumber: 1}

	if got := billing.FormatID(cfg, 1); got != "INV000001" {
		t.Errorf("FormatID(1) = %q, want INV000001", got)
	}
	if got := billing.FormatID(cfg, 42); got != "INV000042" {
		t.Errorf("FormatID(42) = %q, want INV000042", got)
	}
}

func TestFormatID_PaddingNeverTruncates(t *testing.T) {
	// Numbers wider than the configured width are emitted in full.
	cfg := billing.SequenceConfig{Prefix: "INV", Width: 6, ZeroPad: true, NextNumber: 1}
	if got := billing.FormatID(cfg, 1000000); got != "INV1000000" {
		t.Errorf("FormatID(1000000) = %q, want INV1000000", got)
	}
}

func TestFormatID_NoPadding(t *testing.T) {
	cfg := billing.SequenceConfig{Prefix: "EMP-", Suffix: "/24", Width: 4, ZeroPad: false, NextNumber: 1}
	if got := billing.FormatID(cfg, 7); got != "EMP-7/24" {
		t.Errorf("FormatID(7) = %q, want EMP-7/24", got)
	}
}

func TestNextID_AdvancesConfig(t *testing.T) {
	cfg := billing.SequenceConfig{Prefix: "INV", Width: 6, ZeroPad: true, NextNumber: 99}

	id, updated, err := billing.NextID(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "INV000099" {
		t.Errorf("id = %q, want INV000099", id)
	}
	if updated.NextNumber != 100 {
		t.Errorf("next number = %d, want 100", updated.NextNumber)
	}
	// The input config is a value; the caller's copy is untouched.
	if cfg.NextNumber != 99 {
		t.Errorf("input config mutated: %d", cfg.NextNumber)
	}
}

func TestSequenceConfig_Validate(t *testing.T) {
	cases := []struct {
		name string
		cfg  billing.SequenceConfig
		ok   bool
	}{
		{"valid", billing.SequenceConfig{Width: 6, NextNumber: 1}, true},
		{"width too small", billing.SequenceConfig{Width: 0, NextNumber: 1}, false},
		{"width too large", billing.SequenceConfig{Width: 13, NextNumber: 1}, false},
		{"zero next number", billing.SequenceConfig{Width: 6, NextNumber: 0}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tc.ok && !errors.Is(err, billing.ErrInvalidSequenceConfig) {
				t.Errorf("expected ErrInvalidSequenceConfig, got %v", err)
			}
		})
	}
}
