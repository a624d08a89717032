/*
sequence.go - Formatted identifier sequences

PURPOSE:
  Mints human-readable identifiers (invoice numbers, employee IDs) from
  a monotonically increasing counter: prefix + optionally zero-padded
  number + suffix. Formatting is pure; persistence and the atomicity of
  read-increment-write belong to the SequenceStore (store.go).

PADDING CONTRACT:
  Padding never truncates. When the number's digits exceed the width,
  the full number is emitted: width 6 formats 1 as "000001" and
  1000000 as "1000000".
*/
package billing

import (
	"strconv"
	"strings"
)

// Width bounds for the padded portion of a formatted identifier.
const (
	MinSequenceWidth = 1
	MaxSequenceWidth = 12
)

// SequenceConfig describes how one logical sequence formats identifiers
// and which number it issues next.
type SequenceConfig struct {
	Prefix     string
	Suffix     string
	Width      int
	ZeroPad    bool
	NextNumber int64
}

// Validate checks the width and next-number bounds.
func (c SequenceConfig) Validate() error {
	if c.Width < MinSequenceWidth || c.Width > MaxSequenceWidth {
		return &ValidationError{
			Field: "width", Value: c.Width,
			Reason: "width must be 1-12", Err: ErrInvalidSequenceConfig,
		}
	}
	if c.NextNumber < 1 {
		return &ValidationError{
			Field: "next_number", Value: c.NextNumber,
			Reason: "next number must be >= 1", Err: ErrInvalidSequenceConfig,
		}
	}
	return nil
}

// FormatID formats a number using the config's prefix, suffix, width and
// padding. Padding never truncates: numbers wider than Width are emitted
// in full.
func FormatID(cfg SequenceConfig, number int64) string {
	body := strconv.FormatInt(number, 10)
	if cfg.ZeroPad && len(body) < cfg.Width {
		body = strings.Repeat("0", cfg.Width-len(body)) + body
	}
	return cfg.Prefix + body + cfg.Suffix
}

// NextID formats an identifier from the config's NextNumber and returns
// the config advanced by one. The generator performs no I/O; persisting
// the updated config (atomically with respect to concurrent issuers) is
// the SequenceStore's responsibility.
func NextID(cfg SequenceConfig) (string, SequenceConfig, error) {
	if err := cfg.Validate(); err != nil {
		return "", cfg, err
	}
	id := FormatID(cfg, cfg.NextNumber)
	cfg.NextNumber++
	return id, cfg, nil
}
