// Package numerator provides the contract for auto-generated document codes.
package numerator

import (
	"fmt"
	"time"
)

// Config describes one numbering sequence.
type Config struct {
	// Prefix added to all codes (e.g. "PUR", "SAL")
	Prefix string

	// IncludeYear adds the document year and restarts the counter every year
	IncludeYear bool

	// PadWidth is the minimum width of the numeric part (default 5)
	PadWidth int
}

// DefaultConfig returns yearly sequences padded to five digits.
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:      prefix,
		IncludeYear: true,
		PadWidth:    5,
	}
}

// Key identifies the counter a code is drawn from.
func (c Config) Key(period time.Time) string {
	if c.IncludeYear {
		return fmt.Sprintf("%s_%s", c.Prefix, period.Format("2006"))
	}
	return c.Prefix
}

// Format renders counter value n as a code.
func (c Config) Format(period time.Time, n int64) string {
	width := c.PadWidth
	if width <= 0 {
		width = 5
	}
	if c.IncludeYear {
		return fmt.Sprintf("%s-%s-%0*d", c.Prefix, period.Format("2006"), width, n)
	}
	return fmt.Sprintf("%s-%0*d", c.Prefix, width, n)
}
