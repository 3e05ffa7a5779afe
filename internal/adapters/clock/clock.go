package clock

import (
	"time"

	"github.com/trebuchet-org/tally-cli/internal/config"
	"github.com/trebuchet-org/tally-cli/internal/usecase"
)

// ClockAdapter returns wall clock time unless the configuration pins it
type ClockAdapter struct {
	fixed time.Time
}

// NewClockAdapter creates a new clock adapter
func NewClockAdapter(cfg *config.RuntimeConfig) *ClockAdapter {
	return &ClockAdapter{fixed: cfg.Now}
}

// Now returns the current time in UTC
func (c *ClockAdapter) Now() time.Time {
	if !c.fixed.IsZero() {
		return c.fixed.UTC()
	}
	return time.Now().UTC()
}

// Ensure the adapter implements the interface
var _ usecase.Clock = (*ClockAdapter)(nil)
