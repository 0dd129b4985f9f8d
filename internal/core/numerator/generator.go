package numerator

import (
	"context"
	"time"
)

// Generator hands out the next code of a sequence.
// Codes are unique per Config.Key; gaps are allowed.
type Generator interface {
	Next(ctx context.Context, cfg Config, period time.Time) (string, error)
}
