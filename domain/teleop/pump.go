package teleop

import (
	"context"
	"fmt"
	"time"
)

// KeySource returns one decoded key per call, or "" when none arrived
// within timeout
type KeySource interface {
	ReadKey(timeout time.Duration) (string, error)
}

// PumpKeys polls src until ctx ends and forwards every non-empty key to out.
// Each poll is bounded by timeout, so cancellation is noticed within one
// timeout. out is closed on return.
func PumpKeys(ctx context.Context, src KeySource, timeout time.Duration, out chan<- string) error {
	defer close(out)

	for ctx.Err() == nil {
		key, err := src.ReadKey(timeout)
		if err != nil {
			return fmt.Errorf("read key: %w", err)
		}
		if key == "" {
			continue
		}

		select {
		case out <- key:
		case <-ctx.Done():
			return nil
		}
	}
	return nil
}
