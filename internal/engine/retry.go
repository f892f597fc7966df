package engine

import (
	"context"
	"math"
	"os"
	"time"

	"github.com/niteshrghv/indm/internal/utils"
)

const (
	maxSegmentAttempts = 10
	backoffFactor      = 1.5
)

// Vars so tests can shrink the backoff schedule.
var (
	backoffBase = 1000 * time.Millisecond
	backoffCap  = 10000 * time.Millisecond
)

// backoffDelay returns the sleep before attempt k+1, i.e. after the k-th
// failure: min(1000 * 1.5^k, 10000) milliseconds.
func backoffDelay(k int) time.Duration {
	d := time.Duration(float64(backoffBase) * math.Pow(backoffFactor, float64(k)))
	if d > backoffCap {
		return backoffCap
	}
	return d
}

// superviseSegment wraps downloadSegment with bounded restart-from-current-
// offset retries. The attempt budget belongs to a single Start invocation.
// Cancellation short-circuits both the sleep and the next attempt, returning
// nil; exhausted retries surface the last error to the controller.
func (j *Job) superviseSegment(ctx context.Context, file *os.File, seg Segment, agg *aggregator) error {
	var lastErr error

	for attempt := 1; attempt <= maxSegmentAttempts; attempt++ {
		if ctx.Err() != nil {
			return nil
		}

		lastErr = j.downloadSegment(ctx, file, seg, agg)
		if lastErr == nil {
			return nil
		}
		if !IsTransient(lastErr) {
			return lastErr
		}
		if attempt == maxSegmentAttempts {
			break
		}

		delay := backoffDelay(attempt)
		utils.Debug("segment %d attempt %d failed: %v (retrying in %v)",
			seg.Index, attempt, lastErr, delay)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
	}

	utils.Debug("segment %d failed after %d attempts: %v", seg.Index, maxSegmentAttempts, lastErr)
	return lastErr
}
