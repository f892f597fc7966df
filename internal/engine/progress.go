package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/niteshrghv/indm/internal/engine/events"
	"github.com/niteshrghv/indm/internal/engine/state"
	"github.com/niteshrghv/indm/internal/utils"
)

const (
	progressInterval = 1000 * time.Millisecond
	snapshotInterval = 5000 * time.Millisecond
)

// aggregator is a throttled reducer over the per-segment counters. Workers
// poke it after every buffer; it emits at most one progress event per second
// and requests a state snapshot at most once per five seconds. Concurrent
// pokes race on a CAS over the last-emission stamp; losers simply drop out,
// the next buffer on any worker retries.
type aggregator struct {
	job *Job

	lastEmit atomic.Int64 // unix milliseconds
	lastSnap atomic.Int64

	mu        sync.Mutex // guards the speed sample below
	lastBytes int64
	lastTime  time.Time

	snapWG sync.WaitGroup // in-flight async snapshots
}

func newAggregator(j *Job) *aggregator {
	a := &aggregator{job: j}
	now := time.Now()
	a.lastEmit.Store(now.UnixMilli())
	a.lastSnap.Store(now.UnixMilli())
	a.mu.Lock()
	a.lastBytes = j.downloaded()
	a.lastTime = now
	a.mu.Unlock()
	return a
}

// poke is the throttled progress probe invoked from every worker after every
// write.
func (a *aggregator) poke() {
	now := time.Now()
	ms := now.UnixMilli()

	if last := a.lastEmit.Load(); ms-last >= progressInterval.Milliseconds() &&
		a.lastEmit.CompareAndSwap(last, ms) {
		a.emit(now)
	}

	if last := a.lastSnap.Load(); ms-last >= snapshotInterval.Milliseconds() &&
		a.lastSnap.CompareAndSwap(last, ms) {
		// Snapshot writes must never block the network pipeline.
		a.snapWG.Add(1)
		go func() {
			defer a.snapWG.Done()
			a.snapshot()
		}()
	}
}

// wait blocks until in-flight snapshot writes have settled, so a finishing
// job cannot race a stale snapshot against its own state-file cleanup.
func (a *aggregator) wait() {
	a.snapWG.Wait()
}

func (a *aggregator) emit(now time.Time) {
	total := a.job.downloaded()

	a.mu.Lock()
	elapsed := now.Sub(a.lastTime).Seconds()
	var speed float64
	if elapsed > 0 {
		speed = float64(total-a.lastBytes) / elapsed
	}
	a.lastBytes = total
	a.lastTime = now
	a.mu.Unlock()

	a.job.emit(events.ProgressMsg{
		JobID:      a.job.jobID,
		Downloaded: total,
		Total:      a.job.totalBytes,
		Speed:      speed,
	})
}

// snapshot persists the resume record, best-effort.
func (a *aggregator) snapshot() {
	if err := a.job.persist(); err != nil {
		utils.Debug("snapshot failed: %v", err)
	}
}

// downloaded sums the per-segment counters into the instantaneous total.
func (j *Job) downloaded() int64 {
	var total int64
	for i := range j.chunkProgress {
		total += loadChunk(&j.chunkProgress[i])
	}
	return total
}

// persist writes the current resume record to the state file.
func (j *Job) persist() error {
	return state.Save(j.record())
}

// emit publishes an event without ever blocking the download pipeline.
func (j *Job) emit(msg any) {
	if j.events == nil {
		return
	}
	select {
	case j.events <- msg:
	default:
		utils.Debug("observer channel full, dropping %T", msg)
	}
}
