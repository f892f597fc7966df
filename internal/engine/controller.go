package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/niteshrghv/indm/internal/engine/events"
	"github.com/niteshrghv/indm/internal/engine/state"
	"github.com/niteshrghv/indm/internal/utils"
)

// controllerState is the controller's run-scoped bookkeeping: the pause flag
// (single writer: Pause; many readers) and the cancellation for the active
// Start call.
type controllerState struct {
	mu       sync.Mutex // serializes Start invocations
	paused   atomic.Bool
	cancelMu sync.Mutex
	cancel   context.CancelFunc
}

func (c *controllerState) setCancel(fn context.CancelFunc) {
	c.cancelMu.Lock()
	c.cancel = fn
	c.cancelMu.Unlock()
}

func (c *controllerState) cancelRun() {
	c.cancelMu.Lock()
	fn := c.cancel
	c.cancelMu.Unlock()
	if fn != nil {
		fn()
	}
}

// Start drives the job to completion, failure, or pause. It probes the origin
// unless the total is already pinned by a resume record, persists the resume
// record, opens the shared temp file, and runs one retry-supervised worker
// per non-complete segment. It returns nil on success, ErrPaused after an
// honored pause, and the underlying error otherwise.
func (j *Job) Start(ctx context.Context) error {
	j.ctl.mu.Lock()
	defer j.ctl.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	j.ctl.paused.Store(false)
	j.ctl.setCancel(cancel)
	defer j.ctl.setCancel(nil)

	if j.totalBytes == 0 {
		probe, err := probeServer(runCtx, j.client, j.url)
		if err != nil {
			if j.ctl.paused.Load() || runCtx.Err() != nil {
				j.emit(events.DownloadPausedMsg{JobID: j.jobID})
				return ErrPaused
			}
			if errors.Is(err, ErrUnknownSize) {
				j.emit(events.DownloadErrorMsg{JobID: j.jobID, Err: err})
			}
			return err
		}
		j.totalBytes = probe.TotalBytes
		if !j.nameFixed && probe.Filename != "" && probe.Filename != utils.DefaultFilename {
			j.fileName = probe.Filename
			j.updatePaths()
		}
	}

	j.emit(events.DownloadStartedMsg{JobID: j.jobID, Filename: j.fileName, Total: j.totalBytes})

	if err := os.MkdirAll(j.outputDir, 0755); err != nil {
		return j.fail(fmt.Errorf("failed to create output directory: %w", err))
	}
	if err := os.MkdirAll(j.stateDir, 0755); err != nil {
		return j.fail(fmt.Errorf("failed to create state directory: %w", err))
	}

	// The record hits disk before any network traffic so a crash mid-run
	// still leaves a resumable job behind.
	if err := j.persist(); err != nil {
		return j.fail(err)
	}

	file, err := os.OpenFile(j.tempPath, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return j.fail(fmt.Errorf("failed to open temp file: %w", err))
	}

	if j.downloaded() == 0 {
		if err := file.Truncate(j.totalBytes); err != nil {
			file.Close()
			return j.fail(fmt.Errorf("failed to preallocate temp file: %w", err))
		}
	}

	agg := newAggregator(j)
	segments := PlanSegments(j.totalBytes, j.connections)

	var pending []Segment
	for _, seg := range segments {
		if !seg.Done(loadChunk(&j.chunkProgress[seg.Index])) {
			pending = append(pending, seg)
		}
	}
	utils.Debug("job %s: %d of %d segments pending", j.jobID, len(pending), len(segments))

	var wg sync.WaitGroup
	errCh := make(chan error, len(pending))
	for _, seg := range pending {
		wg.Add(1)
		go func(seg Segment) {
			defer wg.Done()
			if err := j.superviseSegment(runCtx, file, seg, agg); err != nil {
				errCh <- err
			}
		}(seg)
	}
	wg.Wait()
	close(errCh)

	var workerErr error
	for err := range errCh {
		if workerErr == nil {
			workerErr = err
		}
	}
	agg.wait()

	// A cancelled parent context is treated like a pause: files are kept and
	// no error is reported.
	if j.ctl.paused.Load() || runCtx.Err() != nil {
		if err := j.persist(); err != nil {
			utils.Debug("pause snapshot failed: %v", err)
		}
		file.Close()
		j.emit(events.DownloadPausedMsg{JobID: j.jobID})
		return ErrPaused
	}

	if workerErr != nil {
		if err := j.persist(); err != nil {
			utils.Debug("failure snapshot failed: %v", err)
		}
		file.Close()
		j.emit(events.DownloadErrorMsg{JobID: j.jobID, Err: workerErr})
		return workerErr
	}

	if err := file.Sync(); err != nil {
		file.Close()
		return j.fail(fmt.Errorf("failed to sync temp file: %w", err))
	}
	file.Close()

	if err := os.Remove(j.finalPath); err != nil && !os.IsNotExist(err) {
		return j.fail(fmt.Errorf("failed to replace existing file: %w", err))
	}
	if err := os.Rename(j.tempPath, j.finalPath); err != nil {
		return j.fail(fmt.Errorf("failed to rename completed file: %w", err))
	}

	if err := state.Delete(j.stateDir, j.jobID); err != nil {
		utils.Debug("state cleanup failed: %v", err)
	}

	j.emit(events.DownloadCompleteMsg{JobID: j.jobID, FinalPath: j.finalPath})
	return nil
}

// Pause sets the cancellation token and requests an immediate snapshot.
// It returns before workers have unwound; the paused event fires once the
// controller has observed all of them return.
func (j *Job) Pause() {
	if !j.ctl.paused.CompareAndSwap(false, true) {
		return
	}
	if err := j.persist(); err != nil {
		utils.Debug("pause snapshot failed: %v", err)
	}
	j.ctl.cancelRun()
}

// fail emits the error to the observer and returns it. The temp file and
// state file are left in place so resume stays possible.
func (j *Job) fail(err error) error {
	j.emit(events.DownloadErrorMsg{JobID: j.jobID, Err: err})
	return err
}
