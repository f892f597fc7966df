package engine

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/niteshrghv/indm/internal/utils"
)

const copyBufferSize = 64 * 1024

func loadChunk(slot *int64) int64 {
	return atomic.LoadInt64(slot)
}

func addChunk(slot *int64, n int64) {
	atomic.AddInt64(slot, n)
}

// downloadSegment streams one ranged response into the shared file at the
// segment's absolute offsets. ctx is the job's cancellation token: a pause
// observed between buffers returns nil, everything already written stays
// counted. Network trouble returns a TransientError for the supervisor; a
// failed disk write is fatal and unwinds to the controller.
func (j *Job) downloadSegment(ctx context.Context, file *os.File, seg Segment, agg *aggregator) error {
	slot := &j.chunkProgress[seg.Index]
	offset := seg.ResumeOffset(loadChunk(slot))
	if offset > seg.End {
		return nil // already complete
	}

	if ctx.Err() != nil {
		return nil
	}

	// Requests ride a child context so the idle watchdog can abort a stalled
	// stream without touching the job's own token.
	reqCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	watchdog := time.AfterFunc(segmentIdleTimeout, cancel)
	defer watchdog.Stop()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, j.url, nil)
	if err != nil {
		return fmt.Errorf("failed to create range request: %w", err)
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", offset, seg.End))

	resp, err := j.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return transientf("range request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusPartialContent:
	case resp.StatusCode == http.StatusOK && offset == 0:
		// Server ignored the Range header but is sending from the start;
		// usable for a segment rooted at zero.
	default:
		return transientf("unexpected status %d for range %d-%d", resp.StatusCode, offset, seg.End)
	}

	bufPtr := j.bufPool.Get().(*[]byte)
	defer j.bufPool.Put(bufPtr)
	buf := *bufPtr

	for {
		if ctx.Err() != nil {
			return nil
		}

		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			watchdog.Reset(segmentIdleTimeout)

			// Bytes buffered by the transport but not yet written are
			// discarded on pause, never counted.
			if ctx.Err() != nil {
				return nil
			}

			if _, werr := file.WriteAt(buf[:n], offset); werr != nil {
				return fmt.Errorf("write at offset %d: %w", offset, werr)
			}
			offset += int64(n)
			addChunk(slot, int64(n))
			agg.poke()
		}

		if readErr == io.EOF {
			if offset <= seg.End {
				return transientf("truncated stream: got %d of %d bytes",
					offset-seg.Start, seg.Size())
			}
			utils.Debug("segment %d done (%d-%d)", seg.Index, seg.Start, seg.End)
			return nil
		}
		if readErr != nil {
			if ctx.Err() != nil {
				return nil
			}
			return transientf("read error on segment %d: %w", seg.Index, readErr)
		}
	}
}
