package engine

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/niteshrghv/indm/internal/utils"
)

// probeResult carries the metadata the controller needs before planning.
type probeResult struct {
	TotalBytes int64
	Filename   string
}

// probeServer issues a HEAD request to learn the total size and the
// server-suggested file name. The probe is skipped entirely on the resume
// path, where the record already pins the total.
func probeServer(ctx context.Context, client *http.Client, rawurl string) (*probeResult, error) {
	utils.Debug("probing %s", rawurl)

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodHead, rawurl, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create probe request: %w", err)
	}
	req.Header.Set("User-Agent", ua)

	resp, err := client.Do(req)
	if err != nil {
		return nil, transientf("probe request failed: %w", err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	utils.Debug("probe response: status=%d length=%d", resp.StatusCode, resp.ContentLength)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, transientf("probe returned status %d", resp.StatusCode)
	}

	if resp.ContentLength < 0 {
		return nil, ErrUnknownSize
	}

	result := &probeResult{
		TotalBytes: resp.ContentLength,
		Filename:   utils.DeriveFilename(rawurl, resp.Header),
	}
	utils.Debug("probe complete: filename=%s size=%d", result.Filename, result.TotalBytes)
	return result, nil
}
