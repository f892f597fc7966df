package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cheggaaa/pb/v3"
	"github.com/niteshrghv/indm/internal/config"
	"github.com/niteshrghv/indm/internal/engine"
	"github.com/niteshrghv/indm/internal/engine/events"
	"github.com/niteshrghv/indm/internal/history"
	"github.com/niteshrghv/indm/internal/utils"
)

const eventChannelBuffer = 256

// openCatalog opens the download history, best-effort. The download does not
// depend on it; a broken catalog only costs `indm ls` visibility.
func openCatalog() *history.Catalog {
	if err := config.EnsureDirs(); err != nil {
		utils.Debug("config dirs: %v", err)
		return nil
	}
	catalog, err := history.Open(config.HistoryPath())
	if err != nil {
		utils.Debug("history catalog unavailable: %v", err)
		return nil
	}
	return catalog
}

// runJob drives one download to its terminal state, rendering progress to the
// terminal and mirroring lifecycle transitions into the history catalog.
// Ctrl+C pauses the job (snapshot flushed) instead of killing it.
func runJob(job *engine.Job, catalog *history.Catalog, quiet bool) error {
	ch := make(chan any, eventChannelBuffer)
	job.SetEvents(ch)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		if _, ok := <-sigChan; ok {
			fmt.Fprintln(os.Stderr, "\nPausing download...")
			job.Pause()
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- job.Start(context.Background())
		close(ch)
	}()

	var bar *pb.ProgressBar
	var total int64
	for msg := range ch {
		switch m := msg.(type) {
		case events.DownloadStartedMsg:
			total = m.Total
			if catalog != nil {
				catalog.Upsert(history.Entry{
					ID:         job.ID(),
					URL:        job.URL(),
					FileName:   m.Filename,
					FinalPath:  job.FinalPath(),
					Status:     history.StatusDownloading,
					TotalBytes: m.Total,
				})
			}
			if !quiet {
				fmt.Fprintf(os.Stderr, "Downloading %s (%s)\n",
					m.Filename, utils.ConvertBytesToHumanReadable(m.Total))
				tmpl := `{{counters . }} {{bar . }} {{percent . }} {{speed . }}`
				bar = pb.ProgressBarTemplate(tmpl).Start64(m.Total)
				bar.Set(pb.Bytes, true)
			}
		case events.ProgressMsg:
			if bar != nil {
				bar.SetCurrent(m.Downloaded)
			}
		case events.DownloadCompleteMsg:
			if bar != nil {
				bar.SetCurrent(total)
				bar.Finish()
				bar = nil
			}
			fmt.Printf("Saved to %s\n", m.FinalPath)
		case events.DownloadPausedMsg:
			if bar != nil {
				bar.Finish()
				bar = nil
			}
			fmt.Printf("Paused. Resume with: indm resume %s\n", job.ID())
		case events.DownloadErrorMsg:
			if bar != nil {
				bar.Finish()
				bar = nil
			}
			fmt.Fprintf(os.Stderr, "Download failed: %v\n", m.Err)
		}
	}
	signal.Stop(sigChan)
	close(sigChan)

	err := <-errCh
	if catalog != nil {
		switch {
		case err == nil:
			catalog.SetStatus(job.ID(), history.StatusCompleted, total)
		case errors.Is(err, engine.ErrPaused):
			catalog.SetStatus(job.ID(), history.StatusPaused, job.Downloaded())
		default:
			catalog.SetStatus(job.ID(), history.StatusFailed, job.Downloaded())
		}
	}

	if errors.Is(err, engine.ErrPaused) {
		return nil
	}
	return err
}
