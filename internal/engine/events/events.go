// Package events defines the messages the download engine publishes to its
// observer. Events are plain structs sent on a channel of any; consumers
// switch on the concrete type.
package events

// DownloadStartedMsg is sent once per Start call, after the probe (or the
// resume record) has established the total size and file name. A Start call
// whose probe fails returns without sending it.
type DownloadStartedMsg struct {
	JobID    string
	Filename string
	Total    int64
}

// ProgressMsg is a throttled progress sample, at most one per second.
type ProgressMsg struct {
	JobID      string
	Downloaded int64
	Total      int64
	Speed      float64 // bytes per second
}

// DownloadPausedMsg is sent exactly once after a pause request has been fully
// honored, i.e. all segment workers have returned.
type DownloadPausedMsg struct {
	JobID string
}

// DownloadCompleteMsg is sent after the temp file has been renamed into place.
type DownloadCompleteMsg struct {
	JobID     string
	FinalPath string
}

// DownloadErrorMsg is sent when the job fails for any reason other than a
// caller-initiated pause. Of the probe failures, only a missing file size
// sends it; any other probe failure is returned by Start without an event.
type DownloadErrorMsg struct {
	JobID string
	Err   error
}
