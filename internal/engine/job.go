// Package engine implements a segmented HTTP download engine: one URL is
// fetched over multiple concurrent ranged requests, written into disjoint
// regions of a shared sparse temp file, and checkpointed to a resume record
// so an interrupted transfer restarts byte-accurately in a later process.
package engine

import (
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/niteshrghv/indm/internal/engine/state"
	"github.com/niteshrghv/indm/internal/utils"
)

const (
	// DefaultConnections is the planner fanout and socket pool cap when the
	// caller does not choose one.
	DefaultConnections = 8

	// PartSuffix is appended to the final path to form the temp file. The
	// temp file lives next to the destination so the finishing rename stays
	// on one volume.
	PartSuffix = ".part"
)

// Job is one instance of fetching one URL to one output file. A Job is built
// by New or FromRecord, driven by Start, and interrupted by Pause. The zero
// value is not usable.
type Job struct {
	url         string
	outputDir   string
	stateDir    string
	jobID       string
	connections int
	totalBytes  int64

	fileName  string
	nameFixed bool // caller supplied the name; the probe must not refine it

	finalPath string
	tempPath  string
	statePath string

	// chunkProgress[i] counts bytes already written for segment i. Each slot
	// has a single writer (its worker); readers go through atomics.
	chunkProgress []int64

	events chan<- any
	client *http.Client

	bufPool sync.Pool

	ctl controllerState
}

// Option configures a Job at construction.
type Option func(*Job)

// WithConnections sets the planner fanout N (and the socket pool cap).
func WithConnections(n int) Option {
	return func(j *Job) {
		if n >= 1 {
			j.connections = n
		}
	}
}

// WithUUID supplies an external job id, used to name the state file and as
// the correlation id in all emitted events.
func WithUUID(id string) Option {
	return func(j *Job) {
		if id != "" {
			j.jobID = id
		}
	}
}

// WithStateDir overrides where the resume record is written. It defaults to
// the output directory.
func WithStateDir(dir string) Option {
	return func(j *Job) {
		if dir != "" {
			j.stateDir = dir
		}
	}
}

// WithFileName supplies a preferred file name. It is sanitized and takes
// priority over both the server-suggested and the URL-derived name.
func WithFileName(name string) Option {
	return func(j *Job) {
		if name != "" {
			j.fileName = utils.SanitizeFilename(name)
			j.nameFixed = true
		}
	}
}

// WithTotalBytes pins the total size, bypassing the probe. Used on resume.
func WithTotalBytes(n int64) Option {
	return func(j *Job) {
		if n > 0 {
			j.totalBytes = n
		}
	}
}

// WithChunkProgress seeds the per-segment progress vector from a resume
// record. Its length must match the connection count; New enforces that.
func WithChunkProgress(progress []int64) Option {
	return func(j *Job) {
		j.chunkProgress = append([]int64(nil), progress...)
	}
}

// WithEvents sets the observer channel. Sends never block the download
// pipeline; samples that find the channel full are dropped.
func WithEvents(ch chan<- any) Option {
	return func(j *Job) {
		j.events = ch
	}
}

// New builds a Job for rawurl landing in outputDir.
func New(rawurl, outputDir string, opts ...Option) (*Job, error) {
	parsed, err := url.Parse(rawurl)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid url: unsupported scheme %q", parsed.Scheme)
	}
	if outputDir == "" {
		return nil, fmt.Errorf("output directory is required")
	}

	j := &Job{
		url:         rawurl,
		outputDir:   outputDir,
		connections: DefaultConnections,
	}
	for _, opt := range opts {
		opt(j)
	}

	if j.jobID == "" {
		j.jobID = generateJobID()
	}
	if j.stateDir == "" {
		j.stateDir = j.outputDir
	}
	if j.fileName == "" {
		j.fileName = utils.DeriveFilename(rawurl, nil)
	}

	if j.chunkProgress == nil {
		j.chunkProgress = make([]int64, j.connections)
	} else if len(j.chunkProgress) != j.connections {
		return nil, fmt.Errorf("%w: progress vector length %d != connections %d",
			state.ErrCorrupt, len(j.chunkProgress), j.connections)
	}

	j.client = newClient(j.connections)
	j.bufPool = sync.Pool{
		New: func() any {
			buf := make([]byte, copyBufferSize)
			return &buf
		},
	}
	j.updatePaths()
	return j, nil
}

// FromRecord reconstructs a Job from a previously persisted resume record.
// The controller will trust the record's total and skip the probe.
func FromRecord(rec *state.Record, opts ...Option) (*Job, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	base := []Option{
		WithUUID(rec.UUID),
		WithConnections(rec.NumConnections),
		WithStateDir(rec.StateDir),
		WithFileName(rec.FileName),
		WithTotalBytes(rec.TotalBytes),
		WithChunkProgress(rec.DownloadedBytesPerChunk),
	}
	return New(rec.URL, rec.OutputDir, append(base, opts...)...)
}

// updatePaths recomputes the derived paths. It must run after every file-name
// refinement and before any handle is opened.
func (j *Job) updatePaths() {
	j.finalPath = filepath.Join(j.outputDir, j.fileName)
	j.tempPath = j.finalPath + PartSuffix
	j.statePath = state.PathFor(j.stateDir, j.jobID)
}

// SetEvents replaces the observer channel. It must not be called while Start
// is running.
func (j *Job) SetEvents(ch chan<- any) { j.events = ch }

// ID returns the job's correlation id.
func (j *Job) ID() string { return j.jobID }

// URL returns the source URL.
func (j *Job) URL() string { return j.url }

// Downloaded returns the bytes written so far across all segments.
func (j *Job) Downloaded() int64 { return j.downloaded() }

// FileName returns the current sanitized file name.
func (j *Job) FileName() string { return j.fileName }

// FinalPath returns where the completed file will land.
func (j *Job) FinalPath() string { return j.finalPath }

// StatePath returns where the resume record is kept.
func (j *Job) StatePath() string { return j.statePath }

// TotalBytes returns the total size, or 0 before a successful probe.
func (j *Job) TotalBytes() int64 { return j.totalBytes }

// record snapshots the job into a resume record, loading each progress slot
// atomically.
func (j *Job) record() *state.Record {
	progress := make([]int64, len(j.chunkProgress))
	for i := range j.chunkProgress {
		progress[i] = loadChunk(&j.chunkProgress[i])
	}
	return &state.Record{
		URL:                     j.url,
		OutputDir:               j.outputDir,
		FileName:                j.fileName,
		TotalBytes:              j.totalBytes,
		DownloadedBytesPerChunk: progress,
		NumConnections:          j.connections,
		UUID:                    j.jobID,
		StateDir:                j.stateDir,
	}
}

// generateJobID derives an id from a monotonically increasing time source.
func generateJobID() string {
	return strconv.FormatInt(time.Now().UnixNano(), 10)
}
