package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"
)

// JobStatus represents the state of an organization job.
type JobStatus string

const (
	StatusQueued      JobStatus = "queued"
	StatusParsing     JobStatus = "parsing"
	StatusClassifying JobStatus = "classifying"
	StatusWriting     JobStatus = "writing"
	StatusCompleted   JobStatus = "completed"
	StatusPartial     JobStatus = "partial"
	StatusFailed      JobStatus = "failed"
)

// Job tracks the state of a single document organization run.
type Job struct {
	mu sync.Mutex

	ID    string `json:"job_id"`
	DocID string `json:"doc_id"`

	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`
	Title    string    `json:"title"`

	Progress Progress `json:"progress"`

	OutputDir string    `json:"output_dir,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	report   *Report
	errors   []string
}

// Progress tracks how far a job has come through its sections.
type Progress struct {
	SectionsTotal     int      `json:"sections_total"`
	SectionsProcessed int      `json:"sections_processed"`
	SectionsDropped   int      `json:"sections_dropped"`
	FilesWritten      []string `json:"files_written"`
	Errors            []string `json:"errors"`
}

// NewJob creates a queued job for raw document bytes. The document ID is
// derived from the content hash so re-uploads of the same file are
// recognizable.
func NewJob(filename, title string, data []byte) *Job {
	now := time.Now()
	j := &Job{
		ID:        NewJobID(),
		DocID:     ContentHashHex(data)[:16],
		Status:    StatusQueued,
		Phase:     "queued",
		Filename:  filename,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	j.fileData = data
	return j
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetOutputDir records where the job's files are written.
func (j *Job) SetOutputDir(dir string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.OutputDir = dir
	j.UpdatedAt = time.Now()
}

// LastUpdated returns the time of the most recent state change.
func (j *Job) LastUpdated() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.UpdatedAt
}

// SetSectionsTotal records how many sections were discovered.
func (j *Job) SetSectionsTotal(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.SectionsTotal = n
	j.UpdatedAt = time.Now()
}

// SectionDone advances progress after one section's outcome.
func (j *Job) SectionDone(dropped bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.SectionsProcessed++
	if dropped {
		j.Progress.SectionsDropped++
	}
	j.UpdatedAt = time.Now()
}

// SetReport stores the final run report and fills progress from it.
func (j *Job) SetReport(rep *Report) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.report = rep
	j.Title = rep.Title
	j.Progress.SectionsTotal = rep.SectionsFound
	j.Progress.SectionsProcessed = rep.SectionsFound
	j.Progress.SectionsDropped = rep.Dropped
	j.Progress.FilesWritten = rep.FilesWritten
	j.UpdatedAt = time.Now()
}

// Report returns the final run report, or nil while the job is running.
func (j *Job) Report() *Report {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.report
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string    `json:"job_id"`
	DocID     string    `json:"doc_id"`
	Status    JobStatus `json:"status"`
	Phase     string    `json:"phase"`
	Filename  string    `json:"filename"`
	Title     string    `json:"title"`
	OutputDir string    `json:"output_dir,omitempty"`
	Progress  Progress  `json:"progress"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	files := j.Progress.FilesWritten
	if files == nil {
		files = []string{}
	}
	return JobSnapshot{
		ID:        j.ID,
		DocID:     j.DocID,
		Status:    j.Status,
		Phase:     j.Phase,
		Filename:  j.Filename,
		Title:     j.Title,
		OutputDir: j.OutputDir,
		Progress: Progress{
			SectionsTotal:     j.Progress.SectionsTotal,
			SectionsProcessed: j.Progress.SectionsProcessed,
			SectionsDropped:   j.Progress.SectionsDropped,
			FilesWritten:      files,
			Errors:            errs,
		},
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.LastUpdated()) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
