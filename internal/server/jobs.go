package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"chunkscribe/internal/transcript"
)

// JobStatus tracks a transcription job through its lifecycle.
type JobStatus string

const (
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Job is one upload working its way through the pipeline.
type Job struct {
	ID         string
	Status     JobStatus
	Filename   string
	CreatedAt  time.Time
	FinishedAt time.Time
	Transcript *transcript.Transcript
	Error      string
}

// jobStore is an in-memory job registry. Jobs live for the process lifetime;
// durable storage is a non-goal.
type jobStore struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

func newJobStore() *jobStore {
	return &jobStore{jobs: make(map[string]*Job)}
}

// Create registers a new processing job and returns a snapshot of it. The
// stored job is mutated by Complete/Fail from the worker goroutine, so the
// live pointer never leaves the store.
func (s *jobStore) Create(filename string) *Job {
	job := &Job{
		ID:        uuid.NewString(),
		Status:    StatusProcessing,
		Filename:  filename,
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	jobCopy := *job
	return &jobCopy
}

// Get returns a snapshot of the job, or nil if unknown.
func (s *jobStore) Get(id string) *Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil
	}
	jobCopy := *job
	return &jobCopy
}

func (s *jobStore) Complete(id string, t *transcript.Transcript) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if job, ok := s.jobs[id]; ok {
		job.Status = StatusCompleted
		job.Transcript = t
		job.FinishedAt = time.Now()
	}
}

func (s *jobStore) Fail(id string, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if job, ok := s.jobs[id]; ok {
		job.Status = StatusFailed
		job.Error = errMsg
		job.FinishedAt = time.Now()
	}
}
