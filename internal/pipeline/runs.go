package pipeline

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// RunStatus represents the state of a ranking run.
type RunStatus string

const (
	StatusRunning   RunStatus = "running"
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
	StatusEmpty     RunStatus = "no_documents"
)

// Run phases, in order.
const (
	PhaseLoading = "loading"
	PhasePooling = "pooling"
	PhaseScoring = "scoring"
	PhaseWriting = "writing"
	PhaseDone    = "done"
)

// Run tracks the state of a single ranking run.
type Run struct {
	mu sync.Mutex

	ID        string
	Status    RunStatus
	Phase     string
	Documents []string
	Sections  int
	Skipped   []Skipped
	Errors    []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RunSnapshot is a copy of a Run that is safe to serialize.
type RunSnapshot struct {
	ID        string    `json:"run_id"`
	Status    RunStatus `json:"status"`
	Phase     string    `json:"phase"`
	Documents []string  `json:"documents"`
	Sections  int       `json:"sections"`
	Skipped   []Skipped `json:"skipped"`
	Errors    []string  `json:"errors"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewRun starts a run record with a fresh ID.
func NewRun() *Run {
	now := time.Now()
	return &Run{
		ID:        uuid.NewString(),
		Status:    StatusRunning,
		Phase:     PhaseLoading,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetStatus updates run status atomically.
func (r *Run) SetStatus(status RunStatus, phase string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Status = status
	r.Phase = phase
	r.UpdatedAt = time.Now()
}

// AddError records an error.
func (r *Run) AddError(err string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Errors = append(r.Errors, err)
	r.UpdatedAt = time.Now()
}

func (r *Run) setDocuments(docs []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Documents = docs
	r.UpdatedAt = time.Now()
}

// AddSkipped records documents left out of the run.
func (r *Run) AddSkipped(skipped ...Skipped) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Skipped = append(r.Skipped, skipped...)
	r.UpdatedAt = time.Now()
}

func (r *Run) setSections(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Sections = n
	r.UpdatedAt = time.Now()
}

// Snapshot returns a copy of the run.
func (r *Run) Snapshot() RunSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RunSnapshot{
		ID:        r.ID,
		Status:    r.Status,
		Phase:     r.Phase,
		Documents: append([]string{}, r.Documents...),
		Sections:  r.Sections,
		Skipped:   append([]Skipped{}, r.Skipped...),
		Errors:    append([]string{}, r.Errors...),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// RunStore is a thread-safe in-memory run registry with TTL eviction.
type RunStore struct {
	mu   sync.Mutex
	runs map[string]*Run
	ttl  time.Duration
}

func NewRunStore(ttl time.Duration) *RunStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RunStore{
		runs: make(map[string]*Run),
		ttl:  ttl,
	}
}

func (s *RunStore) Put(run *Run) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
}

func (s *RunStore) Get(id string) *Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs[id]
}

// Cleanup removes expired runs and reports how many were removed and how
// many remain.
func (s *RunStore) Cleanup() (removed, remaining int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, run := range s.runs {
		run.mu.Lock()
		expired := now.Sub(run.UpdatedAt) > s.ttl
		run.mu.Unlock()
		if expired {
			delete(s.runs, id)
			removed++
		}
	}
	return removed, len(s.runs)
}
