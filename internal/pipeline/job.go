package pipeline

import (
	"sync"

	"github.com/google/uuid"

	"vidforge/internal/probe"
)

// State represents the lifecycle of one pipeline execution.
type State string

const (
	StateProbing     State = "probing"
	StateDispatching State = "dispatching"
	StateCollecting  State = "collecting"
	StateCommitted   State = "committed"
	StateRolledBack  State = "rolled_back"
)

// Terminal reports whether the state ends the job.
func (s State) Terminal() bool {
	return s == StateCommitted || s == StateRolledBack
}

// Outcome records the result of one artifact operation.
type Outcome struct {
	Key string
	Err error
}

// Succeeded reports whether the operation produced its artifact.
func (o Outcome) Succeeded() bool {
	return o.Err == nil && o.Key != ""
}

// Job is the ephemeral bookkeeping for one upload's pipeline execution. It
// lives only until the job commits or rolls back and is never persisted.
type Job struct {
	ID       string
	InputKey string
	Info     probe.StreamInfo
	State    State

	mu       sync.Mutex
	outcomes map[Kind]Outcome
}

// NewJob creates a job for the given original upload key.
func NewJob(inputKey string) *Job {
	return &Job{
		ID:       uuid.NewString(),
		InputKey: inputKey,
		State:    StateProbing,
		outcomes: make(map[Kind]Outcome),
	}
}

func (j *Job) recordOutcome(kind Kind, outcome Outcome) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.outcomes[kind] = outcome
}

// Outcome returns the recorded result for the kind, if any.
func (j *Job) Outcome(kind Kind) (Outcome, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	outcome, ok := j.outcomes[kind]
	return outcome, ok
}

// ProducedKeys returns the blob keys of every artifact that completed,
// regardless of the job's final decision. Used for rollback cleanup.
func (j *Job) ProducedKeys() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	keys := make([]string, 0, len(j.outcomes))
	for _, kind := range kindOrder {
		if outcome, ok := j.outcomes[kind]; ok && outcome.Succeeded() {
			keys = append(keys, outcome.Key)
		}
	}
	return keys
}
