package saga

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status represents the current status of a saga
type Status string

const (
	StatusRunning      Status = "running"
	StatusCompleted    Status = "completed"
	StatusCompensating Status = "compensating"
	StatusCompensated  Status = "compensated"
	// StatusStuck means at least one compensation could not be applied
	StatusStuck Status = "stuck"
)

// StepStatus represents the status of a saga step
type StepStatus string

const (
	StepStatusCompleted   StepStatus = "completed"
	StepStatusFailed      StepStatus = "failed"
	StepStatusCompensated StepStatus = "compensated"
	StepStatusStuck       StepStatus = "stuck"
)

// ActionFunc executes or compensates a step
type ActionFunc func(ctx context.Context) error

// Step is a single forward action and its undo
type Step struct {
	Name       string
	Execute    ActionFunc
	Compensate ActionFunc
	// Payload describes the step for reconciliation if its compensation gets parked
	Payload interface{}
}

// StepResult records what happened to a step
type StepResult struct {
	StepName   string     `json:"step_name"`
	Status     StepStatus `json:"status"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt time.Time  `json:"finished_at"`
}

// Definition is an ordered list of steps
type Definition struct {
	Name  string
	Steps []*Step
}

// NewDefinition creates a new saga definition
func NewDefinition(name string) *Definition {
	return &Definition{Name: name}
}

// AddStep appends a step; nil steps are ignored so callers can skip optional transfers
func (d *Definition) AddStep(step *Step) *Definition {
	if step != nil {
		d.Steps = append(d.Steps, step)
	}
	return d
}

// Instance is one execution of a definition
type Instance struct {
	ID          string        `json:"id"`
	Definition  string        `json:"definition"`
	Status      Status        `json:"status"`
	StepResults []*StepResult `json:"step_results"`
	Error       string        `json:"error,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`

	steps []*Step
}

func newInstance(def *Definition) *Instance {
	return &Instance{
		ID:         uuid.New().String(),
		Definition: def.Name,
		Status:     StatusRunning,
		CreatedAt:  time.Now(),
		steps:      def.Steps,
	}
}

func (i *Instance) finish(status Status) {
	now := time.Now()
	i.Status = status
	i.CompletedAt = &now
}

// StepError reports which step failed
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
