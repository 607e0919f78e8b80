package saga

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mahimasingh04/OpenEvent/pkg/logger"
	"github.com/mahimasingh04/OpenEvent/pkg/retry"
	"go.uber.org/zap"
)

// ErrNotCompensable is returned when compensating an instance that is not completed
var ErrNotCompensable = errors.New("saga instance cannot be compensated")

// Orchestrator runs saga definitions and undoes them on failure
type Orchestrator struct {
	logger *logger.Logger
	dlq    *retry.DLQHandler
}

// OrchestratorConfig holds configuration for the orchestrator
type OrchestratorConfig struct {
	Logger *logger.Logger
	// Compensation retries failed undo actions and parks them when exhausted.
	// Nil applies each compensation once.
	Compensation *retry.DLQHandler
}

// NewOrchestrator creates a new saga orchestrator
func NewOrchestrator(cfg *OrchestratorConfig) *Orchestrator {
	if cfg == nil {
		cfg = &OrchestratorConfig{}
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}
	dlq := cfg.Compensation
	if dlq == nil {
		dlq = retry.NewDLQHandler(&retry.Config{MaxRetries: 0}, nil, nil)
	}
	return &Orchestrator{logger: log, dlq: dlq}
}

// Execute runs every step in order. When a step fails, the completed steps are
// compensated in reverse order and the step's error is returned as a *StepError.
func (o *Orchestrator) Execute(ctx context.Context, def *Definition) (*Instance, error) {
	instance := newInstance(def)

	for _, step := range def.Steps {
		result := &StepResult{StepName: step.Name, StartedAt: time.Now()}
		err := step.Execute(ctx)
		result.FinishedAt = time.Now()
		instance.StepResults = append(instance.StepResults, result)

		if err != nil {
			result.Status = StepStatusFailed
			result.Error = err.Error()
			instance.Error = err.Error()

			o.logger.WarnContext(ctx, "saga step failed",
				zap.String("saga_id", instance.ID),
				zap.String("saga", def.Name),
				zap.String("step", step.Name),
				zap.Error(err),
			)

			o.compensate(ctx, instance)
			return instance, &StepError{Step: step.Name, Err: err}
		}
		result.Status = StepStatusCompleted
	}

	instance.finish(StatusCompleted)
	return instance, nil
}

// Compensate undoes a completed instance, e.g. when the surrounding storage commit failed
func (o *Orchestrator) Compensate(ctx context.Context, instance *Instance) error {
	if instance == nil || instance.Status != StatusCompleted {
		return ErrNotCompensable
	}
	o.compensate(ctx, instance)
	if instance.Status == StatusStuck {
		return fmt.Errorf("saga %s: some compensations were parked", instance.ID)
	}
	return nil
}

func (o *Orchestrator) compensate(ctx context.Context, instance *Instance) {
	instance.Status = StatusCompensating
	stuck := false

	for i := len(instance.StepResults) - 1; i >= 0; i-- {
		result := instance.StepResults[i]
		if result.Status != StepStatusCompleted {
			continue
		}
		step := instance.steps[i]
		if step.Compensate == nil {
			result.Status = StepStatusCompensated
			continue
		}

		letter := &retry.DeadLetter{
			ID:      instance.ID + ":" + step.Name,
			Topic:   "saga." + instance.Definition,
			Key:     instance.ID,
			Payload: encodePayload(step.Payload),
			Headers: map[string]string{"saga": instance.Definition, "step": step.Name},
		}
		if err := o.dlq.Process(ctx, letter, retry.Operation(step.Compensate)); err != nil {
			stuck = true
			result.Status = StepStatusStuck
			result.Error = err.Error()
			o.logger.ErrorContext(ctx, "saga compensation failed",
				zap.String("saga_id", instance.ID),
				zap.String("step", step.Name),
				zap.Error(err),
			)
			continue
		}
		result.Status = StepStatusCompensated
	}

	if stuck {
		instance.finish(StatusStuck)
		return
	}
	instance.finish(StatusCompensated)
	o.logger.InfoContext(ctx, "saga compensated",
		zap.String("saga_id", instance.ID),
		zap.String("saga", instance.Definition),
	)
}

func encodePayload(v interface{}) json.RawMessage {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}
