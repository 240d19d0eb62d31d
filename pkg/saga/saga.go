// Package saga runs multi-step remote operations with recorded compensation.
// The upstream API offers no transactions, so a failed step can only be
// undone by replaying the inverse calls of the steps that already succeeded.
package saga

import (
	"context"
	"fmt"

	"github.com/negobi/negobi-gateway/pkg/logger"
)

// Step is one forward action with its compensating inverse. Compensate may be
// nil for steps that need no undo (e.g. the final step of a sequence).
type Step struct {
	Name       string
	Action     func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// CompensationError reports a failed saga whose rollback also failed, leaving
// the remote state inconsistent. Callers should surface it loudly.
type CompensationError struct {
	Step        string
	Cause       error
	Unrecovered []error
}

func (e *CompensationError) Error() string {
	return fmt.Sprintf("saga: step %q failed (%v) and %d compensation(s) also failed", e.Step, e.Cause, len(e.Unrecovered))
}

func (e *CompensationError) Unwrap() error {
	return e.Cause
}

// Runner executes sagas and logs their progress.
type Runner struct {
	logger *logger.Logger
}

// NewRunner creates a saga runner.
func NewRunner(log *logger.Logger) *Runner {
	return &Runner{logger: log.WithComponent("saga")}
}

// Run executes steps in order. On failure it runs the compensations of all
// previously completed steps in reverse order, best effort. The returned
// error is the failing step's error, or a CompensationError when rollback
// itself failed.
//
// Compensation runs with context.WithoutCancel so a caller timeout that
// killed the forward step cannot also abandon the rollback mid-flight.
func (r *Runner) Run(ctx context.Context, name string, steps ...Step) error {
	completed := make([]Step, 0, len(steps))
	for _, step := range steps {
		if err := step.Action(ctx); err != nil {
			r.logger.Warn().
				Str("saga", name).
				Str("step", step.Name).
				Err(err).
				Msg("saga step failed, compensating")
			return r.compensate(ctx, name, step.Name, err, completed)
		}
		completed = append(completed, step)
	}
	return nil
}

func (r *Runner) compensate(ctx context.Context, saga, failedStep string, cause error, completed []Step) error {
	ctx = context.WithoutCancel(ctx)

	var unrecovered []error
	for i := len(completed) - 1; i >= 0; i-- {
		step := completed[i]
		if step.Compensate == nil {
			continue
		}
		if err := step.Compensate(ctx); err != nil {
			r.logger.Error().
				Str("saga", saga).
				Str("step", step.Name).
				Err(err).
				Msg("saga compensation failed")
			unrecovered = append(unrecovered, fmt.Errorf("%s: %w", step.Name, err))
		}
	}
	if len(unrecovered) > 0 {
		return &CompensationError{Step: failedStep, Cause: cause, Unrecovered: unrecovered}
	}
	return cause
}
