package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// sagaStep is one stage of a multi-write workflow against a store that
// cannot give us a transaction. A fatal failure rolls back the completed
// steps in reverse order via their compensations; a bestEffort failure is
// logged and the workflow carries on.
type sagaStep struct {
	name       string
	run        func(context.Context) error
	compensate func(context.Context) error
	bestEffort bool
}

func (s *Service) runSaga(ctx context.Context, steps []sagaStep) error {
	completed := make([]sagaStep, 0, len(steps))

	for _, step := range steps {
		if step.run == nil {
			continue
		}
		if err := step.run(ctx); err != nil {
			if step.bestEffort {
				s.logger.Warn("best-effort step failed",
					zap.String("step", step.name),
					zap.Error(err))
				continue
			}
			s.rollback(ctx, completed)
			return fmt.Errorf("%s: %w", step.name, err)
		}
		completed = append(completed, step)
	}

	return nil
}

// rollback runs compensations newest-first. Compensation errors are logged,
// not returned: by this point the original failure is the one the caller
// needs to see.
func (s *Service) rollback(ctx context.Context, completed []sagaStep) {
	for i := len(completed) - 1; i >= 0; i-- {
		step := completed[i]
		if step.compensate == nil {
			continue
		}
		if err := step.compensate(ctx); err != nil {
			s.logger.Error("compensation failed",
				zap.String("step", step.name),
				zap.Error(err))
		}
	}
}
