package jobsearch

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Filter represents a single post-processing step applied to fetched listings.
type Filter interface {
	Name() string
	Enable()
	Disable(reason string)
	IsEnabled() bool

	Apply(ctx context.Context, v *Listings) (*Listings, Step, error)
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

type statusProvider interface {
	Status() Status
}

// runFilters executes the enabled filters sequentially.
func runFilters(ctx context.Context, logger *zap.Logger, steps []Filter, v *Listings) (*Listings, error) {
	for _, step := range steps {
		if !step.IsEnabled() {
			logger.Debug("filter disabled", zap.String("name", step.Name()))
			continue
		}

		next, info, err := step.Apply(ctx, v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		if info.Dropped > 0 {
			logger.Info("filter step",
				zap.String("name", step.Name()),
				zap.Int("initial", info.Initial),
				zap.Int("dropped", info.Dropped),
				zap.Int("left", info.Left),
			)
		}

		v = next
	}

	return v, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// EnableByName turns on the filter with the provided name.
func EnableByName(steps []Filter, name string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Enable()
		}
	}
}
