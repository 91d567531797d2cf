package testkit

import (
	"context"
	"fmt"

	"liftcast/domain/typicality"
)

// SyntheticSource is an in-memory raw log store backed by the generator.
// It stands in for the file or database when neither is configured.
type SyntheticSource struct {
	config ElevatorGeneratorConfig
}

// NewSyntheticSource creates a synthetic source
func NewSyntheticSource(config ElevatorGeneratorConfig) *SyntheticSource {
	return &SyntheticSource{config: config}
}

// Name identifies the source in logs and snapshots
func (s *SyntheticSource) Name() string {
	return fmt.Sprintf("synthetic:days=%d,seed=%d", s.config.Days, s.config.Seed)
}

// Load generates the same observations on every call.
func (s *SyntheticSource) Load(ctx context.Context) ([]typicality.Observation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return NewElevatorDataGenerator(s.config).GenerateObservations(), nil
}

// StaticSource serves a fixed observation slice, or a fixed error.
type StaticSource struct {
	Observations []typicality.Observation
	Err          error
}

// Name identifies the source in logs and snapshots
func (s *StaticSource) Name() string {
	return "static"
}

// Load returns a copy of the configured observations.
func (s *StaticSource) Load(ctx context.Context) ([]typicality.Observation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Err != nil {
		return nil, s.Err
	}
	return append([]typicality.Observation(nil), s.Observations...), nil
}

// Slot returns n observations of floor at hour:minute on consecutive days
// starting at firstDay.
func Slot(hour, minute, floor, n, firstDay int) []typicality.Observation {
	out := make([]typicality.Observation, n)
	for i := range out {
		out[i] = typicality.Observation{Day: firstDay + i, Hour: hour, Minute: minute, Floor: floor}
	}
	return out
}

// MorningScenario is the 09:15 slot with floor 1 on 25 days and floor 3 on 5.
func MorningScenario() []typicality.Observation {
	return append(Slot(9, 15, 1, 25, 1), Slot(9, 15, 3, 5, 26)...)
}
