package ports

import (
	"context"

	"liftcast/domain/typicality"
)

// ObservationSource is a raw log store: a read-only supplier of the full
// historical observation set. Load returns everything or an error; callers
// never see a partial set.
type ObservationSource interface {
	Name() string
	Load(ctx context.Context) ([]typicality.Observation, error)
}

// ObservationRepository is an ObservationSource that can also be replaced
// wholesale, used by the importer.
type ObservationRepository interface {
	ObservationSource

	// ReplaceAll swaps the stored log for obs atomically and returns the row count.
	ReplaceAll(ctx context.Context, obs []typicality.Observation) (int, error)
	Count(ctx context.Context) (int, error)
}
