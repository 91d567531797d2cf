package app

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"liftcast/domain/core"
	"liftcast/domain/typicality"
	"liftcast/internal"
	"liftcast/internal/observability"
	"liftcast/ports"
)

const buildKey = "typicality-table"

// Snapshot is one published build of the typicality table.
type Snapshot struct {
	ID      core.SnapshotID   `json:"id"`
	BuiltAt time.Time         `json:"built_at"`
	Source  string            `json:"source"`
	Table   *typicality.Table `json:"-"`
}

// Prediction is the answer for one requested wall-clock time.
type Prediction struct {
	RequestedHour   int                      `json:"requested_hour"`
	RequestedMinute int                      `json:"requested_minute"`
	Record          typicality.SummaryRecord `json:"record"`
	Idle            bool                     `json:"idle"`
	Advice          string                   `json:"advice"`
	SnapshotID      core.SnapshotID          `json:"snapshot_id"`
}

// ModelServiceOptions configures a ModelService. Zero values are usable.
type ModelServiceOptions struct {
	Location *time.Location
	Clock    core.Clock
	Advisor  Advisor
	Logger   *internal.Logger
	Metrics  *observability.Metrics
}

// ModelService owns the current typicality table. The table is built on
// first use, rebuilt in full on Refresh and swapped in atomically; readers
// never observe a partially built table.
type ModelService struct {
	source   ports.ObservationSource
	location *time.Location
	clock    core.Clock
	advisor  Advisor
	logger   *internal.Logger
	metrics  *observability.Metrics

	group   singleflight.Group
	current atomic.Pointer[Snapshot]
}

// NewModelService creates a model service over the given raw log store
func NewModelService(source ports.ObservationSource, opts ModelServiceOptions) *ModelService {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Clock == nil {
		opts.Clock = core.SystemClock
	}
	if opts.Advisor.Threshold <= 0 {
		opts.Advisor = NewAdvisor(opts.Advisor.Threshold)
	}
	if opts.Logger == nil {
		opts.Logger = internal.DefaultLogger
	}
	return &ModelService{
		source:   source,
		location: opts.Location,
		clock:    opts.Clock,
		advisor:  opts.Advisor,
		logger:   opts.Logger.With("ModelService"),
		metrics:  opts.Metrics,
	}
}

// Location is the zone used to read wall-clock times.
func (s *ModelService) Location() *time.Location {
	return s.location
}

// Advisor returns the advisor used for predictions.
func (s *ModelService) Advisor() Advisor {
	return s.advisor
}

// Now is the injected clock reading in the configured zone.
func (s *ModelService) Now() time.Time {
	return s.clock().In(s.location)
}

// Current returns the published snapshot without building one.
func (s *ModelService) Current() (*Snapshot, bool) {
	snap := s.current.Load()
	return snap, snap != nil
}

// Model returns the current snapshot, building it on first use. Concurrent
// first callers share a single build.
func (s *ModelService) Model(ctx context.Context) (*Snapshot, error) {
	if snap := s.current.Load(); snap != nil {
		return snap, nil
	}
	return s.build(ctx, false)
}

// Refresh reloads the raw log store and rebuilds the table. The previous
// snapshot stays published if anything fails.
func (s *ModelService) Refresh(ctx context.Context) (*Snapshot, error) {
	return s.build(ctx, true)
}

func (s *ModelService) build(ctx context.Context, force bool) (*Snapshot, error) {
	// The build runs detached from the first caller so that one cancelled
	// request does not fail every waiter.
	ch := s.group.DoChan(buildKey, func() (interface{}, error) {
		if !force {
			if snap := s.current.Load(); snap != nil {
				return snap, nil
			}
		}
		return s.rebuild(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Snapshot), nil
	}
}

func (s *ModelService) rebuild(ctx context.Context) (*Snapshot, error) {
	start := time.Now()
	name := s.source.Name()

	observations, err := s.source.Load(ctx)
	if err != nil {
		s.logger.Error("load from %s failed: %v", name, err)
		s.metrics.BuildFailed(time.Since(start))
		return nil, fmt.Errorf("failed to load observations from %s: %w", name, err)
	}

	table, err := typicality.Aggregate(observations)
	if err != nil {
		s.logger.Error("aggregation of %d observations from %s failed: %v", len(observations), name, err)
		s.metrics.BuildFailed(time.Since(start))
		return nil, fmt.Errorf("failed to build typicality table: %w", err)
	}

	snap := &Snapshot{
		ID:      core.NewSnapshotID(),
		BuiltAt: s.clock(),
		Source:  name,
		Table:   table,
	}
	previous := s.current.Swap(snap)
	s.metrics.BuildSucceeded(time.Since(start), table.Len(), len(table.Gaps()))

	if previous != nil && previous.Table.Fingerprint().Equals(table.Fingerprint()) {
		s.logger.Debug("rebuilt snapshot %s from %s; table unchanged", snap.ID, name)
	}
	s.logger.Info("published snapshot %s: %d observations, %d slots, %d gaps, fingerprint %s (%v)",
		snap.ID, table.Observations(), table.Len(), len(table.Gaps()), table.Fingerprint().Short(), time.Since(start))
	return snap, nil
}

// Predict answers for an explicit hour and minute. A slot without history
// returns an error matching core.ErrMissingKey.
func (s *ModelService) Predict(ctx context.Context, hour, minute int) (*Prediction, error) {
	snap, err := s.Model(ctx)
	if err != nil {
		s.metrics.Prediction("error")
		return nil, err
	}

	rec, err := snap.Table.Predict(hour, minute)
	if err != nil {
		if core.IsMissingKeyError(err) {
			s.metrics.Prediction("missing_key")
		} else {
			s.metrics.Prediction("error")
		}
		return nil, err
	}
	s.metrics.Prediction("hit")

	return &Prediction{
		RequestedHour:   hour,
		RequestedMinute: minute,
		Record:          rec,
		Idle:            s.advisor.Idle(rec),
		Advice:          s.advisor.Advise(hour, minute, rec),
		SnapshotID:      snap.ID,
	}, nil
}

// PredictAt answers for the wall-clock time of t in the configured zone.
func (s *ModelService) PredictAt(ctx context.Context, t time.Time) (*Prediction, error) {
	hour, minute := core.WallClock(t, s.location)
	return s.Predict(ctx, hour, minute)
}

// PredictNow answers for the current time.
func (s *ModelService) PredictNow(ctx context.Context) (*Prediction, error) {
	return s.PredictAt(ctx, s.clock())
}

// Run refreshes the model every interval until ctx is done. Failed refreshes
// are logged and the previous snapshot keeps serving.
func (s *ModelService) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("refreshing every %v", interval)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Refresh(ctx); err != nil && ctx.Err() == nil {
				s.logger.Warn("scheduled refresh failed, keeping previous snapshot: %v", err)
			}
		}
	}
}
