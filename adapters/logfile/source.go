package logfile

import (
	"context"
	"fmt"

	"liftcast/domain/typicality"
	"liftcast/internal"
)

// Source is a file-backed raw log store.
type Source struct {
	path   string
	layout Layout
	base   *internal.Logger
	logger *internal.Logger
}

// NewSource creates a source reading path with the given layout. Both the
// source and its readers log through logger, or internal.DefaultLogger if nil.
func NewSource(path string, layout Layout, logger *internal.Logger) *Source {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Source{
		path:   path,
		layout: layout,
		base:   logger,
		logger: logger.With("LogFileSource"),
	}
}

// Name identifies the source in logs and snapshots.
func (s *Source) Name() string {
	return "file:" + s.path
}

// Load reads and converts the whole file.
func (s *Source) Load(ctx context.Context) ([]typicality.Observation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := NewDataReader(s.path, s.base).ReadData()
	if err != nil {
		return nil, fmt.Errorf("failed to read elevator log: %w", err)
	}

	obs, err := s.layout.Observations(data)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Loaded %d observations from %s", len(obs), s.path)
	return obs, nil
}
