package logfile

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"liftcast/domain/typicality"
)

// Format names the shape of a log file.
type Format string

const (
	// FormatAuto picks wide when all bucket columns exist, else long.
	FormatAuto Format = "auto"
	// FormatWide has one row per (day, hour) and one column per minute bucket.
	FormatWide Format = "wide"
	// FormatLong has one row per observation.
	FormatLong Format = "long"
)

// Layout maps log columns onto observation fields.
type Layout struct {
	Format        Format         `yaml:"format"`
	DayColumn     string         `yaml:"day_column"`
	HourColumn    string         `yaml:"hour_column"`
	BucketColumns map[int]string `yaml:"bucket_columns"`
	MinuteColumn  string         `yaml:"minute_column"`
	FloorColumn   string         `yaml:"floor_column"`
}

// DefaultLayout matches the historical export: Hour, 5min, 10min, ... 60min.
func DefaultLayout() Layout {
	buckets := make(map[int]string, typicality.BucketsPerHour)
	for _, m := range typicality.Buckets() {
		buckets[m] = fmt.Sprintf("%dmin", m)
	}
	return Layout{
		Format:        FormatAuto,
		DayColumn:     "Day",
		HourColumn:    "Hour",
		BucketColumns: buckets,
		MinuteColumn:  "minute_bucket",
		FloorColumn:   "floor",
	}
}

// LoadLayout reads a YAML layout file. An empty path returns DefaultLayout.
func LoadLayout(path string) (Layout, error) {
	if path == "" {
		return DefaultLayout(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("failed to read layout file: %w", err)
	}
	layout, err := ParseLayout(data)
	if err != nil {
		return Layout{}, fmt.Errorf("layout file %s: %w", path, err)
	}
	return layout, nil
}

// ParseLayout decodes YAML; fields left out keep their defaults.
func ParseLayout(data []byte) (Layout, error) {
	var parsed Layout
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return Layout{}, fmt.Errorf("invalid layout YAML: %w", err)
	}

	layout := DefaultLayout()
	if parsed.Format != "" {
		layout.Format = parsed.Format
	}
	if parsed.DayColumn != "" {
		layout.DayColumn = parsed.DayColumn
	}
	if parsed.HourColumn != "" {
		layout.HourColumn = parsed.HourColumn
	}
	if len(parsed.BucketColumns) > 0 {
		layout.BucketColumns = parsed.BucketColumns
	}
	if parsed.MinuteColumn != "" {
		layout.MinuteColumn = parsed.MinuteColumn
	}
	if parsed.FloorColumn != "" {
		layout.FloorColumn = parsed.FloorColumn
	}

	if err := layout.Validate(); err != nil {
		return Layout{}, err
	}
	return layout, nil
}

// Validate checks that the layout names every bucket exactly once.
func (l Layout) Validate() error {
	switch l.Format {
	case FormatAuto, FormatWide, FormatLong:
	default:
		return fmt.Errorf("unknown format %q", l.Format)
	}
	if l.HourColumn == "" {
		return fmt.Errorf("hour_column is required")
	}
	if len(l.BucketColumns) != typicality.BucketsPerHour {
		return fmt.Errorf("bucket_columns must name all %d buckets, got %d", typicality.BucketsPerHour, len(l.BucketColumns))
	}
	seen := make(map[string]int, len(l.BucketColumns))
	for m, col := range l.BucketColumns {
		if !typicality.ValidBucket(m) {
			return fmt.Errorf("bucket_columns has invalid bucket %d", m)
		}
		if col == "" {
			return fmt.Errorf("bucket_columns[%d] is empty", m)
		}
		if other, dup := seen[col]; dup {
			return fmt.Errorf("column %q used for buckets %d and %d", col, other, m)
		}
		seen[col] = m
	}
	return nil
}

// sortedBuckets returns the layout's bucket minutes ascending.
func (l Layout) sortedBuckets() []int {
	out := make([]int, 0, len(l.BucketColumns))
	for m := range l.BucketColumns {
		out = append(out, m)
	}
	sort.Ints(out)
	return out
}
