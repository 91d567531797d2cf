package logfile

import (
	"fmt"
	"math"
	"strconv"

	"liftcast/domain/core"
	"liftcast/domain/typicality"
)

// Observations converts a raw table into observations following the layout.
// Empty floor cells are missing samples and are skipped. Anything else that
// cannot be read is reported as core.ErrMalformedInput and nothing is returned.
func (l Layout) Observations(data *RawTable) ([]typicality.Observation, error) {
	if err := l.Validate(); err != nil {
		return nil, core.NewMalformedInputError("layout", err.Error())
	}

	format, err := l.detect(data)
	if err != nil {
		return nil, err
	}
	if format == FormatLong {
		return l.longObservations(data)
	}
	return l.wideObservations(data)
}

// detect resolves FormatAuto and checks required columns.
func (l Layout) detect(data *RawTable) (Format, error) {
	wideMissing := l.missing(data, l.wideColumns())
	longMissing := l.missing(data, []string{l.HourColumn, l.MinuteColumn, l.FloorColumn})

	switch l.Format {
	case FormatWide:
		if len(wideMissing) > 0 {
			return "", core.NewMissingColumnsError(wideMissing)
		}
		return FormatWide, nil
	case FormatLong:
		if len(longMissing) > 0 {
			return "", core.NewMissingColumnsError(longMissing)
		}
		return FormatLong, nil
	}

	if len(wideMissing) == 0 {
		return FormatWide, nil
	}
	if len(longMissing) == 0 {
		return FormatLong, nil
	}
	return "", core.NewMissingColumnsError(wideMissing)
}

func (l Layout) wideColumns() []string {
	cols := []string{l.HourColumn}
	for _, m := range l.sortedBuckets() {
		cols = append(cols, l.BucketColumns[m])
	}
	return cols
}

func (l Layout) missing(data *RawTable, cols []string) []string {
	var out []string
	for _, c := range cols {
		if _, ok := data.Column(c); !ok {
			out = append(out, c)
		}
	}
	return out
}

func (l Layout) wideObservations(data *RawTable) ([]typicality.Observation, error) {
	hourCol, _ := data.Column(l.HourColumn)
	dayCol, hasDay := data.Column(l.DayColumn)
	buckets := l.sortedBuckets()

	cols := make(map[int]string, len(buckets))
	for _, m := range buckets {
		cols[m], _ = data.Column(l.BucketColumns[m])
	}

	// Without a day column, the n-th row for an hour is day n.
	seen := make(map[int]int, typicality.HoursPerDay)

	out := make([]typicality.Observation, 0, len(data.Rows)*len(buckets))
	for i, row := range data.Rows {
		line := i + 2
		hour, err := parseHour(row, hourCol, line)
		if err != nil {
			return nil, err
		}

		seen[hour]++
		day := seen[hour]
		if hasDay && row[dayCol] != "" {
			if day, err = parseInteger(row[dayCol], line, dayCol); err != nil {
				return nil, err
			}
		}

		for _, m := range buckets {
			raw := row[cols[m]]
			if raw == "" {
				continue
			}
			floor, err := parseInteger(raw, line, cols[m])
			if err != nil {
				return nil, err
			}
			out = append(out, typicality.Observation{Day: day, Hour: hour, Minute: m, Floor: floor})
		}
	}
	return out, nil
}

func (l Layout) longObservations(data *RawTable) ([]typicality.Observation, error) {
	hourCol, _ := data.Column(l.HourColumn)
	minuteCol, _ := data.Column(l.MinuteColumn)
	floorCol, _ := data.Column(l.FloorColumn)
	dayCol, hasDay := data.Column(l.DayColumn)

	// Without a day column, the n-th sample of a slot is day n.
	seen := make(map[typicality.Key]int, typicality.SlotsPerDay)

	out := make([]typicality.Observation, 0, len(data.Rows))
	for i, row := range data.Rows {
		line := i + 2
		hour, err := parseHour(row, hourCol, line)
		if err != nil {
			return nil, err
		}

		minute, err := parseInteger(row[minuteCol], line, minuteCol)
		if err != nil {
			return nil, err
		}
		if !typicality.ValidBucket(minute) {
			return nil, core.NewMalformedInputError(where(line, minuteCol),
				fmt.Sprintf("minute bucket %d is not one of %v", minute, typicality.Buckets()))
		}

		if row[floorCol] == "" {
			continue
		}
		floor, err := parseInteger(row[floorCol], line, floorCol)
		if err != nil {
			return nil, err
		}

		key := typicality.Key{Hour: hour, Minute: minute}
		seen[key]++
		day := seen[key]
		if hasDay && row[dayCol] != "" {
			if day, err = parseInteger(row[dayCol], line, dayCol); err != nil {
				return nil, err
			}
		}
		out = append(out, typicality.Observation{Day: day, Hour: hour, Minute: minute, Floor: floor})
	}
	return out, nil
}

func parseHour(row RawRow, col string, line int) (int, error) {
	hour, err := parseInteger(row[col], line, col)
	if err != nil {
		return 0, err
	}
	if !typicality.ValidHour(hour) {
		return 0, core.NewMalformedInputError(where(line, col),
			fmt.Sprintf("hour %d outside [0,%d]", hour, typicality.HoursPerDay-1))
	}
	return hour, nil
}

// parseInteger accepts "3" and integral floats such as "3.0" (spreadsheet exports).
func parseInteger(raw string, line int, col string) (int, error) {
	if raw == "" {
		return 0, core.NewMalformedInputError(where(line, col), "empty value")
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, core.NewMalformedInputError(where(line, col), fmt.Sprintf("non-integer value %q", raw))
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, core.NewMalformedInputError(where(line, col), fmt.Sprintf("value %q out of range", raw))
	}
	return int(f), nil
}

func where(line int, col string) string {
	return fmt.Sprintf("line %d column %q", line, col)
}
