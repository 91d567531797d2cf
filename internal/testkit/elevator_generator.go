package testkit

import (
	"math/rand"

	"liftcast/domain/typicality"
)

// ElevatorGeneratorConfig configures the synthetic elevator log generator
type ElevatorGeneratorConfig struct {
	Days       int   `json:"days"`
	TopFloor   int   `json:"top_floor"`
	LobbyFloor int   `json:"lobby_floor"`
	Seed       int64 `json:"seed"`
}

// DefaultElevatorConfig mirrors the historical export: 30 days, ten floors.
func DefaultElevatorConfig() ElevatorGeneratorConfig {
	return ElevatorGeneratorConfig{
		Days:       30,
		TopFloor:   10,
		LobbyFloor: 0,
		Seed:       42,
	}
}

// DayHourRow is one row of the wide log: the floor at each bucket of one hour.
type DayHourRow struct {
	Day    int
	Hour   int
	Floors [typicality.BucketsPerHour]int
}

// ElevatorDataGenerator produces deterministic office-building traffic
type ElevatorDataGenerator struct {
	config ElevatorGeneratorConfig
	rng    *rand.Rand
}

// NewElevatorDataGenerator creates a new generator
func NewElevatorDataGenerator(config ElevatorGeneratorConfig) *ElevatorDataGenerator {
	if config.TopFloor <= config.LobbyFloor {
		config.TopFloor = config.LobbyFloor + 1
	}
	return &ElevatorDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// GenerateRows returns Days*24 rows ordered by day then hour.
func (g *ElevatorDataGenerator) GenerateRows() []DayHourRow {
	rows := make([]DayHourRow, 0, g.config.Days*typicality.HoursPerDay)
	for day := 1; day <= g.config.Days; day++ {
		for hour := 0; hour < typicality.HoursPerDay; hour++ {
			row := DayHourRow{Day: day, Hour: hour}
			for i := range row.Floors {
				row.Floors[i] = g.floorAt(hour)
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// GenerateObservations flattens GenerateRows into observations.
func (g *ElevatorDataGenerator) GenerateObservations() []typicality.Observation {
	return RowsToObservations(g.GenerateRows())
}

// floorAt samples a position for the given hour. Nights park at the lobby,
// rush hours spread across the building, office hours favour a few floors.
func (g *ElevatorDataGenerator) floorAt(hour int) int {
	lobby, top := g.config.LobbyFloor, g.config.TopFloor
	span := top - lobby
	r := g.rng.Float64()

	switch {
	case hour < 6 || hour >= 22:
		if r < 0.95 {
			return lobby
		}
		return lobby + 1 + g.rng.Intn(span)
	case hour == 8 || hour == 9 || hour == 17 || hour == 18:
		return lobby + g.rng.Intn(span+1)
	case hour == 12 || hour == 13:
		if r < 0.5 {
			return lobby
		}
		return lobby + 1 + g.rng.Intn(span)
	case hour >= 6 && hour < 22:
		if r < 0.6 {
			return lobby + 1 + (hour % span)
		}
		return lobby + g.rng.Intn(span+1)
	}
	return lobby
}

// RowsToObservations flattens wide rows.
func RowsToObservations(rows []DayHourRow) []typicality.Observation {
	buckets := typicality.Buckets()
	out := make([]typicality.Observation, 0, len(rows)*len(buckets))
	for _, row := range rows {
		for i, m := range buckets {
			out = append(out, typicality.Observation{Day: row.Day, Hour: row.Hour, Minute: m, Floor: row.Floors[i]})
		}
	}
	return out
}
