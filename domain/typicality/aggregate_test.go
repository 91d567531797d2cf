package typicality

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liftcast/domain/core"
)

// repeat returns n observations of floor at hour:minute on consecutive days.
func repeat(hour, minute, floor, n int, firstDay int) []Observation {
	out := make([]Observation, n)
	for i := range out {
		out[i] = Observation{Day: firstDay + i, Hour: hour, Minute: minute, Floor: floor}
	}
	return out
}

// fullDay returns one observation per slot for each of days days, all on floor.
func fullDay(days, floor int) []Observation {
	var out []Observation
	for d := 1; d <= days; d++ {
		for _, k := range AllKeys() {
			out = append(out, Observation{Day: d, Hour: k.Hour, Minute: k.Minute, Floor: floor})
		}
	}
	return out
}

// randomLog builds a deterministic pseudo-random month of observations.
func randomLog(seed int64) []Observation {
	rng := rand.New(rand.NewSource(seed))
	var out []Observation
	for d := 1; d <= 30; d++ {
		for _, k := range AllKeys() {
			out = append(out, Observation{Day: d, Hour: k.Hour, Minute: k.Minute, Floor: rng.Intn(6)})
		}
	}
	return out
}

func TestAggregateMixedSlot(t *testing.T) {
	obs := append(repeat(9, 15, 1, 25, 1), repeat(9, 15, 3, 5, 26)...)

	table, err := Aggregate(obs)
	require.NoError(t, err)

	rec, ok := table.Lookup(Key{Hour: 9, Minute: 15})
	require.True(t, ok)

	assert.Equal(t, 1, rec.TypicalFloor)
	assert.InDelta(t, 25.0/30.0, rec.Confidence, 1e-12)
	assert.InDelta(t, 0.650022421648, rec.Entropy, 1e-9)
	assert.Equal(t, 30, rec.Samples)
	assert.Equal(t, 2, rec.Distinct)
	assert.Equal(t, []FloorShare{
		{Floor: 1, Count: 25, Probability: 25.0 / 30.0},
		{Floor: 3, Count: 5, Probability: 5.0 / 30.0},
	}, rec.Distribution)
}

func TestAggregateSingleFloorSlot(t *testing.T) {
	table, err := Aggregate(repeat(14, 40, 7, 30, 1))
	require.NoError(t, err)

	rec, ok := table.Lookup(Key{Hour: 14, Minute: 40})
	require.True(t, ok)

	assert.Equal(t, 7, rec.TypicalFloor)
	assert.Equal(t, 1.0, rec.Confidence)
	assert.Equal(t, 0.0, rec.Entropy)
	assert.False(t, math.Signbit(rec.Entropy), "entropy must be positive zero")
}

func TestAggregateTieGoesToLowestFloor(t *testing.T) {
	obs := append(repeat(8, 30, 4, 10, 1), repeat(8, 30, 2, 10, 11)...)
	obs = append(obs, repeat(8, 30, 6, 10, 21)...)

	table, err := Aggregate(obs)
	require.NoError(t, err)

	rec, _ := table.Lookup(Key{Hour: 8, Minute: 30})
	assert.Equal(t, 2, rec.TypicalFloor)
	assert.InDelta(t, 1.0/3.0, rec.Confidence, 1e-12)
	assert.InDelta(t, math.Log2(3), rec.Entropy, 1e-12)
}

func TestAggregateNegativeFloors(t *testing.T) {
	obs := append(repeat(0, 5, -2, 3, 1), repeat(0, 5, -1, 3, 4)...)

	table, err := Aggregate(obs)
	require.NoError(t, err)

	rec, _ := table.Lookup(Key{Hour: 0, Minute: 5})
	assert.Equal(t, -2, rec.TypicalFloor)
	assert.InDelta(t, 1.0, rec.Entropy, 1e-12)
}

func TestAggregateReportsGaps(t *testing.T) {
	obs := append(repeat(9, 15, 1, 3, 1), repeat(17, 60, 0, 3, 1)...)

	table, err := Aggregate(obs)
	require.NoError(t, err)

	assert.Equal(t, 2, table.Len())
	assert.Len(t, table.Gaps(), SlotsPerDay-2)
	assert.Equal(t, 6, table.Observations())
	assert.NotContains(t, table.Gaps(), Key{Hour: 9, Minute: 15})
	assert.Contains(t, table.Gaps(), Key{Hour: 9, Minute: 20})
}

func TestAggregateFullTable(t *testing.T) {
	table, err := Aggregate(fullDay(30, 0))
	require.NoError(t, err)

	assert.Equal(t, SlotsPerDay, table.Len())
	assert.Empty(t, table.Gaps())

	records := table.Records()
	for i := 1; i < len(records); i++ {
		prev, cur := records[i-1], records[i]
		ordered := prev.Hour < cur.Hour || (prev.Hour == cur.Hour && prev.Minute < cur.Minute)
		require.True(t, ordered, "records out of order at %d: %s then %s", i, prev.Key(), cur.Key())
	}
}

func TestAggregateRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name string
		obs  []Observation
	}{
		{"empty", nil},
		{"hour too large", []Observation{{Day: 1, Hour: 24, Minute: 5, Floor: 1}}},
		{"negative hour", []Observation{{Day: 1, Hour: -1, Minute: 5, Floor: 1}}},
		{"zero bucket", []Observation{{Day: 1, Hour: 3, Minute: 0, Floor: 1}}},
		{"off-grid bucket", []Observation{{Day: 1, Hour: 3, Minute: 17, Floor: 1}}},
		{"bad row after good rows", append(repeat(1, 5, 1, 5, 1), Observation{Hour: 1, Minute: 65})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := Aggregate(tt.obs)
			assert.Nil(t, table)
			assert.ErrorIs(t, err, core.ErrMalformedInput)
		})
	}
}

func TestAggregateProperties(t *testing.T) {
	obs := randomLog(42)
	table, err := Aggregate(obs)
	require.NoError(t, err)

	observed := make(map[Key]map[int]bool)
	for _, o := range obs {
		if observed[o.Key()] == nil {
			observed[o.Key()] = make(map[int]bool)
		}
		observed[o.Key()][o.Floor] = true
	}

	for _, rec := range table.Records() {
		assert.Greater(t, rec.Confidence, 0.0)
		assert.LessOrEqual(t, rec.Confidence, 1.0)
		assert.GreaterOrEqual(t, rec.Entropy, 0.0)
		assert.LessOrEqual(t, rec.Entropy, math.Log2(float64(rec.Distinct))+1e-12)
		assert.True(t, observed[rec.Key()][rec.TypicalFloor], "typical floor %d never observed at %s", rec.TypicalFloor, rec.Key())
		assert.Equal(t, rec.Distinct == 1, rec.Entropy == 0, "entropy zero iff one floor at %s", rec.Key())

		total := 0.0
		for _, s := range rec.Distribution {
			total += s.Probability
			assert.LessOrEqual(t, s.Count, rec.Distribution[indexOfFloor(rec, rec.TypicalFloor)].Count)
		}
		assert.InDelta(t, 1.0, total, 1e-9)
	}
}

func indexOfFloor(rec SummaryRecord, floor int) int {
	for i, s := range rec.Distribution {
		if s.Floor == floor {
			return i
		}
	}
	return -1
}

func TestAggregateIsIdempotent(t *testing.T) {
	obs := randomLog(7)

	first, err := Aggregate(obs)
	require.NoError(t, err)
	second, err := Aggregate(obs)
	require.NoError(t, err)

	assert.Equal(t, first.Records(), second.Records())
	assert.Equal(t, first.Fingerprint(), second.Fingerprint())

	// Input order must not matter either.
	shuffled := append([]Observation(nil), obs...)
	rand.New(rand.NewSource(99)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	third, err := Aggregate(shuffled)
	require.NoError(t, err)
	assert.Equal(t, first.Fingerprint(), third.Fingerprint())
}

func TestFingerprintChangesWithData(t *testing.T) {
	a, err := Aggregate(repeat(9, 15, 1, 30, 1))
	require.NoError(t, err)
	b, err := Aggregate(append(repeat(9, 15, 1, 29, 1), Observation{Day: 30, Hour: 9, Minute: 15, Floor: 2}))
	require.NoError(t, err)

	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}
