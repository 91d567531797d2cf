package typicality

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"liftcast/domain/core"
)

// Aggregate builds the full summary table from the raw observation set.
//
// Every observation is validated first; a single bad row aborts the build so
// no partial table is ever returned. Slots without observations become gaps.
// The result depends only on the multiset of observations, so repeated calls
// on the same input produce identical records.
func Aggregate(observations []Observation) (*Table, error) {
	if len(observations) == 0 {
		return nil, core.ErrNoObservations
	}

	counts := make(map[Key]map[int]int, SlotsPerDay)
	for i, o := range observations {
		if !ValidHour(o.Hour) {
			return nil, core.NewMalformedInputError(
				fmt.Sprintf("observation %d", i),
				fmt.Sprintf("hour %d outside [0,%d]", o.Hour, HoursPerDay-1))
		}
		if !ValidBucket(o.Minute) {
			return nil, core.NewMalformedInputError(
				fmt.Sprintf("observation %d", i),
				fmt.Sprintf("minute bucket %d is not one of %v", o.Minute, Buckets()))
		}

		key := o.Key()
		slot, ok := counts[key]
		if !ok {
			slot = make(map[int]int)
			counts[key] = slot
		}
		slot[o.Floor]++
	}

	records := make([]SummaryRecord, 0, len(counts))
	var gaps []Key
	for _, key := range AllKeys() {
		slot, ok := counts[key]
		if !ok {
			gaps = append(gaps, key)
			continue
		}
		records = append(records, summarize(key, slot))
	}

	return newTable(records, gaps, len(observations)), nil
}

// summarize computes mode, confidence and entropy for one slot.
// Equal counts resolve to the lowest floor value.
func summarize(key Key, counts map[int]int) SummaryRecord {
	floors := make([]int, 0, len(counts))
	total := 0
	for floor, n := range counts {
		floors = append(floors, floor)
		total += n
	}
	sort.Ints(floors)

	dist := make([]FloorShare, len(floors))
	probs := make([]float64, len(floors))
	typical, best := floors[0], 0
	for i, floor := range floors {
		n := counts[floor]
		p := float64(n) / float64(total)
		dist[i] = FloorShare{Floor: floor, Count: n, Probability: p}
		probs[i] = p
		if n > best {
			typical, best = floor, n
		}
	}

	return SummaryRecord{
		Hour:         key.Hour,
		Minute:       key.Minute,
		TypicalFloor: typical,
		Confidence:   float64(best) / float64(total),
		Entropy:      entropyBits(probs),
		Samples:      total,
		Distinct:     len(floors),
		Distribution: dist,
	}
}

// entropyBits is the Shannon entropy of p in bits. gonum reports nats.
func entropyBits(p []float64) float64 {
	if len(p) < 2 {
		return 0
	}
	h := stat.Entropy(p) / math.Ln2
	if h < 0 {
		return 0
	}
	return h
}
