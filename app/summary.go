package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"liftcast/domain/core"
	"liftcast/domain/typicality"
)

// rankedSlots is how many slots the summary lists at each end of the
// predictability ranking.
const rankedSlots = 5

// SlotRank is a compact reference to one record in a ranking.
type SlotRank struct {
	Key          typicality.Key `json:"key"`
	Label        string         `json:"label"`
	TypicalFloor int            `json:"typical_floor"`
	Confidence   float64        `json:"confidence"`
	Entropy      float64        `json:"entropy"`
}

// HourProfile aggregates the twelve slots of one hour.
type HourProfile struct {
	Hour           int     `json:"hour"`
	Slots          int     `json:"slots"`
	MeanEntropy    float64 `json:"mean_entropy"`
	MeanConfidence float64 `json:"mean_confidence"`
	IdleSlots      int     `json:"idle_slots"`
}

// DaySummary describes how predictable the whole day is.
type DaySummary struct {
	SnapshotID       core.SnapshotID  `json:"snapshot_id"`
	Source           string           `json:"source"`
	BuiltAt          time.Time        `json:"built_at"`
	Fingerprint      core.Hash        `json:"fingerprint"`
	Observations     int              `json:"observations"`
	Slots            int              `json:"slots"`
	Gaps             []typicality.Key `json:"gaps"`
	IdleSlots        int              `json:"idle_slots"`
	MeanConfidence   float64          `json:"mean_confidence"`
	MedianEntropy    float64          `json:"median_entropy"`
	P90Entropy       float64          `json:"p90_entropy"`
	MaxEntropy       float64          `json:"max_entropy"`
	Hours            []HourProfile    `json:"hours"`
	MostPredictable  []SlotRank       `json:"most_predictable"`
	LeastPredictable []SlotRank       `json:"least_predictable"`
}

// Summary describes the current snapshot.
func (s *ModelService) Summary(ctx context.Context) (*DaySummary, error) {
	snap, err := s.Model(ctx)
	if err != nil {
		return nil, err
	}
	summary, err := Summarize(snap.Table, s.advisor)
	if err != nil {
		return nil, err
	}
	summary.SnapshotID = snap.ID
	summary.Source = snap.Source
	summary.BuiltAt = snap.BuiltAt
	return summary, nil
}

// Summarize computes day-level statistics over a table.
func Summarize(table *typicality.Table, advisor Advisor) (*DaySummary, error) {
	records := table.Records()
	summary := &DaySummary{
		Fingerprint:  table.Fingerprint(),
		Observations: table.Observations(),
		Slots:        len(records),
		Gaps:         table.Gaps(),
	}
	if len(records) == 0 {
		return summary, nil
	}

	entropies := make([]float64, len(records))
	confidences := make([]float64, len(records))
	byHour := make(map[int][]typicality.SummaryRecord)
	for i, r := range records {
		entropies[i] = r.Entropy
		confidences[i] = r.Confidence
		byHour[r.Hour] = append(byHour[r.Hour], r)
		if advisor.Idle(r) {
			summary.IdleSlots++
		}
	}

	var err error
	if summary.MeanConfidence, err = stats.Mean(confidences); err != nil {
		return nil, fmt.Errorf("mean confidence: %w", err)
	}
	if summary.MedianEntropy, err = stats.Median(entropies); err != nil {
		return nil, fmt.Errorf("median entropy: %w", err)
	}
	if summary.P90Entropy, err = stats.Percentile(entropies, 90); err != nil {
		return nil, fmt.Errorf("p90 entropy: %w", err)
	}
	if summary.MaxEntropy, err = stats.Max(entropies); err != nil {
		return nil, fmt.Errorf("max entropy: %w", err)
	}

	for hour := 0; hour < typicality.HoursPerDay; hour++ {
		rs, ok := byHour[hour]
		if !ok {
			continue
		}
		profile, err := profileHour(hour, rs, advisor)
		if err != nil {
			return nil, err
		}
		summary.Hours = append(summary.Hours, profile)
	}

	ranked := make([]typicality.SummaryRecord, len(records))
	copy(ranked, records)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Entropy != ranked[j].Entropy {
			return ranked[i].Entropy < ranked[j].Entropy
		}
		return ranked[i].Confidence > ranked[j].Confidence
	})
	n := rankedSlots
	if n > len(ranked) {
		n = len(ranked)
	}
	for _, r := range ranked[:n] {
		summary.MostPredictable = append(summary.MostPredictable, rankOf(r))
	}
	for i := len(ranked) - 1; i >= len(ranked)-n; i-- {
		summary.LeastPredictable = append(summary.LeastPredictable, rankOf(ranked[i]))
	}

	return summary, nil
}

func profileHour(hour int, records []typicality.SummaryRecord, advisor Advisor) (HourProfile, error) {
	profile := HourProfile{Hour: hour, Slots: len(records)}
	entropies := make([]float64, len(records))
	confidences := make([]float64, len(records))
	for i, r := range records {
		entropies[i] = r.Entropy
		confidences[i] = r.Confidence
		if advisor.Idle(r) {
			profile.IdleSlots++
		}
	}

	var err error
	if profile.MeanEntropy, err = stats.Mean(entropies); err != nil {
		return profile, fmt.Errorf("hour %d mean entropy: %w", hour, err)
	}
	if profile.MeanConfidence, err = stats.Mean(confidences); err != nil {
		return profile, fmt.Errorf("hour %d mean confidence: %w", hour, err)
	}
	return profile, nil
}

func rankOf(r typicality.SummaryRecord) SlotRank {
	key := r.Key()
	return SlotRank{
		Key:          key,
		Label:        key.String(),
		TypicalFloor: r.TypicalFloor,
		Confidence:   r.Confidence,
		Entropy:      r.Entropy,
	}
}
