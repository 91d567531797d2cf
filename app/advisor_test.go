package app

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liftcast/domain/typicality"
	"liftcast/internal"
	"liftcast/internal/testkit"
)

func TestAdvisor_Threshold(t *testing.T) {
	a := NewAdvisor(0)
	assert.Equal(t, DefaultAdviceThreshold, a.Threshold)

	assert.True(t, a.Idle(typicality.SummaryRecord{Entropy: 0}))
	assert.True(t, a.Idle(typicality.SummaryRecord{Entropy: 0.49}))
	assert.False(t, a.Idle(typicality.SummaryRecord{Entropy: 0.5}))

	strict := NewAdvisor(0.1)
	assert.False(t, strict.Idle(typicality.SummaryRecord{Entropy: 0.2}))
}

func TestAdvisor_Text(t *testing.T) {
	a := NewAdvisor(DefaultAdviceThreshold)
	assert.Equal(t, "**Live Advice:** At 9:05, the elevator is likely idling. You should probably walk.",
		a.Advise(9, 5, typicality.SummaryRecord{Entropy: 0}))
	assert.Equal(t, "**Live Advice:** At 17:40, the elevator is moving frequently. It's worth waiting!",
		a.Advise(17, 40, typicality.SummaryRecord{Entropy: 1.2}))
	assert.Equal(t, "No historical data for this time.", a.NoData())
}

func TestSummarize_MorningScenario(t *testing.T) {
	table, err := typicality.Aggregate(testkit.MorningScenario())
	require.NoError(t, err)

	summary, err := Summarize(table, NewAdvisor(0))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Slots)
	assert.Len(t, summary.Gaps, typicality.SlotsPerDay-1)
	assert.Equal(t, 30, summary.Observations)
	assert.InDelta(t, 25.0/30.0, summary.MeanConfidence, 1e-12)
	assert.InDelta(t, 0.650, summary.MaxEntropy, 1e-3)
	require.Len(t, summary.Hours, 1)
	assert.Equal(t, 9, summary.Hours[0].Hour)
	assert.Equal(t, 0, summary.IdleSlots)
	require.Len(t, summary.MostPredictable, 1)
	assert.Equal(t, "09:15", summary.MostPredictable[0].Label)
}

func TestModelService_SummaryFullDay(t *testing.T) {
	source := testkit.NewSyntheticSource(testkit.DefaultElevatorConfig())
	svc := NewModelService(source, ModelServiceOptions{Logger: internal.NewLoggerTo(io.Discard, internal.LogLevelError)})

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, typicality.SlotsPerDay, summary.Slots)
	assert.Empty(t, summary.Gaps)
	assert.Len(t, summary.Hours, typicality.HoursPerDay)
	assert.Equal(t, source.Name(), summary.Source)
	assert.NotEmpty(t, summary.SnapshotID)
	require.Len(t, summary.MostPredictable, 5)
	require.Len(t, summary.LeastPredictable, 5)
	assert.LessOrEqual(t, summary.MostPredictable[0].Entropy, summary.LeastPredictable[0].Entropy)
	assert.LessOrEqual(t, summary.MedianEntropy, summary.P90Entropy)
	assert.LessOrEqual(t, summary.P90Entropy, summary.MaxEntropy)
	assert.Greater(t, summary.IdleSlots, 0)
}
