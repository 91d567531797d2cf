package app

import (
	"fmt"

	"liftcast/domain/typicality"
)

// DefaultAdviceThreshold is the entropy, in bits, below which the car is
// considered parked for the slot.
const DefaultAdviceThreshold = 0.5

const (
	idleVerdict   = "likely idling. You should probably walk."
	movingVerdict = "moving frequently. It's worth waiting!"
	noDataAdvice  = "No historical data for this time."
)

// Advisor turns a summary record into a short markdown recommendation.
type Advisor struct {
	Threshold float64
}

// NewAdvisor returns an advisor; a non-positive threshold uses the default.
func NewAdvisor(threshold float64) Advisor {
	if threshold <= 0 {
		threshold = DefaultAdviceThreshold
	}
	return Advisor{Threshold: threshold}
}

// Idle reports whether the slot's distribution is concentrated enough that
// waiting is unlikely to pay off.
func (a Advisor) Idle(rec typicality.SummaryRecord) bool {
	return rec.Entropy < a.Threshold
}

// Advise renders the recommendation for the requested wall-clock time.
func (a Advisor) Advise(hour, minute int, rec typicality.SummaryRecord) string {
	verdict := movingVerdict
	if a.Idle(rec) {
		verdict = idleVerdict
	}
	return fmt.Sprintf("**Live Advice:** At %d:%02d, the elevator is %s", hour, minute, verdict)
}

// NoData is the text shown when the table has no record for a slot.
func (a Advisor) NoData() string {
	return noDataAdvice
}
