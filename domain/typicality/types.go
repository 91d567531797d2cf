// Package typicality turns historical elevator logs into a per-slot model of
// where the car usually is: modal floor, confidence and Shannon entropy for
// every (hour, 5-minute bucket) of the day.
package typicality

import "fmt"

// Discretization of the historical log format.
const (
	HoursPerDay    = 24
	BucketWidth    = 5
	BucketsPerHour = 12
	MinBucket      = BucketWidth
	MaxBucket      = BucketWidth * BucketsPerHour
	SlotsPerDay    = HoursPerDay * BucketsPerHour
)

// Observation is one sampled floor position from the raw log store.
type Observation struct {
	Day    int `json:"day" db:"day"`              // 1-based sample day, informative only
	Hour   int `json:"hour" db:"hour"`            // 0-23
	Minute int `json:"minute" db:"minute_bucket"` // bucket, one of 5,10,...,60
	Floor  int `json:"floor" db:"floor"`
}

// Key identifies one time slot of the day.
type Key struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// Valid reports whether the key names one of the SlotsPerDay slots.
func (k Key) Valid() bool {
	return ValidHour(k.Hour) && ValidBucket(k.Minute)
}

func (k Key) String() string {
	return fmt.Sprintf("%02d:%02d", k.Hour, k.Minute)
}

// Key returns the slot the observation belongs to.
func (o Observation) Key() Key {
	return Key{Hour: o.Hour, Minute: o.Minute}
}

// FloorShare is one entry of the empirical floor distribution at a slot.
type FloorShare struct {
	Floor       int     `json:"floor"`
	Count       int     `json:"count"`
	Probability float64 `json:"probability"`
}

// SummaryRecord is the model output for one slot.
type SummaryRecord struct {
	Hour         int          `json:"hour"`
	Minute       int          `json:"minute"`
	TypicalFloor int          `json:"typical_floor"`
	Confidence   float64      `json:"confidence"` // probability mass of TypicalFloor
	Entropy      float64      `json:"entropy"`    // bits
	Samples      int          `json:"samples"`
	Distinct     int          `json:"distinct"`
	Distribution []FloorShare `json:"distribution"` // ascending floor
}

// Key returns the slot the record summarizes.
func (r SummaryRecord) Key() Key {
	return Key{Hour: r.Hour, Minute: r.Minute}
}

// ValidHour reports whether h is an hour of day.
func ValidHour(h int) bool {
	return h >= 0 && h < HoursPerDay
}

// ValidBucket reports whether m is one of the twelve minute buckets.
func ValidBucket(m int) bool {
	return m >= MinBucket && m <= MaxBucket && m%BucketWidth == 0
}

// Buckets returns the minute buckets in ascending order.
func Buckets() []int {
	out := make([]int, BucketsPerHour)
	for i := range out {
		out[i] = MinBucket + i*BucketWidth
	}
	return out
}

// AllKeys returns every slot of the day ordered by (hour, minute).
func AllKeys() []Key {
	keys := make([]Key, 0, SlotsPerDay)
	for h := 0; h < HoursPerDay; h++ {
		for _, m := range Buckets() {
			keys = append(keys, Key{Hour: h, Minute: m})
		}
	}
	return keys
}
