package typicality

// Bucketize maps a minute-of-hour to the nearest log bucket.
//
// The minute is rounded to the nearest multiple of BucketWidth. Integer
// minutes never land half-way between two multiples, so a remainder of 3 or 4
// rounds up and 0-2 rounds down. The log has no "0min" bucket: anything that
// rounds to 0 or below becomes 5, and anything above 60 becomes 60.
func Bucketize(minute int) int {
	q, r := minute/BucketWidth, minute%BucketWidth
	if r < 0 {
		q, r = q-1, r+BucketWidth
	}
	if 2*r > BucketWidth {
		q++
	}

	bucket := q * BucketWidth
	if bucket < MinBucket {
		return MinBucket
	}
	if bucket > MaxBucket {
		return MaxBucket
	}
	return bucket
}
