package typicality

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBucketize(t *testing.T) {
	tests := []struct {
		minute int
		want   int
	}{
		{0, 5},
		{1, 5},
		{2, 5},
		{3, 5},
		{7, 5},
		{8, 10},
		{12, 10},
		{13, 15},
		{17, 15},
		{30, 30},
		{57, 55},
		{58, 60},
		{59, 60},
		{60, 60},
		{62, 60},
		{63, 60},
		{600, 60},
		{-1, 5},
		{-3, 5},
		{-40, 5},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Bucketize(tt.minute), "Bucketize(%d)", tt.minute)
	}
}

func TestBucketizeAlwaysValid(t *testing.T) {
	for m := -120; m <= 180; m++ {
		b := Bucketize(m)
		if !ValidBucket(b) {
			t.Fatalf("Bucketize(%d) = %d, not a valid bucket", m, b)
		}
	}
}

func TestBucketizeIsIdentityOnBuckets(t *testing.T) {
	for _, b := range Buckets() {
		assert.Equal(t, b, Bucketize(b))
	}
}

func TestKeys(t *testing.T) {
	keys := AllKeys()
	assert.Len(t, keys, SlotsPerDay)
	assert.Equal(t, Key{Hour: 0, Minute: 5}, keys[0])
	assert.Equal(t, Key{Hour: 23, Minute: 60}, keys[len(keys)-1])
	assert.Equal(t, "09:15", Key{Hour: 9, Minute: 15}.String())
	assert.False(t, Key{Hour: 24, Minute: 5}.Valid())
	assert.False(t, Key{Hour: 3, Minute: 0}.Valid())
	assert.False(t, Key{Hour: 3, Minute: 12}.Valid())
}
