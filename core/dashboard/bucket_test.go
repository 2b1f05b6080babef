package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBucketFor(t *testing.T) {
	tests := []struct {
		percent float64
		want    Bucket
	}{
		{percent: 150, want: BucketComplete},
		{percent: 100, want: BucketComplete},
		{percent: 99.9, want: BucketOnTrack},
		{percent: 70, want: BucketOnTrack},
		{percent: 69.99, want: BucketAtRisk},
		{percent: 40, want: BucketAtRisk},
		{percent: 39, want: BucketCritical},
		{percent: 0, want: BucketCritical},
		{percent: -10, want: BucketCritical},
	}
	for _, tt := range tests {
		assert.Equalf(t, tt.want, BucketFor(tt.percent), "BucketFor(%v)", tt.percent)
	}
}

func TestCounts(t *testing.T) {
	c := make(Counts)
	c.Add(BucketFor(100))
	c.Add(BucketFor(10))
	c.Add(BucketFor(5))

	assert.Equal(t, 1, c[BucketComplete])
	assert.Equal(t, 2, c[BucketCritical])
	assert.Equal(t, 0, c[BucketAtRisk])
	assert.Equal(t, 3, c.Total())
}
