// Package dashboard holds the percentage buckets used by summaries and metric value updates.
// They are deliberately distinct from the goal status and the metric status.
package dashboard

type Bucket string

const (
	BucketComplete Bucket = "complete"
	BucketOnTrack  Bucket = "on-track"
	BucketAtRisk   Bucket = "at-risk"
	BucketCritical Bucket = "critical"
)

// Buckets lists every bucket, best first.
var Buckets = []Bucket{BucketComplete, BucketOnTrack, BucketAtRisk, BucketCritical}

// BucketFor classifies a raw percentage: >=100 complete, >=70 on-track, >=40 at-risk, else critical.
func BucketFor(percent float64) Bucket {
	switch {
	case percent >= 100:
		return BucketComplete
	case percent >= 70:
		return BucketOnTrack
	case percent >= 40:
		return BucketAtRisk
	default:
		return BucketCritical
	}
}

// Counts tallies buckets, eg. for a district summary.
type Counts map[Bucket]int

func (c Counts) Add(b Bucket) { c[b]++ }

func (c Counts) Total() int {
	var n int
	for _, v := range c {
		n += v
	}
	return n
}
