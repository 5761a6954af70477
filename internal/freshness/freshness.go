// Package freshness classifies donations into age buckets. The classification
// depends only on the creation timestamp and the supplied clock reading, never
// on the freshness value the donor declared.
package freshness

import "time"

// ActiveWindow is the retention horizon: donations older than this are
// suppressed from reads and eventually deleted.
const ActiveWindow = 24 * time.Hour

// Freshness buckets, ordered from newest to oldest.
const (
	Bucket1to3    = "1-3 hr"
	Bucket3to6    = "3-6 hr"
	Bucket6to12   = "6-12 hr"
	Bucket12Plus  = "12+ hr"
	BucketExpired = "expired"
)

// Classify maps a donation's age at the given instant to its bucket.
func Classify(createdAt, now time.Time) string {
	age := now.Sub(createdAt)
	switch {
	case age < 3*time.Hour:
		return Bucket1to3
	case age < 6*time.Hour:
		return Bucket3to6
	case age < 12*time.Hour:
		return Bucket6to12
	case age < ActiveWindow:
		return Bucket12Plus
	default:
		return BucketExpired
	}
}
