package domain

import (
	"math"
	"time"
)

// Earthquake is one feature from the USGS feed, reduced to what the map needs.
type Earthquake struct {
	ID            string    `json:"id"`
	Place         string    `json:"place"`
	Magnitude     float64   `json:"mag"`
	HasMagnitude  bool      `json:"has_mag"`
	MagnitudeType string    `json:"mag_type,omitempty"`
	Time          time.Time `json:"time"`
	URL           string    `json:"url,omitempty"`
	Lat           float64   `json:"lat"`
	Lon           float64   `json:"lon"`
}

// StyleMagnitude returns the value used for bucket lookup. Earthquakes without
// a usable magnitude yield NaN, which fails every threshold and lands in the
// lowest bucket.
func (q Earthquake) StyleMagnitude() float64 {
	if !q.HasMagnitude {
		return math.NaN()
	}
	return q.Magnitude
}

// Bucket returns the styling bucket for the earthquake.
func (q Earthquake) Bucket() Bucket {
	return BucketFor(q.StyleMagnitude())
}

// EventTimeFromMillis converts the feed's epoch-millisecond timestamp to UTC.
func EventTimeFromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
