package domain

// Bucket is one magnitude band. A magnitude belongs to the first bucket, scanning
// from the top, whose Floor it strictly exceeds; the last bucket catches the rest.
type Bucket struct {
	Floor  float64 `json:"floor"`
	Label  string  `json:"label"`
	Name   string  `json:"name"`
	Color  string  `json:"color"`
	Radius float64 `json:"radius"`
}

// buckets is ordered from the highest floor down.
var buckets = [...]Bucket{
	{Floor: 5, Label: "5+", Name: "dark purple", Color: "#990033", Radius: 40},
	{Floor: 4, Label: "4–5", Name: "red", Color: "#ff3300", Radius: 30},
	{Floor: 3, Label: "3–4", Name: "dark orange", Color: "#cc6600", Radius: 20},
	{Floor: 2, Label: "2–3", Name: "light orange", Color: "#ff9900", Radius: 15},
	{Floor: 1, Label: "1–2", Name: "light yellow", Color: "#ffff66", Radius: 10},
	{Floor: 0, Label: "0–1", Name: "light green", Color: "#99ff33", Radius: 5},
}

// BucketFor returns the bucket for mag. NaN compares false against every
// floor and so falls through to the lowest bucket, as do zero and negatives.
func BucketFor(mag float64) Bucket {
	for _, b := range buckets[:len(buckets)-1] {
		if mag > b.Floor {
			return b
		}
	}
	return buckets[len(buckets)-1]
}

// Color returns the marker fill color for mag.
func Color(mag float64) string {
	return BucketFor(mag).Color
}

// Radius returns the marker radius in pixels for mag.
func Radius(mag float64) float64 {
	return BucketFor(mag).Radius
}

// LegendTitle heads the legend box.
const LegendTitle = "Magnitudes:"

// LegendEntry is one legend row.
type LegendEntry struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// Legend returns the six legend rows in ascending order. Each row's color is
// Color(floor+1); because thresholds are strict, that is the bucket the label names.
func Legend() []LegendEntry {
	entries := make([]LegendEntry, 0, len(buckets))
	for i := len(buckets) - 1; i >= 0; i-- {
		b := buckets[i]
		entries = append(entries, LegendEntry{
			Label: b.Label,
			Color: Color(b.Floor + 1),
		})
	}
	return entries
}

// Buckets returns a copy of the bucket table, highest floor first.
func Buckets() []Bucket {
	out := make([]Bucket, len(buckets))
	copy(out, buckets[:])
	return out
}
