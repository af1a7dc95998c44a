package usgs

import (
	"fmt"
	"math"

	"github.com/couchcryptid/quake-map/internal/domain"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ParseFeed decodes a USGS GeoJSON FeatureCollection. It returns the
// earthquakes in feed order and the number of features skipped for lacking
// a point geometry. Only a malformed document is an error; odd property
// values degrade to zero values.
func ParseFeed(data []byte) ([]domain.Earthquake, int, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, 0, fmt.Errorf("parse feed: %w", err)
	}

	quakes := make([]domain.Earthquake, 0, len(fc.Features))
	skipped := 0
	for _, f := range fc.Features {
		q, ok := toEarthquake(f)
		if !ok {
			skipped++
			continue
		}
		quakes = append(quakes, q)
	}
	return quakes, skipped, nil
}

func toEarthquake(f *geojson.Feature) (domain.Earthquake, bool) {
	if f == nil {
		return domain.Earthquake{}, false
	}
	pt, ok := f.Geometry.(orb.Point)
	if !ok {
		return domain.Earthquake{}, false
	}

	q := domain.Earthquake{
		ID:            featureID(f),
		Place:         stringProp(f.Properties, "place"),
		MagnitudeType: stringProp(f.Properties, "magType"),
		URL:           stringProp(f.Properties, "url"),
		Lon:           pt.Lon(),
		Lat:           pt.Lat(),
	}
	if mag, ok := f.Properties["mag"].(float64); ok && !math.IsNaN(mag) {
		q.Magnitude = mag
		q.HasMagnitude = true
	}
	if ms, ok := f.Properties["time"].(float64); ok {
		q.Time = domain.EventTimeFromMillis(int64(ms))
	}
	return q, true
}

func featureID(f *geojson.Feature) string {
	switch id := f.ID.(type) {
	case string:
		return id
	case float64:
		return fmt.Sprintf("%.0f", id)
	}
	if code := stringProp(f.Properties, "code"); code != "" {
		return stringProp(f.Properties, "net") + code
	}
	return ""
}

func stringProp(p geojson.Properties, key string) string {
	s, _ := p[key].(string)
	return s
}
