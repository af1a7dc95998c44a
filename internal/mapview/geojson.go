package mapview

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// OverlayGeoJSON encodes the overlay as a FeatureCollection whose features
// carry their marker style and popup as properties, ready for L.geoJSON.
func OverlayGeoJSON(m Map) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	for _, mk := range m.Overlay.Markers {
		q := mk.Earthquake
		f := geojson.NewFeature(orb.Point{q.Lon, q.Lat})
		if q.ID != "" {
			f.ID = q.ID
		}

		var mag interface{}
		if q.HasMagnitude {
			mag = q.Magnitude
		}
		f.Properties["place"] = q.Place
		f.Properties["mag"] = mag
		f.Properties["time"] = q.Time.UnixMilli()
		f.Properties["popup"] = mk.Popup
		f.Properties["radius"] = mk.Style.Radius
		f.Properties["fillColor"] = mk.Style.FillColor
		f.Properties["color"] = mk.Style.Color
		f.Properties["weight"] = mk.Style.Weight
		f.Properties["opacity"] = mk.Style.Opacity
		f.Properties["fillOpacity"] = mk.Style.FillOpacity
		if q.URL != "" {
			f.Properties["url"] = q.URL
		}
		fc.Append(f)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode overlay: %w", err)
	}
	return data, nil
}
