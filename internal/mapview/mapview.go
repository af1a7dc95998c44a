// Package mapview assembles the earthquake map: base tiles, the styled
// earthquake overlay, the layer control and the magnitude legend.
package mapview

import (
	"time"

	"github.com/couchcryptid/quake-map/internal/adapter/mapbox"
	"github.com/couchcryptid/quake-map/internal/domain"
	"github.com/couchcryptid/quake-map/internal/feed"
)

const (
	// OverlayName labels the earthquake layer in the layer control.
	OverlayName = "Earthquakes"
	// LegendPosition is the Leaflet control corner the legend is drawn in.
	LegendPosition = "bottomright"

	// DefaultCenterLat and DefaultCenterLon center the map on the contiguous United States.
	DefaultCenterLat = 37.09
	DefaultCenterLon = -95.71
	// DefaultZoom is the initial Leaflet zoom level.
	DefaultZoom = 5
)

// Options carries the deployment-specific parts of the map.
type Options struct {
	MapboxToken string
	CenterLat   float64
	CenterLon   float64
	Zoom        int
	// Location is the zone popup timestamps are shown in. Nil means UTC.
	Location *time.Location
}

// DefaultOptions centers the map on the contiguous United States.
func DefaultOptions(token string) Options {
	return Options{
		MapboxToken: token,
		CenterLat:   DefaultCenterLat,
		CenterLon:   DefaultCenterLon,
		Zoom:        DefaultZoom,
		Location:    time.UTC,
	}
}

// MarkerStyle holds the Leaflet circle marker path options.
type MarkerStyle struct {
	Radius      float64 `json:"radius"`
	FillColor   string  `json:"fillColor"`
	Color       string  `json:"color"`
	Weight      int     `json:"weight"`
	Opacity     float64 `json:"opacity"`
	FillOpacity float64 `json:"fillOpacity"`
}

// Marker is one styled earthquake.
type Marker struct {
	Earthquake domain.Earthquake
	Style      MarkerStyle
	Popup      string
}

// Overlay is the named earthquake layer.
type Overlay struct {
	Name    string
	Markers []Marker
}

// LayerControl configures the Leaflet layers control.
type LayerControl struct {
	Collapsed bool
}

// Legend is the magnitude key drawn on the map.
type Legend struct {
	Position string
	Title    string
	Entries  []domain.LegendEntry
}

// Map is everything needed to draw the page.
type Map struct {
	CenterLat    float64
	CenterLon    float64
	Zoom         int
	BaseLayers   []mapbox.TileLayer
	Overlay      Overlay
	LayerControl LayerControl
	Legend       Legend
	FetchedAt    time.Time
	// Updated is FetchedAt as shown under the legend, in the display zone.
	// Empty when no fetch has succeeded.
	Updated string
	// Status is a user-facing notice, set when the latest feed fetch failed.
	Status string
}

// StyleFor returns the circle marker style for an earthquake.
func StyleFor(q domain.Earthquake) MarkerStyle {
	b := q.Bucket()
	return MarkerStyle{
		Radius:      b.Radius,
		FillColor:   b.Color,
		Color:       "white",
		Weight:      2,
		Opacity:     1,
		FillOpacity: 0.8,
	}
}

// Build assembles a Map from a feed snapshot.
func Build(snap feed.Snapshot, opts Options) Map {
	markers := make([]Marker, 0, len(snap.Earthquakes))
	for _, q := range snap.Earthquakes {
		markers = append(markers, Marker{
			Earthquake: q,
			Style:      StyleFor(q),
			Popup:      domain.Popup(q, opts.Location),
		})
	}

	m := Map{
		CenterLat:    opts.CenterLat,
		CenterLon:    opts.CenterLon,
		Zoom:         opts.Zoom,
		BaseLayers:   mapbox.BaseLayers(opts.MapboxToken),
		Overlay:      Overlay{Name: OverlayName, Markers: markers},
		LayerControl: LayerControl{Collapsed: false},
		Legend: Legend{
			Position: LegendPosition,
			Title:    domain.LegendTitle,
			Entries:  domain.Legend(),
		},
		FetchedAt: snap.FetchedAt,
		Updated:   updatedLine(snap.FetchedAt, opts.Location),
	}
	if snap.Err != nil {
		m.Status = statusMessage(snap)
	}
	return m
}

func updatedLine(fetchedAt time.Time, loc *time.Location) string {
	if fetchedAt.IsZero() {
		return ""
	}
	if loc == nil {
		loc = time.UTC
	}
	return "Updated " + fetchedAt.In(loc).Format(domain.PopupTimeLayout)
}

func statusMessage(snap feed.Snapshot) string {
	if snap.FetchedAt.IsZero() {
		return "Earthquake data is unavailable right now. Base maps are still shown."
	}
	return "Earthquake data could not be refreshed. Showing data from " +
		snap.FetchedAt.UTC().Format(time.RFC1123) + "."
}
