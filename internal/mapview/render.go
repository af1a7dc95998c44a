package mapview

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"

	"github.com/couchcryptid/quake-map/internal/adapter/mapbox"
	"github.com/couchcryptid/quake-map/internal/domain"
)

// PageTitle is the HTML document title.
const PageTitle = "Earthquakes: USGS Real-Time Feed"

//go:embed templates/map.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/map.html"))

type pageData struct {
	Title          string
	CenterLat      float64
	CenterLon      float64
	Zoom           int
	BaseLayers     []mapbox.TileLayer
	OverlayName    string
	Overlay        json.RawMessage
	Collapsed      bool
	LegendPosition string
	LegendTitle    string
	Legend         []domain.LegendEntry
	Updated        string
	Status         string
}

// Render writes the full HTML page for m. Output is buffered so a template
// failure never leaves a partial page on w.
func Render(w io.Writer, m Map) error {
	overlay, err := OverlayGeoJSON(m)
	if err != nil {
		return err
	}

	data := pageData{
		Title:          PageTitle,
		CenterLat:      m.CenterLat,
		CenterLon:      m.CenterLon,
		Zoom:           m.Zoom,
		BaseLayers:     m.BaseLayers,
		OverlayName:    m.Overlay.Name,
		Overlay:        overlay,
		Collapsed:      m.LayerControl.Collapsed,
		LegendPosition: m.Legend.Position,
		LegendTitle:    m.Legend.Title,
		Legend:         m.Legend.Entries,
		Updated:        m.Updated,
		Status:         m.Status,
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return fmt.Errorf("render map page: %w", err)
	}
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("write map page: %w", err)
	}
	return nil
}
