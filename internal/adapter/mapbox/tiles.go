package mapbox

const (
	// TileURLTemplate is the Leaflet URL template for Mapbox static style tiles.
	TileURLTemplate = "https://api.mapbox.com/styles/v1/{id}/tiles/{z}/{x}/{y}?access_token={accessToken}"

	// Attribution is required by the Mapbox and OpenStreetMap terms of use.
	Attribution = `Map data &copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors, ` +
		`Imagery &copy; <a href="https://www.mapbox.com/">Mapbox</a>`

	StreetsStyle = "mapbox/streets-v11"
	DarkStyle    = "mapbox/dark-v10"

	MaxZoom = 18
)

// TileLayer describes one base layer in the form Leaflet's L.tileLayer expects.
type TileLayer struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	StyleID     string `json:"id"`
	AccessToken string `json:"accessToken"`
	Attribution string `json:"attribution"`
	MaxZoom     int    `json:"maxZoom"`
	TileSize    int    `json:"tileSize"`
	ZoomOffset  int    `json:"zoomOffset"`
	Default     bool   `json:"default"`
}

// BaseLayers returns the two selectable base maps. "Street Map" is shown on load.
func BaseLayers(token string) []TileLayer {
	return []TileLayer{
		newLayer("Street Map", StreetsStyle, token, true),
		newLayer("Dark Map", DarkStyle, token, false),
	}
}

func newLayer(name, style, token string, def bool) TileLayer {
	return TileLayer{
		Name:        name,
		URL:         TileURLTemplate,
		StyleID:     style,
		AccessToken: token,
		Attribution: Attribution,
		MaxZoom:     MaxZoom,
		TileSize:    512,
		ZoomOffset:  -1,
		Default:     def,
	}
}
