package domain

import (
	"html/template"
	"strconv"
	"time"
)

// PopupTimeLayout mirrors the browser's default Date string.
const PopupTimeLayout = "Mon Jan 02 2006 15:04:05 GMT-0700 (MST)"

// Popup builds the marker popup HTML: the place as a heading, then the
// magnitude and the event time, separated by rules. loc selects the display
// zone; nil means UTC.
func Popup(q Earthquake, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return "<h3>" + template.HTMLEscapeString(q.Place) + "</h3><hr>" +
		"<p>Magnitude: " + template.HTMLEscapeString(FormatMagnitude(q)) + "</p><hr>" +
		"<p>" + q.Time.In(loc).Format(PopupTimeLayout) + "</p>"
}

// FormatMagnitude renders the magnitude with the shortest exact decimal form,
// or "unknown" when the feed had none.
func FormatMagnitude(q Earthquake) string {
	if !q.HasMagnitude {
		return "unknown"
	}
	return strconv.FormatFloat(q.Magnitude, 'f', -1, 64)
}
