// Package domain models USGS earthquake feed data and the magnitude styling
// used to draw it on the map.
//
// # Data Source
//
// Earthquakes come from the USGS real-time GeoJSON summary feeds, documented at
// https://earthquake.usgs.gov/earthquakes/feed/v1.0/geojson.php. The default
// feed is all_week, which covers every event recorded in the past seven days and is
// regenerated by USGS roughly every minute.
//
// # Feed Conventions
//
// Geometry:
//
//	Each feature is a GeoJSON Point with coordinates [longitude, latitude, depth_km].
//	Depth is dropped; only the epicenter is plotted.
//
// Magnitude ("mag" property):
//
//	A real number on the scale named by "magType" (ml, md, mb, mww, ...).
//	Small events are frequently negative (e.g. -0.4 ml). The field may be null for
//	events that have not been reviewed yet. Missing or non-numeric magnitudes are
//	styled with the lowest bucket.
//
// Time ("time" property):
//
//	Milliseconds since the Unix epoch, UTC. Rendered in the configured display
//	zone using the browser-style layout "Mon Jan 02 2006 15:04:05 GMT-0700 (MST)".
//
// # Magnitude Buckets
//
// Color and marker radius share six buckets. Thresholds are checked from the
// highest down and the first strict ">" match wins, so an exact boundary value
// belongs to the lower bucket:
//
//	mag > 5       #990033 dark purple    radius 40
//	4 < mag <= 5  #ff3300 red            radius 30
//	3 < mag <= 4  #cc6600 dark orange    radius 20
//	2 < mag <= 3  #ff9900 light orange   radius 15
//	1 < mag <= 2  #ffff66 light yellow   radius 10
//	mag <= 1      #99ff33 light green    radius 5
//
// The legend lists the same buckets in ascending order and colors each row with
// [Color] applied to the row's floor plus one.
package domain
