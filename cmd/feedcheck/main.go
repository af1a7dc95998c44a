// Command feedcheck inspects a USGS GeoJSON summary feed and reports what
// the map would show: per-bucket counts, earthquakes without a magnitude,
// and features skipped for lacking point geometry. It also runs integrity
// checks over the parsed earthquakes and exits non-zero when the feed cannot
// be parsed or a check fails.
//
// Usage:
//
//	go run ./cmd/feedcheck
//	go run ./cmd/feedcheck -feed https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/all_day.geojson
//	go run ./cmd/feedcheck -file internal/adapter/usgs/testdata/all_hour.geojson
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/couchcryptid/quake-map/internal/adapter/usgs"
	"github.com/couchcryptid/quake-map/internal/config"
	"github.com/couchcryptid/quake-map/internal/domain"
)

// phase tracks pass/fail for a check.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	feedURL := flag.String("feed", config.DefaultFeedURL, "USGS GeoJSON feed URL")
	feedFile := flag.String("file", "", "read a saved feed file instead of fetching")
	timeout := flag.Duration("timeout", 30*time.Second, "feed fetch timeout")
	flag.Parse()

	data, err := load(context.Background(), *feedURL, *feedFile, *timeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}
	if code := run(os.Stdout, data); code != 0 {
		os.Exit(code)
	}
}

// load reads the raw feed document. Fetching goes straight over HTTP so
// that the bytes checked are exactly what the server returned.
func load(ctx context.Context, feedURL, feedFile string, timeout time.Duration) ([]byte, error) {
	if feedFile != "" {
		data, err := os.ReadFile(feedFile)
		if err != nil {
			return nil, fmt.Errorf("read feed file: %w", err)
		}
		return data, nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/geo+json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch feed: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func run(w io.Writer, data []byte) int {
	fmt.Fprintln(w, "=== USGS Feed Check ===")
	fmt.Fprintln(w)

	quakes, skipped, err := usgs.ParseFeed(data)
	if err != nil {
		fmt.Fprintf(w, "FATAL: %v\n", err)
		return 1
	}

	phases := []*phase{
		checkIDs(quakes),
		checkCoordinates(quakes),
		checkEventTimes(quakes),
	}

	allPassed := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = fmt.Sprintf("FAIL (%d errors)", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-32s %s\n", p.name, status)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Earthquakes: %d mapped, %d skipped (no point geometry)\n", len(quakes), skipped)
	writeBuckets(w, quakes)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll checks passed.")
		return 0
	}
	fmt.Fprintln(w, "\nFeed check FAILED.")
	return 1
}

// writeBuckets prints counts per magnitude bucket, ascending, followed by the
// number of earthquakes styled as the lowest bucket for lack of a magnitude.
func writeBuckets(w io.Writer, quakes []domain.Earthquake) {
	counts := make(map[string]int)
	missing := 0
	for _, q := range quakes {
		counts[q.Bucket().Label]++
		if !q.HasMagnitude {
			missing++
		}
	}

	buckets := domain.Buckets()
	fmt.Fprintln(w, "Magnitude buckets:")
	for i := len(buckets) - 1; i >= 0; i-- {
		b := buckets[i]
		fmt.Fprintf(w, "  %-4s %-13s %d\n", b.Label, b.Name, counts[b.Label])
	}
	fmt.Fprintf(w, "Missing magnitude: %d\n", missing)
}

func checkIDs(quakes []domain.Earthquake) *phase {
	p := &phase{name: "Earthquake IDs present and unique"}
	seen := make(map[string]int, len(quakes))
	for i, q := range quakes {
		if q.ID == "" {
			p.errorf("earthquake %d (%q): no id", i, q.Place)
			continue
		}
		if first, dup := seen[q.ID]; dup {
			p.errorf("id %s: duplicated at %d and %d", q.ID, first, i)
			continue
		}
		seen[q.ID] = i
	}
	return p
}

func checkCoordinates(quakes []domain.Earthquake) *phase {
	p := &phase{name: "Coordinates in range"}
	for _, q := range quakes {
		if q.Lat < -90 || q.Lat > 90 {
			p.errorf("id %s: latitude %v out of range", q.ID, q.Lat)
		}
		if q.Lon < -180 || q.Lon > 180 {
			p.errorf("id %s: longitude %v out of range", q.ID, q.Lon)
		}
	}
	return p
}

func checkEventTimes(quakes []domain.Earthquake) *phase {
	p := &phase{name: "Event times present"}
	for _, q := range quakes {
		if q.Time.IsZero() {
			p.errorf("id %s: no event time", q.ID)
		}
	}
	return p
}

