// Command render fetches the USGS feed once and writes a self-contained HTML
// map page, for static hosting or offline inspection.
//
// Usage:
//
//	go run ./cmd/render -out public/index.html
//	go run ./cmd/render -file internal/adapter/usgs/testdata/all_hour.geojson \
//	  -out /tmp/quakes.html -tz America/Denver -fixed-time 2023-11-14T22:20:00Z
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata" // -tz must resolve on hosts without a zone database

	"github.com/couchcryptid/quake-map/internal/adapter/usgs"
	"github.com/couchcryptid/quake-map/internal/config"
	"github.com/couchcryptid/quake-map/internal/domain"
	"github.com/couchcryptid/quake-map/internal/feed"
	"github.com/couchcryptid/quake-map/internal/mapview"
	"github.com/couchcryptid/quake-map/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

type options struct {
	feedURL   string
	feedFile  string
	out       string
	token     string
	tz        string
	fixedTime string
	timeout   time.Duration
}

func run() error {
	_ = godotenv.Load()

	var o options
	flag.StringVar(&o.feedURL, "feed", config.DefaultFeedURL, "USGS GeoJSON feed URL")
	flag.StringVar(&o.feedFile, "file", "", "read a saved feed file instead of fetching")
	flag.StringVar(&o.out, "out", "", "output path for the HTML page")
	flag.StringVar(&o.token, "token", os.Getenv("MAPBOX_TOKEN"), "Mapbox access token for base tiles")
	flag.StringVar(&o.tz, "tz", "UTC", "IANA zone for popup timestamps")
	flag.StringVar(&o.fixedTime, "fixed-time", "", "RFC 3339 snapshot time for reproducible output")
	flag.DurationVar(&o.timeout, "timeout", 30*time.Second, "feed fetch timeout")
	flag.Parse()

	if o.out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	return render(context.Background(), o)
}

func render(ctx context.Context, o options) error {
	loc, err := time.LoadLocation(o.tz)
	if err != nil {
		return fmt.Errorf("invalid -tz: %w", err)
	}

	if o.fixedTime != "" {
		at, err := time.Parse(time.RFC3339, o.fixedTime)
		if err != nil {
			return fmt.Errorf("invalid -fixed-time: %w", err)
		}
		domain.SetClock(clockwork.NewFakeClockAt(at))
		defer domain.SetClock(nil)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()

	var fetcher feed.Fetcher = fileFetcher(o.feedFile)
	if o.feedFile == "" {
		fetcher = usgs.NewClient(o.feedURL, o.timeout, 2, metrics, logger)
	}

	r := feed.New(fetcher, nil, false, logger, metrics)
	if err := r.Refresh(ctx); err != nil {
		return err
	}
	snap := r.Snapshot(ctx)

	opts := mapview.DefaultOptions(o.token)
	opts.Location = loc

	var buf bytes.Buffer
	if err := mapview.Render(&buf, mapview.Build(snap, opts)); err != nil {
		return err
	}
	if err := writeAtomic(o.out, buf.Bytes()); err != nil {
		return err
	}

	log.Printf("wrote %d earthquakes to %s", len(snap.Earthquakes), o.out)
	if o.token == "" {
		log.Printf("warning: no Mapbox token, base tiles will not load")
	}
	return nil
}

// fileFetcher serves a saved feed document.
type fileFetcher string

func (f fileFetcher) Fetch(_ context.Context) ([]domain.Earthquake, error) {
	data, err := os.ReadFile(string(f))
	if err != nil {
		return nil, fmt.Errorf("read feed file: %w", err)
	}
	quakes, skipped, err := usgs.ParseFeed(data)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		log.Printf("skipped %d features without point geometry", skipped)
	}
	return quakes, nil
}

// writeAtomic writes to a temp file in the target directory and renames it
// into place, so readers never see a partial page.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
