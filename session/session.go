// Package session loads recorded telemetry sessions from disk and exposes
// them as a SampleStore ready for resampling. A recording is a directory
// with a session.toml manifest and a CSV sample file; per-lap time offsets
// are made cumulative across laps at load time.
package session

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/pitwall/pitstream/telemetry"
)

// ErrNoSamples indicates the recording holds no telemetry at all. This is
// fatal to session startup; streaming never begins.
var ErrNoSamples = errors.New("recording contains no samples")

const manifestName = "session.toml"

type Manifest struct {
	Car     int
	Samples string
	Laps    []LapMeta
}

type LapMeta struct {
	Number   int
	Duration float64
}

// Recording is one loaded session for one car.
type Recording struct {
	Car   int
	Store *telemetry.SampleStore
}

// Load reads the manifest and sample file from dir.
func Load(dir string) (*Recording, error) {
	manifest := Manifest{}
	if _, err := toml.DecodeFile(filepath.Join(dir, manifestName), &manifest); err != nil {
		return nil, errors.Wrapf(err, "unable to load manifest from %s", dir)
	}
	if manifest.Samples == "" {
		manifest.Samples = "samples.csv"
	}

	file, err := os.Open(filepath.Join(dir, manifest.Samples))
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open sample file %s", manifest.Samples)
	}
	defer file.Close()

	rec, err := loadSamples(file, &manifest)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"car":     rec.Car,
		"laps":    len(rec.Store.Boundaries),
		"samples": rec.Store.Len(),
	}).Info("loaded session recording")
	return rec, nil
}

// loadSamples parses CSV rows of the form
// lap,time,speed,throttle,brake,gear,rpm,drs. Rows are grouped by lap in
// recorded order; time offsets restart per lap and are shifted to be
// cumulative. Missing or invalid cells coerce to zero.
func loadSamples(r io.Reader, manifest *Manifest) (*Recording, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "unable to parse sample csv")
	}
	if len(rows) > 0 && strings.EqualFold(rows[0][0], "lap") {
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return nil, ErrNoSamples
	}

	durations := make(map[int]float64, len(manifest.Laps))
	for _, lap := range manifest.Laps {
		durations[lap.Number] = lap.Duration
	}

	store := &telemetry.SampleStore{
		Channels: map[string][]float64{
			telemetry.ChannelSpeed:    nil,
			telemetry.ChannelThrottle: nil,
			telemetry.ChannelBrake:    nil,
			telemetry.ChannelGear:     nil,
			telemetry.ChannelRPM:      nil,
			telemetry.ChannelDRS:      nil,
		},
	}

	currentLap := -1
	lapStart := 0
	cumulative := 0.0
	lapLast := 0.0
	closeLap := func() {
		if currentLap < 0 {
			return
		}
		store.Boundaries = append(store.Boundaries, telemetry.LapBoundary{
			Start:    lapStart,
			End:      store.Len() - 1,
			Number:   currentLap,
			Duration: durations[currentLap],
		})
		cumulative = lapLast
	}

	for _, row := range rows {
		lap := int(cell(row, 0))
		if lap != currentLap {
			closeLap()
			currentLap = lap
			lapStart = store.Len()
		}
		lapLast = cell(row, 1) + cumulative
		store.Times = append(store.Times, lapLast)
		store.Channels[telemetry.ChannelSpeed] = append(store.Channels[telemetry.ChannelSpeed], cell(row, 2))
		store.Channels[telemetry.ChannelThrottle] = append(store.Channels[telemetry.ChannelThrottle], cell(row, 3))
		store.Channels[telemetry.ChannelBrake] = append(store.Channels[telemetry.ChannelBrake], cell(row, 4))
		store.Channels[telemetry.ChannelGear] = append(store.Channels[telemetry.ChannelGear], cell(row, 5))
		store.Channels[telemetry.ChannelRPM] = append(store.Channels[telemetry.ChannelRPM], cell(row, 6))
		store.Channels[telemetry.ChannelDRS] = append(store.Channels[telemetry.ChannelDRS], cell(row, 7))
	}
	closeLap()

	if err := store.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid recording")
	}
	return &Recording{Car: manifest.Car, Store: store}, nil
}

// cell coerces one CSV field to a float. Missing cells, empty strings and
// non-numeric text all yield zero; booleans map to 0/1.
func cell(row []string, i int) float64 {
	if i >= len(row) {
		return 0
	}
	s := strings.TrimSpace(row[i])
	if s == "" {
		return 0
	}
	switch strings.ToLower(s) {
	case "true":
		return 1
	case "false":
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
