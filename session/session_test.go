package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitwall/pitstream/telemetry"
)

func writeRecording(t *testing.T, manifest, samples string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "session.toml"), []byte(manifest), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "samples.csv"), []byte(samples), 0o644))
	return dir
}

const testManifest = `
Car = 44
Samples = "samples.csv"

[[Laps]]
Number = 1
Duration = 2.0

[[Laps]]
Number = 2
Duration = 3.0
`

const testSamples = `lap,time,speed,throttle,brake,gear,rpm,drs
1,0.0,100,50,0,3,9000,false
1,1.0,120,60,0,4,9500,false
1,2.0,140,70,0,4,10000,true
2,0.0,150,80,0.5,5,10500,true
2,1.5,160,90,1.0,5,11000,false
2,3.0,170,100,0,6,11500,false
`

func TestLoadRecording(t *testing.T) {
	dir := writeRecording(t, testManifest, testSamples)

	rec, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 44, rec.Car)

	store := rec.Store
	require.NoError(t, store.Validate())
	assert.Equal(t, 6, store.Len())

	// lap 2 times continue where lap 1 left off
	assert.Equal(t, []float64{0, 1, 2, 2, 3.5, 5}, store.Times)

	require.Len(t, store.Boundaries, 2)
	assert.Equal(t, telemetry.LapBoundary{Start: 0, End: 2, Number: 1, Duration: 2.0}, store.Boundaries[0])
	assert.Equal(t, telemetry.LapBoundary{Start: 3, End: 5, Number: 2, Duration: 3.0}, store.Boundaries[1])

	assert.Equal(t, []float64{100, 120, 140, 150, 160, 170}, store.Channel(telemetry.ChannelSpeed))
	assert.Equal(t, []float64{0, 0, 1, 1, 0, 0}, store.Channel(telemetry.ChannelDRS))
	assert.Equal(t, []float64{0, 0, 0, 0.5, 1.0, 0}, store.Channel(telemetry.ChannelBrake))
}

func TestLoadCoercesInvalidCells(t *testing.T) {
	samples := `lap,time,speed,throttle,brake,gear,rpm,drs
1,0.0,abc,,0,3,9000,maybe
1,1.0,120,60,0,4,9500,true
`
	manifest := `
Car = 1

[[Laps]]
Number = 1
Duration = 1.0
`
	dir := writeRecording(t, manifest, samples)

	rec, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 120}, rec.Store.Channel(telemetry.ChannelSpeed))
	assert.Equal(t, []float64{0, 60}, rec.Store.Channel(telemetry.ChannelThrottle))
	assert.Equal(t, []float64{0, 1}, rec.Store.Channel(telemetry.ChannelDRS))
}

func TestLoadEmptyRecording(t *testing.T) {
	dir := writeRecording(t, "Car = 1\n", "lap,time,speed,throttle,brake,gear,rpm,drs\n")

	_, err := Load(dir)
	assert.ErrorIs(t, err, ErrNoSamples)
}

func TestLoadMissingManifest(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.Error(t, err)
}

func TestSyntheticRecordingIsValid(t *testing.T) {
	rec := Synthetic(3, 30, 10, 7)

	require.NoError(t, rec.Store.Validate())
	assert.Equal(t, 7, rec.Car)
	assert.Len(t, rec.Store.Boundaries, 3)
	assert.Equal(t, 900, rec.Store.Len())

	// deterministic across runs
	again := Synthetic(3, 30, 10, 7)
	assert.Equal(t, rec.Store.Times, again.Store.Times)
	assert.Equal(t, rec.Store.Channels, again.Store.Channels)

	// resamples cleanly end to end
	series, err := telemetry.Resample(rec.Store, 100)
	require.NoError(t, err)
	assert.Greater(t, series.Len(), 0)
}
