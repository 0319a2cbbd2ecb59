package session

import (
	"math"

	"github.com/pitwall/pitstream/telemetry"
)

// Synthetic builds a deterministic in-memory recording for test mode runs:
// speed sweeps a triangle wave, rpm ramps with it, throttle and brake
// alternate, DRS opens on the fastest stretch. Useful when no real
// recording is at hand.
func Synthetic(laps int, lapSeconds float64, hz float64, car int) *Recording {
	if laps < 1 {
		laps = 1
	}
	if lapSeconds <= 0 {
		lapSeconds = 60
	}
	if hz <= 0 {
		hz = 10
	}

	perLap := int(lapSeconds * hz)
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

	for lap := 0; lap < laps; lap++ {
		start := store.Len()
		for i := 0; i < perLap; i++ {
			phase := float64(i) / float64(perLap)
			// triangle wave, 0 -> 1 -> 0 over the lap
			tri := 1 - math.Abs(2*phase-1)

			speed := 60 + tri*280
			throttle := tri * 100
			brake := 0.0
			if phase > 0.8 {
				brake = 1.0
			}
			gear := float64(1 + int(tri*7))
			rpm := 4000 + tri*8000
			drs := 0.0
			if tri > 0.9 {
				drs = 1
			}

			store.Times = append(store.Times, float64(lap)*lapSeconds+float64(i)/hz)
			store.Channels[telemetry.ChannelSpeed] = append(store.Channels[telemetry.ChannelSpeed], speed)
			store.Channels[telemetry.ChannelThrottle] = append(store.Channels[telemetry.ChannelThrottle], throttle)
			store.Channels[telemetry.ChannelBrake] = append(store.Channels[telemetry.ChannelBrake], brake)
			store.Channels[telemetry.ChannelGear] = append(store.Channels[telemetry.ChannelGear], gear)
			store.Channels[telemetry.ChannelRPM] = append(store.Channels[telemetry.ChannelRPM], rpm)
			store.Channels[telemetry.ChannelDRS] = append(store.Channels[telemetry.ChannelDRS], drs)
		}
		store.Boundaries = append(store.Boundaries, telemetry.LapBoundary{
			Start:    start,
			End:      store.Len() - 1,
			Number:   lap + 1,
			Duration: lapSeconds,
		})
	}

	return &Recording{Car: car, Store: store}
}
