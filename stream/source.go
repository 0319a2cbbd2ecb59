package stream

import (
	"math"
	"time"

	"github.com/pitwall/pitstream/telemetry"
	"github.com/pitwall/pitstream/wire"
)

// PacketSource lazily builds one wire packet per uniform sample. It is a
// single-pass, finite sequence: once exhausted it cannot be rewound without
// resampling the session again.
type PacketSource struct {
	locator *telemetry.LapLocator
	car     int

	baseTimestampMs int64
	intervalMs      float64

	times    []float64
	speed    []float64
	throttle []float64
	brake    []float64
	gear     []float64
	rpm      []float64
	drs      []float64

	seq int64
}

func NewPacketSource(series *telemetry.UniformSeries, locator *telemetry.LapLocator, car int, start time.Time) *PacketSource {
	return &PacketSource{
		locator:         locator,
		car:             car,
		baseTimestampMs: start.UnixMilli(),
		intervalMs:      series.Interval * 1000,
		times:           series.Times,
		speed:           series.Channel(telemetry.ChannelSpeed),
		throttle:        series.Channel(telemetry.ChannelThrottle),
		brake:           series.Channel(telemetry.ChannelBrake),
		gear:            series.Channel(telemetry.ChannelGear),
		rpm:             series.Channel(telemetry.ChannelRPM),
		drs:             series.Channel(telemetry.ChannelDRS),
	}
}

// Len returns the total number of packets the source will produce.
func (s *PacketSource) Len() int {
	return len(s.times)
}

// Next builds the packet for the current uniform index along with its lap
// context. ok is false once the sequence is exhausted.
func (s *PacketSource) Next() (pkt *wire.TelemetryPacket, lap telemetry.LapInfo, ok bool) {
	if s.seq >= int64(len(s.times)) {
		return nil, telemetry.LapInfo{}, false
	}
	i := int(s.seq)

	speed := channelValue(s.speed, i)
	throttlePct := channelValue(s.throttle, i)
	brake := channelValue(s.brake, i)
	rpm := channelValue(s.rpm, i)
	drsActive := channelValue(s.drs, i) > 0

	sensors := telemetry.SimulateSensors(speed, throttlePct, brake, rpm, drsActive, s.seq)
	lap = s.locator.Locate(i)

	pkt = &wire.TelemetryPacket{
		TimestampMs: s.baseTimestampMs + int64(float64(s.seq)*s.intervalMs),
		CarNumber:   s.car,
		ID:          s.seq,
		Priority:    wire.ClassifyPriority(sensors.WaterTempC, drsActive),

		SpeedKmh:        wire.CoerceInt(speed),
		ThrottlePercent: wire.CoerceFloat(throttlePct) / 100.0,
		BrakePercent:    wire.CoerceFloat(brake),
		SteeringAngle:   0,
		Gear:            wire.CoerceInt(channelValue(s.gear, i)),
		EngineRPM:       wire.CoerceInt(rpm),
		DRSActive:       drsActive,

		OilPressureBar: sensors.OilPressureBar,
		OilTempC:       sensors.OilTempC,
		WaterTempC:     sensors.WaterTempC,
		ExhaustTempC:   sensors.ExhaustTempC,

		TyrePressurePsi:  wire.DefaultTyrePressures,
		TyreTempSurfaceC: sensors.TyreSurfaceC,
		TyreTempCoreC:    sensors.TyreCoreC,

		ERSStoreJ:  sensors.ERSStoreJ,
		MGUKPowerW: sensors.MGUKPowerW,

		FuelFlowRateKgH: sensors.FuelFlowKgH,
		FuelRemainingKg: 110.0 - float64(s.seq)*0.0001,
	}

	s.seq++
	return pkt, lap, true
}

func channelValue(ch []float64, i int) float64 {
	if i >= len(ch) {
		return 0
	}
	v := ch[i]
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
