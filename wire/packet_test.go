package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestClassifyPriority(t *testing.T) {
	// overheating wins regardless of the wing flap state
	assert.Equal(t, PriorityCritical, ClassifyPriority(125, false))
	assert.Equal(t, PriorityCritical, ClassifyPriority(125, true))
	assert.Equal(t, PriorityHigh, ClassifyPriority(120, false))
	assert.Equal(t, PriorityHigh, ClassifyPriority(90, true))
	assert.Equal(t, PriorityHigh, ClassifyPriority(90, false))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	pkt := &TelemetryPacket{
		TimestampMs: 1700000000123,
		ID:          7,
		Priority:    PriorityCritical,

		SpeedKmh:        312,
		ThrottlePercent: 0.57345, // 57.345% as a fraction
		BrakePercent:    1.0,
		SteeringAngle:   -0.12345,
		Gear:            6,
		EngineRPM:       11250,
		DRSActive:       true,

		OilPressureBar: 5.25,
		OilTempC:       104,
		WaterTempC:     125,

		TyrePressurePsi:  [4]float64{23.0, 23.0, 21.0, 21.0},
		TyreTempSurfaceC: [4]int{101, 101, 96, 96},

		ERSStoreJ:       2500000.4,
		MGUKPowerW:      96000.6,
		FuelFlowRateKgH: 88.5,
	}

	b, err := pkt.Encode()
	require.NoError(t, err)

	got, err := Decode(b)
	require.NoError(t, err)

	assert.Equal(t, pkt.TimestampMs, got.TimestampMs)
	assert.Equal(t, pkt.ID, got.ID)
	assert.Equal(t, PriorityCritical, got.Priority)
	assert.Equal(t, 312, got.SpeedKmh)
	assert.InDelta(t, 0.57, got.ThrottlePercent, 1e-9)
	assert.InDelta(t, 1.0, got.BrakePercent, 1e-9)
	assert.InDelta(t, -0.123, got.SteeringAngle, 1e-9)
	assert.Equal(t, 6, got.Gear)
	assert.Equal(t, 11250, got.EngineRPM)
	assert.True(t, got.DRSActive)
	assert.InDelta(t, 5.3, got.OilPressureBar, 1e-9)
	assert.Equal(t, 104, got.OilTempC)
	assert.Equal(t, 125, got.WaterTempC)
	assert.Equal(t, pkt.TyrePressurePsi, got.TyrePressurePsi)
	assert.Equal(t, pkt.TyreTempSurfaceC, got.TyreTempSurfaceC)
	assert.InDelta(t, 2500000, got.ERSStoreJ, 1e-9)
	assert.InDelta(t, 96001, got.MGUKPowerW, 1e-9)
	assert.InDelta(t, 88.5, got.FuelFlowRateKgH, 1e-9)
}

func TestDecodeMissingPriorityDefaultsHigh(t *testing.T) {
	b, err := msgpack.Marshal(map[string]interface{}{
		"t":   int64(1),
		"id":  int64(9),
		"spd": 100,
	})
	require.NoError(t, err)

	got, err := Decode(b)
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, got.Priority)
	assert.Equal(t, int64(9), got.ID)
	assert.Equal(t, 100, got.SpeedKmh)
}

func TestDecodeMissingFieldsZero(t *testing.T) {
	b, err := msgpack.Marshal(map[string]interface{}{})
	require.NoError(t, err)

	got, err := Decode(b)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.ID)
	assert.Equal(t, 0.0, got.ThrottlePercent)
	assert.Equal(t, [4]float64{}, got.TyrePressurePsi)
	assert.Equal(t, PriorityHigh, got.Priority)
}

func TestDecodeGarbage(t *testing.T) {
	_, err := Decode([]byte{0xc1, 0xff, 0x00})
	assert.Error(t, err)
}

func TestEncodedPacketFitsDatagram(t *testing.T) {
	pkt := &TelemetryPacket{ID: 1, Priority: PriorityHigh}
	b, err := pkt.Encode()
	require.NoError(t, err)
	assert.Less(t, len(b), 512)
}
