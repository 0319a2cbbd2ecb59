package wire

import (
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// The wire format is a compact msgpack map with short keys, one packet per
// datagram. Field precision is reduced on encode so a packet stays well
// within a single UDP payload:
//
//	thr, brk, fuel  2 decimals
//	str             3 decimals
//	oilp, tp        1 decimal
//	ers, mguk       nearest integer

// Encode serializes the packet to wire bytes.
func (p *TelemetryPacket) Encode() ([]byte, error) {
	tp := make([]float64, 4)
	for i, v := range p.TyrePressurePsi {
		tp[i] = Round(CoerceFloat(v), 1)
	}
	tt := make([]int, 4)
	for i, v := range p.TyreTempSurfaceC {
		tt[i] = v
	}
	data := map[string]interface{}{
		"t":    p.TimestampMs,
		"id":   p.ID,
		"p":    int(p.Priority),
		"spd":  p.SpeedKmh,
		"thr":  Round(CoerceFloat(p.ThrottlePercent), 2),
		"brk":  Round(CoerceFloat(p.BrakePercent), 2),
		"str":  Round(CoerceFloat(p.SteeringAngle), 3),
		"g":    p.Gear,
		"rpm":  p.EngineRPM,
		"drs":  p.DRSActive,
		"oilp": Round(CoerceFloat(p.OilPressureBar), 1),
		"oilt": p.OilTempC,
		"h2ot": p.WaterTempC,
		"tp":   tp,
		"tt":   tt,
		"ers":  Round(CoerceFloat(p.ERSStoreJ), 0),
		"mguk": Round(CoerceFloat(p.MGUKPowerW), 0),
		"fuel": Round(CoerceFloat(p.FuelFlowRateKgH), 2),
	}
	b, err := msgpack.Marshal(data)
	if err != nil {
		return nil, errors.Wrap(err, "unable to encode telemetry packet")
	}
	return b, nil
}

// Decode parses wire bytes back into a packet. Missing numeric fields
// decode to zero; a missing priority field defaults to high.
func Decode(b []byte) (*TelemetryPacket, error) {
	var raw map[string]interface{}
	if err := msgpack.Unmarshal(b, &raw); err != nil {
		return nil, errors.Wrap(err, "unable to decode telemetry packet")
	}

	p := &TelemetryPacket{
		TimestampMs:     int64Field(raw, "t"),
		ID:              int64Field(raw, "id"),
		Priority:        PriorityHigh,
		SpeedKmh:        intField(raw, "spd"),
		ThrottlePercent: floatField(raw, "thr"),
		BrakePercent:    floatField(raw, "brk"),
		SteeringAngle:   floatField(raw, "str"),
		Gear:            intField(raw, "g"),
		EngineRPM:       intField(raw, "rpm"),
		DRSActive:       boolField(raw, "drs"),
		OilPressureBar:  floatField(raw, "oilp"),
		OilTempC:        intField(raw, "oilt"),
		WaterTempC:      intField(raw, "h2ot"),
		ERSStoreJ:       floatField(raw, "ers"),
		MGUKPowerW:      floatField(raw, "mguk"),
		FuelFlowRateKgH: floatField(raw, "fuel"),
	}
	if v, ok := raw["p"]; ok {
		p.Priority = Priority(CoerceInt(toFloat(v)))
	}
	for i, v := range sliceField(raw, "tp", 4) {
		p.TyrePressurePsi[i] = v
	}
	for i, v := range sliceField(raw, "tt", 4) {
		p.TyreTempSurfaceC[i] = CoerceInt(v)
	}
	return p, nil
}

// toFloat converts the numeric types msgpack may produce. Unconvertible
// values coerce to zero.
func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	}
	return 0
}

func floatField(m map[string]interface{}, key string) float64 {
	v, ok := m[key]
	if !ok {
		return 0
	}
	return CoerceFloat(toFloat(v))
}

func intField(m map[string]interface{}, key string) int {
	return CoerceInt(floatField(m, key))
}

func int64Field(m map[string]interface{}, key string) int64 {
	return int64(floatField(m, key))
}

func boolField(m map[string]interface{}, key string) bool {
	v, ok := m[key]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

func sliceField(m map[string]interface{}, key string, max int) []float64 {
	v, ok := m[key]
	if !ok {
		return nil
	}
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	if len(items) > max {
		items = items[:max]
	}
	out := make([]float64, len(items))
	for i, item := range items {
		out[i] = toFloat(item)
	}
	return out
}
