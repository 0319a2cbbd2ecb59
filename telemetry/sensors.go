package telemetry

import "math"

// Sensors holds the secondary channels derived from the primary telemetry.
// The formulas are deterministic so a replayed session always produces the
// same packet stream.
type Sensors struct {
	OilPressureBar float64
	OilTempC       int
	WaterTempC     int
	ExhaustTempC   int

	ERSStoreJ  float64
	MGUKPowerW float64

	FuelFlowKgH float64

	TyreSurfaceC [4]int // FL, FR, RL, RR
	TyreCoreC    [4]int
}

// SimulateSensors derives secondary sensor values from one uniform sample.
// throttlePct is the raw 0-100 channel value; seq drives the slow ERS
// charge/discharge cycle.
func SimulateSensors(speed, throttlePct, brake, rpm float64, drsActive bool, seq int64) Sensors {
	throttle := throttlePct / 100.0

	s := Sensors{
		OilPressureBar: 4.0 + (rpm/15000)*2.0,
		OilTempC:       int(90 + throttle*20),
		WaterTempC:     int(85 + throttle*25),
		ExhaustTempC:   int(600 + throttle*300),
		ERSStoreJ:      4000000 * (0.5 + 0.5*math.Sin(float64(seq)/100)),
		FuelFlowKgH:    throttle * 100,
	}
	if drsActive {
		s.MGUKPowerW = throttle * 120000
	}

	speedFactor := 0.0
	if speed > 0 {
		speedFactor = speed / 350
	}
	const baseTyreTemp = 80
	front := int(baseTyreTemp + speedFactor*20 + brake*30)
	rear := int(baseTyreTemp + speedFactor*15)
	s.TyreSurfaceC = [4]int{front, front, rear, rear}
	for i, t := range s.TyreSurfaceC {
		s.TyreCoreC[i] = t + 5
	}
	return s
}
