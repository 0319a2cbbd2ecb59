package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimulateSensorsDeterministic(t *testing.T) {
	a := SimulateSensors(280, 90, 0.2, 11000, true, 42)
	b := SimulateSensors(280, 90, 0.2, 11000, true, 42)
	assert.Equal(t, a, b)
}

func TestSimulateSensorsFormulas(t *testing.T) {
	s := SimulateSensors(0, 100, 0, 15000, false, 0)

	assert.InDelta(t, 6.0, s.OilPressureBar, 1e-9)
	assert.Equal(t, 110, s.OilTempC)
	assert.Equal(t, 110, s.WaterTempC)
	assert.Equal(t, 900, s.ExhaustTempC)
	assert.InDelta(t, 100.0, s.FuelFlowKgH, 1e-9)
	// ERS cycle starts at half charge
	assert.InDelta(t, 2000000, s.ERSStoreJ, 1)
}

func TestSimulateSensorsMGUKRequiresDRS(t *testing.T) {
	closed := SimulateSensors(300, 80, 0, 10000, false, 0)
	assert.Equal(t, 0.0, closed.MGUKPowerW)

	open := SimulateSensors(300, 80, 0, 10000, true, 0)
	assert.InDelta(t, 96000.0, open.MGUKPowerW, 1e-9)
}

func TestSimulateSensorsTyreTemps(t *testing.T) {
	s := SimulateSensors(350, 0, 1.0, 8000, false, 0)

	// fronts pick up the braking load, rears only the speed factor
	assert.Equal(t, 130, s.TyreSurfaceC[0])
	assert.Equal(t, s.TyreSurfaceC[0], s.TyreSurfaceC[1])
	assert.Equal(t, 95, s.TyreSurfaceC[2])
	for i := range s.TyreSurfaceC {
		assert.Equal(t, s.TyreSurfaceC[i]+5, s.TyreCoreC[i])
	}
}
