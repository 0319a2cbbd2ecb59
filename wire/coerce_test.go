package wire

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoerceFloat(t *testing.T) {
	assert.Equal(t, 0.0, CoerceFloat(math.NaN()))
	assert.Equal(t, 0.0, CoerceFloat(math.Inf(1)))
	assert.Equal(t, 0.0, CoerceFloat(math.Inf(-1)))
	assert.Equal(t, -3.5, CoerceFloat(-3.5))
}

func TestCoerceInt(t *testing.T) {
	assert.Equal(t, 0, CoerceInt(math.NaN()))
	assert.Equal(t, 0, CoerceInt(math.Inf(1)))
	assert.Equal(t, 0, CoerceInt(1e12))
	assert.Equal(t, 7, CoerceInt(7.9))
	assert.Equal(t, -2, CoerceInt(-2.1))
}

func TestRound(t *testing.T) {
	assert.InDelta(t, 0.57, Round(0.57345, 2), 1e-12)
	assert.InDelta(t, 0.123, Round(0.12345, 3), 1e-12)
	assert.InDelta(t, 123457.0, Round(123456.7, 0), 1e-12)
}
