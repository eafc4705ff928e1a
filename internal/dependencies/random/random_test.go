package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCryptoRandomFloat64InUnitInterval(t *testing.T) {
	r := New()
	for i := 0; i < 1000; i++ {
		v := r.Float64()
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}

type fixed float64

func (f fixed) Float64() float64 { return float64(f) }

func TestUniform(t *testing.T) {
	assert.Equal(t, 250.0, Uniform(fixed(0), 250, 300))
	assert.Equal(t, 275.0, Uniform(fixed(0.5), 250, 300))
	assert.InDelta(t, 300.0, Uniform(fixed(0.9999999), 250, 300), 0.001)
}
