package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEnergyIntegrator(t *testing.T) {
	t.Run("first sample accumulates nothing", func(t *testing.T) {
		e := NewEnergyIntegrator(UpdateInterval)

		assert.Zero(t, e.Observe(1000, time.Unix(0, 0)))

		_, ok := e.LastSampleTime()
		assert.True(t, ok)
	})

	t.Run("constant power over N polls", func(t *testing.T) {
		e := NewEnergyIntegrator(UpdateInterval)
		const polls = 8

		var got float64
		for i := 0; i < polls; i++ {
			got = e.Observe(1000, time.Unix(int64(i), 0))
		}

		want := float64(polls-1) * 1000 * 500 / 3_600_000
		assert.InDelta(t, want, got, 1e-9)
		assert.InDelta(t, want, e.Cumulative(), 1e-9)
	})

	t.Run("uses the nominal interval", func(t *testing.T) {
		e := NewEnergyIntegrator(time.Second)
		start := time.Unix(0, 0)

		e.Observe(3600, start)
		got := e.Observe(3600, start.Add(time.Hour))

		assert.InDelta(t, 1.0, got, 1e-9)
	})

	t.Run("no samples", func(t *testing.T) {
		e := NewEnergyIntegrator(UpdateInterval)

		_, ok := e.LastSampleTime()
		assert.False(t, ok)
		assert.Zero(t, e.Cumulative())
	})
}
