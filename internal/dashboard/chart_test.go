package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeries(t *testing.T) {
	t.Run("evicts oldest when full", func(t *testing.T) {
		s := NewSeries(3)
		for i := 1; i <= 5; i++ {
			s.Push(float64(i), float64(i*10))
		}

		points := s.Points()
		require.Len(t, points, 3)
		assert.Equal(t, []Point{{3, 30}, {4, 40}, {5, 50}}, points)
	})

	t.Run("default size", func(t *testing.T) {
		s := NewSeries(0)
		for i := 0; i < MaxChartPoints+10; i++ {
			s.Push(float64(i), 0)
		}

		points := s.Points()
		require.Len(t, points, MaxChartPoints)
		assert.Equal(t, float64(10), points[0].PowerMW)
	})

	t.Run("points is a copy", func(t *testing.T) {
		s := NewSeries(2)
		s.Push(1, 1)

		points := s.Points()
		points[0].PowerMW = 99

		assert.Equal(t, float64(1), s.Points()[0].PowerMW)
	})
}
