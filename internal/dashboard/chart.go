package dashboard

import "sync"

// MaxChartPoints keeps about a minute of history at the nominal poll rate.
const MaxChartPoints = 120

// ChartSink accepts one point per successful poll.
type ChartSink interface {
	Push(powerMW, energyMWh float64)
}

// Point is a single chart sample.
type Point struct {
	PowerMW   float64
	EnergyMWh float64
}

// Series is a rolling window of chart points. The oldest point is evicted
// once the window is full.
type Series struct {
	mu     sync.Mutex
	max    int
	points []Point
}

func NewSeries(size int) *Series {
	if size <= 0 {
		size = MaxChartPoints
	}
	return &Series{max: size, points: make([]Point, 0, size)}
}

func (s *Series) Push(powerMW, energyMWh float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.points) == s.max {
		copy(s.points, s.points[1:])
		s.points = s.points[:s.max-1]
	}
	s.points = append(s.points, Point{PowerMW: powerMW, EnergyMWh: energyMWh})
}

// Points returns a copy of the window, oldest first.
func (s *Series) Points() []Point {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Point(nil), s.points...)
}
