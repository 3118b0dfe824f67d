package evo

import "math"

// scriptedSource replays fixed draws, cycling when exhausted. Intn clamps to
// n-1 so a script can ask for "the largest draw" with a big value.
type scriptedSource struct {
	floats []float64
	ints   []int
	fi, ii int
}

func (s *scriptedSource) Float64() float64 {
	if len(s.floats) == 0 {
		return 0
	}
	v := s.floats[s.fi%len(s.floats)]
	s.fi++
	return v
}

func (s *scriptedSource) Intn(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[s.ii%len(s.ints)]
	s.ii++
	if v >= n {
		return n - 1
	}
	return v
}

// maxSource always returns the largest possible draw.
type maxSource struct{}

func (maxSource) Float64() float64 { return math.Nextafter(1, 0) }
func (maxSource) Intn(n int) int   { return n - 1 }
