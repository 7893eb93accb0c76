package rng

import "sync"

// Scripted replays fixed values and then falls back to a constant.
// Intended for tests.
type Scripted struct {
	mu     sync.Mutex
	floats []float64
	ints   []int
	// FloatDefault and IntDefault are returned once the scripts are exhausted.
	FloatDefault float64
	IntDefault   int
}

func NewScripted(floats []float64, ints []int) *Scripted {
	return &Scripted{floats: floats, ints: ints, FloatDefault: 0.5}
}

func (s *Scripted) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.floats) == 0 {
		return s.FloatDefault
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func (s *Scripted) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.IntDefault
	if len(s.ints) > 0 {
		v = s.ints[0]
		s.ints = s.ints[1:]
	}
	if v >= n {
		v = n - 1
	}
	if v < 0 {
		v = 0
	}
	return v
}
