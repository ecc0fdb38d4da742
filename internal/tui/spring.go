// SPDX-License-Identifier: MIT
package tui

import "github.com/charmbracelet/harmonica"

// springField eases each column toward its target with its own velocity.
type springField struct {
	spring harmonica.Spring
	pos    []float64
	vel    []float64
}

func newSpringField(fps int, frequency, damping float64) springField {
	return springField{spring: harmonica.NewSpring(harmonica.FPS(fps), frequency, damping)}
}

func (s *springField) resize(n int) {
	if len(s.pos) == n {
		return
	}
	s.pos = make([]float64, n)
	s.vel = make([]float64, n)
}

// apply steps every column toward targets in place.
func (s *springField) apply(targets []float64) {
	s.resize(len(targets))
	for i, target := range targets {
		p, v := s.spring.Update(s.pos[i], s.vel[i], target)
		s.pos[i] = p
		s.vel[i] = v
		targets[i] = clamp01(p)
	}
}
