// SPDX-License-Identifier: MIT
package dsp

import "sync/atomic"

// Section is a single biquad with Direct Form II Transposed state. The
// coefficient set is held behind an atomic pointer: the audio thread loads
// it once per block, and updates replace it with a single pointer swap so a
// reader can never observe a half-written coefficient set. Delay-line state
// belongs exclusively to the processing thread.
type Section struct {
	coeffs atomic.Pointer[Coefficients]

	d0, d1 float64
}

// init must run before first use; zero-value sections carry a nil
// coefficient pointer.
func (s *Section) init() {
	c := Identity()
	s.coeffs.Store(&c)
}

// UpdateCoefficients publishes a new coefficient set. The pointed-to value
// must not be mutated after this call. A swap committed before an audio
// block begins is visible to that block; mid-block visibility is not
// guaranteed.
func (s *Section) UpdateCoefficients(c *Coefficients) {
	s.coeffs.Store(c)
}

// Coefficients returns the currently published coefficient set. The result
// is shared and read-only.
func (s *Section) Coefficients() *Coefficients {
	return s.coeffs.Load()
}

// ProcessSample filters one sample. Offline and test use; the audio path
// uses ProcessBlock.
func (s *Section) ProcessSample(x float64) float64 {
	c := s.coeffs.Load()
	y := c.B0*x + s.d0
	s.d0 = c.B1*x - c.A1*y + s.d1
	s.d1 = c.B2*x - c.A2*y
	return y
}

// ProcessBlock filters a block in-place. Zero-alloc; the coefficient
// pointer is loaded once for the whole block.
func (s *Section) ProcessBlock(buf []float32) {
	c := s.coeffs.Load()
	b0, b1, b2 := c.B0, c.B1, c.B2
	a1, a2 := c.A1, c.A2
	d0, d1 := s.d0, s.d1

	for i, x32 := range buf {
		x := float64(x32)
		y := b0*x + d0
		d0 = b1*x - a1*y + d1
		d1 = b2*x - a2*y
		buf[i] = float32(y)
	}

	s.d0, s.d1 = d0, d1
}

// Reset clears the delay line to zero.
func (s *Section) Reset() {
	s.d0 = 0
	s.d1 = 0
}
