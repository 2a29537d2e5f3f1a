// SPDX-License-Identifier: MIT
//
// Package dsp implements the three-band filter chain of the equalizer:
// biquad coefficient design, cascaded second-order sections with lock-free
// coefficient updates, and the analytic magnitude response the curve engine
// samples.
package dsp

import (
	"math"
	"math/cmplx"
)

// Coefficients holds the transfer function of a single second-order section
// (biquad) with a0 normalized to 1 and not stored.
//
// The sign convention follows Direct Form II Transposed:
//
//	y  = B0*x + d0
//	d0 = B1*x - A1*y + d1
//	d1 = B2*x - A2*y
//
// A Coefficients value published to a Section is immutable: it is shared
// read-only between the audio path and the response sampler and replaced
// wholesale, never mutated in place.
type Coefficients struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// Identity returns the unity-gain pass-through section.
func Identity() Coefficients {
	return Coefficients{B0: 1}
}

// Response computes the complex frequency response H(e^jw) at the given
// frequency (Hz) and sample rate (Hz).
func (c *Coefficients) Response(freqHz, sampleRate float64) complex128 {
	w := 2 * math.Pi * freqHz / sampleRate
	ejw := cmplx.Exp(complex(0, -w))
	ej2w := cmplx.Exp(complex(0, -2*w))

	num := complex(c.B0, 0) + complex(c.B1, 0)*ejw + complex(c.B2, 0)*ej2w
	den := complex(1, 0) + complex(c.A1, 0)*ejw + complex(c.A2, 0)*ej2w
	return num / den
}

// MagnitudeSquared returns |H(f)|^2 using a closed-form expression,
// avoiding complex exponentials on the per-pixel sampling path.
func (c *Coefficients) MagnitudeSquared(freqHz, sampleRate float64) float64 {
	cw := 2 * math.Cos(2*math.Pi*freqHz/sampleRate)
	b0, b1, b2 := c.B0, c.B1, c.B2
	a1, a2 := c.A1, c.A2

	num := (b0-b2)*(b0-b2) + b1*b1 + (b1*(b0+b2)+b0*b2*cw)*cw
	den := (1-a2)*(1-a2) + a1*a1 + (a1*(a2+1)+cw*a2)*cw
	return num / den
}

// Magnitude returns |H(f)|.
func (c *Coefficients) Magnitude(freqHz, sampleRate float64) float64 {
	return math.Sqrt(c.MagnitudeSquared(freqHz, sampleRate))
}

// MagnitudeDB returns 10*log10(|H(f)|^2).
func (c *Coefficients) MagnitudeDB(freqHz, sampleRate float64) float64 {
	return 10 * math.Log10(c.MagnitudeSquared(freqHz, sampleRate))
}
