// SPDX-License-Identifier: MIT
package dsp

import (
	"math"
	"math/cmplx"
	"testing"
)

func TestMagnitudeSquaredMatchesComplexResponse(t *testing.T) {
	s := DefaultSettings()
	s.PeakFreq = 2500
	s.PeakGainDB = -12
	s.PeakQ = 4

	sets := []Coefficients{
		MakePeakFilter(s, testSampleRate),
		designHighpass(300, 0.707, testSampleRate),
		designLowpass(8000, 1.31, testSampleRate),
		Identity(),
	}

	for _, c := range sets {
		for _, f := range []float64{20, 100, 440, 1000, 5000, 12000, 20000} {
			closed := c.MagnitudeSquared(f, testSampleRate)
			direct := cmplx.Abs(c.Response(f, testSampleRate))
			if math.Abs(math.Sqrt(closed)-direct) > 1e-9 {
				t.Errorf("coeffs %+v at %g Hz: closed form %g vs direct %g",
					c, f, math.Sqrt(closed), direct)
			}
		}
	}
}

func TestIdentityResponseIsUnity(t *testing.T) {
	c := Identity()
	for _, f := range []float64{20, 1000, 20000} {
		if got := c.MagnitudeDB(f, testSampleRate); math.Abs(got) > 1e-12 {
			t.Errorf("identity at %g Hz = %g dB, want 0", f, got)
		}
	}
}
