// SPDX-License-Identifier: MIT
package dsp

import "math"

// MaxCutSections is the fixed number of second-order sections in a cut
// band. Sections beyond the selected slope stay allocated but bypassed so
// the band structure never changes shape under lock-free access.
const MaxCutSections = 4

// The factory functions below are pure: same inputs, same coefficients, no
// side effects. Inputs are validated upstream by the parameter store.
// Precondition, not checked here: 0 < freq < sampleRate/2. Out-of-range
// frequencies yield unstable coefficients.

// MakePeakFilter designs the parametric peak biquad from the snapshot's
// center frequency, gain and Q (RBJ peaking-EQ design).
func MakePeakFilter(s ChainSettings, sampleRate float64) Coefficients {
	a := math.Pow(10, s.PeakGainDB/40)
	w0 := 2 * math.Pi * s.PeakFreq / sampleRate
	cosw0 := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * s.PeakQ)

	a0 := 1 + alpha/a
	return Coefficients{
		B0: (1 + alpha*a) / a0,
		B1: -2 * cosw0 / a0,
		B2: (1 - alpha*a) / a0,
		A1: -2 * cosw0 / a0,
		A2: (1 - alpha/a) / a0,
	}
}

// MakeLowCutFilter designs the low-cut (highpass) band: a Butterworth
// cascade of order 2*(slope+1) split into slope+1 second-order sections.
// The leading slope+1 array entries carry the design; the remainder are
// identity passes. Cascading the active prefix gives the combined -3 dB
// point at LowCutFreq and a roll-off of (slope+1)*12 dB/octave.
func MakeLowCutFilter(s ChainSettings, sampleRate float64) [MaxCutSections]Coefficients {
	return makeCutFilter(s.LowCutFreq, s.LowCutSlope, sampleRate, designHighpass)
}

// MakeHighCutFilter designs the high-cut (lowpass) band, mirroring
// MakeLowCutFilter.
func MakeHighCutFilter(s ChainSettings, sampleRate float64) [MaxCutSections]Coefficients {
	return makeCutFilter(s.HighCutFreq, s.HighCutSlope, sampleRate, designLowpass)
}

func makeCutFilter(freq float64, slope CutSlope, sampleRate float64,
	design func(freq, q, sampleRate float64) Coefficients) [MaxCutSections]Coefficients {

	var out [MaxCutSections]Coefficients
	for i := range out {
		out[i] = Identity()
	}

	n := slope.Sections()
	order := 2 * n
	for k := range n {
		out[k] = design(freq, butterworthQ(order, k), sampleRate)
	}
	return out
}

// butterworthQ returns the Q of the k-th second-order section of an
// order-N Butterworth filter, pairing conjugate poles at angle
// theta = pi*(2k+1)/(2N) so the cascade is maximally flat with its
// -3 dB point at the design frequency.
func butterworthQ(order, k int) float64 {
	theta := math.Pi * float64(2*k+1) / float64(2*order)
	return 1 / (2 * math.Cos(theta))
}

// designHighpass is the RBJ highpass biquad with the given Q.
func designHighpass(freq, q, sampleRate float64) Coefficients {
	w0 := 2 * math.Pi * freq / sampleRate
	cosw0 := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)

	a0 := 1 + alpha
	return Coefficients{
		B0: (1 + cosw0) / 2 / a0,
		B1: -(1 + cosw0) / a0,
		B2: (1 + cosw0) / 2 / a0,
		A1: -2 * cosw0 / a0,
		A2: (1 - alpha) / a0,
	}
}

// designLowpass is the RBJ lowpass biquad with the given Q.
func designLowpass(freq, q, sampleRate float64) Coefficients {
	w0 := 2 * math.Pi * freq / sampleRate
	cosw0 := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)

	a0 := 1 + alpha
	return Coefficients{
		B0: (1 - cosw0) / 2 / a0,
		B1: (1 - cosw0) / a0,
		B2: (1 - cosw0) / 2 / a0,
		A1: -2 * cosw0 / a0,
		A2: (1 - alpha) / a0,
	}
}
