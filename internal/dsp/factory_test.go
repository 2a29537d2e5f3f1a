// SPDX-License-Identifier: MIT
package dsp

import (
	"math"
	"testing"
)

const testSampleRate = 48000.0

func TestMakePeakFilterGainAtCenter(t *testing.T) {
	s := DefaultSettings()
	s.PeakFreq = 1000
	s.PeakGainDB = 6
	s.PeakQ = 1

	c := MakePeakFilter(s, testSampleRate)

	if got := c.MagnitudeDB(1000, testSampleRate); math.Abs(got-6) > 0.1 {
		t.Errorf("peak magnitude at center = %.3f dB, want 6 dB", got)
	}

	// Response decays toward 0 dB away from the center.
	at20 := c.MagnitudeDB(20, testSampleRate)
	at20k := c.MagnitudeDB(20000, testSampleRate)
	if math.Abs(at20) > 0.5 {
		t.Errorf("peak magnitude at 20 Hz = %.3f dB, want near 0", at20)
	}
	if math.Abs(at20k) > 0.5 {
		t.Errorf("peak magnitude at 20 kHz = %.3f dB, want near 0", at20k)
	}

	mid := c.MagnitudeDB(500, testSampleRate)
	if mid <= at20 || mid >= 6 {
		t.Errorf("peak response not monotonic toward center: %.3f dB at 500 Hz", mid)
	}
}

func TestMakePeakFilterUnityAtZeroGain(t *testing.T) {
	s := DefaultSettings()
	s.PeakFreq = 1000
	s.PeakGainDB = 0
	s.PeakQ = 2

	c := MakePeakFilter(s, testSampleRate)
	for _, f := range []float64{20, 100, 1000, 10000, 20000} {
		if got := c.MagnitudeDB(f, testSampleRate); math.Abs(got) > 1e-6 {
			t.Errorf("zero-gain peak at %g Hz = %g dB, want 0", f, got)
		}
	}
}

func TestMakeLowCutFilterSectionCount(t *testing.T) {
	s := DefaultSettings()
	s.LowCutFreq = 1000

	for slope := Slope12; slope <= Slope48; slope++ {
		s.LowCutSlope = slope
		coeffs := MakeLowCutFilter(s, testSampleRate)

		identity := Identity()
		for i, c := range coeffs {
			isIdentity := c == identity
			wantIdentity := i >= slope.Sections()
			if isIdentity != wantIdentity {
				t.Errorf("slope %v section %d: identity=%v, want %v", slope, i, isIdentity, wantIdentity)
			}
		}
	}
}

func cascadeMagnitudeDB(coeffs [MaxCutSections]Coefficients, n int, freq float64) float64 {
	mag := 1.0
	for i := range n {
		mag *= coeffs[i].Magnitude(freq, testSampleRate)
	}
	return 20 * math.Log10(mag)
}

func TestButterworthCutoffAtMinus3DB(t *testing.T) {
	s := DefaultSettings()
	s.LowCutFreq = 1000

	for slope := Slope12; slope <= Slope48; slope++ {
		s.LowCutSlope = slope
		coeffs := MakeLowCutFilter(s, testSampleRate)

		got := cascadeMagnitudeDB(coeffs, slope.Sections(), 1000)
		if math.Abs(got+3.01) > 0.1 {
			t.Errorf("slope %v: magnitude at cutoff = %.3f dB, want -3.01 dB", slope, got)
		}
	}
}

func TestButterworthRollOffSteepness(t *testing.T) {
	s := DefaultSettings()
	s.LowCutFreq = 1000

	for slope := Slope12; slope <= Slope48; slope++ {
		s.LowCutSlope = slope
		coeffs := MakeLowCutFilter(s, testSampleRate)
		n := slope.Sections()

		// One octave into the stopband a 2n-order Butterworth highpass
		// attenuates by 10*log10(1 + 2^(4n)) dB.
		got := cascadeMagnitudeDB(coeffs, n, 500)
		want := -10 * math.Log10(1+math.Pow(2, float64(4*n)))
		if math.Abs(got-want) > 0.5 {
			t.Errorf("slope %v: magnitude one octave below cutoff = %.2f dB, want %.2f dB", slope, got, want)
		}
	}
}

func TestMakeHighCutFilterMirrorsLowCut(t *testing.T) {
	s := DefaultSettings()
	s.HighCutFreq = 1000
	s.HighCutSlope = Slope24

	coeffs := MakeHighCutFilter(s, testSampleRate)

	if got := cascadeMagnitudeDB(coeffs, 2, 1000); math.Abs(got+3.01) > 0.1 {
		t.Errorf("high-cut magnitude at cutoff = %.3f dB, want -3.01 dB", got)
	}

	// Passband below the cutoff stays flat, stopband above falls away.
	if got := cascadeMagnitudeDB(coeffs, 2, 100); math.Abs(got) > 0.1 {
		t.Errorf("high-cut passband at 100 Hz = %.3f dB, want 0", got)
	}
	if got := cascadeMagnitudeDB(coeffs, 2, 4000); got > -40 {
		t.Errorf("high-cut stopband at 4 kHz = %.2f dB, want well below -40", got)
	}
}

func TestFactoryDeterministic(t *testing.T) {
	s := DefaultSettings()
	s.PeakFreq = 1234
	s.PeakGainDB = -7.5
	s.PeakQ = 3.3
	s.LowCutFreq = 80
	s.LowCutSlope = Slope36

	if MakePeakFilter(s, testSampleRate) != MakePeakFilter(s, testSampleRate) {
		t.Error("MakePeakFilter is not deterministic")
	}
	if MakeLowCutFilter(s, testSampleRate) != MakeLowCutFilter(s, testSampleRate) {
		t.Error("MakeLowCutFilter is not deterministic")
	}
}
