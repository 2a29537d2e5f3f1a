// SPDX-License-Identifier: MIT
package dsp

import (
	"math"
	"testing"

	"eq/pkg/testsignal"
)

func TestCutBandActivation(t *testing.T) {
	s := DefaultSettings()
	s.LowCutFreq = 500

	var band CutBand
	band.init()

	for slope := Slope12; slope <= Slope48; slope++ {
		band.Update(MakeLowCutFilter(s, testSampleRate), slope)

		if got := band.ActiveSections(); got != slope.Sections() {
			t.Errorf("slope %v: %d active sections, want %d", slope, got, slope.Sections())
		}
		for i := 0; i < MaxCutSections; i++ {
			want := i >= slope.Sections()
			if got := band.IsBypassed(i); got != want {
				t.Errorf("slope %v: IsBypassed(%d) = %v, want %v", slope, i, got, want)
			}
		}
	}
}

func TestCutBandUpdatePanicsOnInvalidSlope(t *testing.T) {
	var band CutBand
	band.init()

	defer func() {
		if recover() == nil {
			t.Error("expected panic for out-of-range slope")
		}
	}()
	band.Update([MaxCutSections]Coefficients{}, CutSlope(4))
}

func TestMonoChainPassThroughWhenBypassed(t *testing.T) {
	chain := NewMonoChain()
	chain.SetPeakBypassed(true)

	// Fresh chain: cut sections inactive, peak bypassed. The block must
	// come out bit-identical.
	buf := testsignal.Sine(512, testSampleRate, 1000, 0.5)
	want := make([]float32, len(buf))
	copy(want, buf)

	chain.ProcessBlock(buf)
	for i := range buf {
		if buf[i] != want[i] {
			t.Fatalf("sample %d changed: %g != %g", i, buf[i], want[i])
		}
	}

	// Analytic response of the bypassed chain is 0 dB everywhere.
	for _, f := range []float64{20, 100, 1000, 10000, 20000} {
		mag := chain.MagnitudeAt(f, testSampleRate)
		if db := 20 * math.Log10(mag); math.Abs(db) > 1e-9 {
			t.Errorf("bypassed chain response at %g Hz = %g dB, want 0", f, db)
		}
	}
}

func TestMonoChainMagnitudeMatchesPeakGain(t *testing.T) {
	s := DefaultSettings()
	s.PeakFreq = 1000
	s.PeakGainDB = 6
	s.PeakQ = 1

	chain := NewMonoChain()
	chain.Update(s, testSampleRate)

	mag := chain.MagnitudeAt(1000, testSampleRate)
	if db := 20 * math.Log10(mag); math.Abs(db-6) > 0.1 {
		t.Errorf("chain magnitude at 1 kHz = %.3f dB, want 6 dB", db)
	}
}

func TestMonoChainFiltersSine(t *testing.T) {
	s := DefaultSettings()
	s.LowCutFreq = 2000
	s.LowCutSlope = Slope48

	chain := NewMonoChain()
	chain.Update(s, testSampleRate)

	// A 100 Hz tone sits far inside the 48 dB/oct low-cut stopband; after
	// the transient settles the output should be tiny.
	buf := testsignal.Sine(1<<14, testSampleRate, 100, 1.0)
	chain.ProcessBlock(buf)

	var peak float64
	for _, v := range buf[len(buf)/2:] {
		if a := math.Abs(float64(v)); a > peak {
			peak = a
		}
	}
	if db := 20 * math.Log10(peak); db > -60 {
		t.Errorf("100 Hz tone after 48 dB/oct low-cut at 2 kHz: %.1f dBFS, want < -60", db)
	}
}

func TestSectionUpdateIsWholesaleSwap(t *testing.T) {
	var s Section
	s.init()

	before := s.Coefficients()
	c := MakePeakFilter(DefaultSettings(), testSampleRate)
	s.UpdateCoefficients(&c)
	after := s.Coefficients()

	if before == after {
		t.Error("UpdateCoefficients must replace the shared reference")
	}
	if *after != c {
		t.Error("published coefficients differ from the update")
	}
}

func TestProcessBlockZeroAlloc(t *testing.T) {
	chain := NewMonoChain()
	chain.Update(DefaultSettings(), testSampleRate)

	buf := testsignal.Sine(512, testSampleRate, 440, 0.5)
	chain.ProcessBlock(buf) // warm-up

	allocs := testing.AllocsPerRun(100, func() {
		chain.ProcessBlock(buf)
	})
	if allocs > 0 {
		t.Errorf("expected zero allocations in ProcessBlock, got %.1f", allocs)
	}
}

func BenchmarkMonoChainProcessBlock(b *testing.B) {
	chain := NewMonoChain()
	s := DefaultSettings()
	s.LowCutSlope = Slope48
	s.HighCutSlope = Slope48
	s.LowCutFreq = 50
	s.HighCutFreq = 15000
	chain.Update(s, testSampleRate)

	buf := testsignal.Sine(512, testSampleRate, 440, 0.5)

	b.ReportAllocs()
	for b.Loop() {
		chain.ProcessBlock(buf)
	}
}
