// SPDX-License-Identifier: MIT
package params

import (
	"testing"

	"eq/internal/dsp"
)

func TestDefaults(t *testing.T) {
	s := NewStore()

	if got := s.Float(PeakFreq); got != 750 {
		t.Errorf("default Peak Freq = %g, want 750", got)
	}
	if got := s.Float(HighCutFreq); got != 20000 {
		t.Errorf("default HighCut Freq = %g, want 20000", got)
	}
	if got := s.ChoiceIndex(LowCutSlope); got != 0 {
		t.Errorf("default LowCut Slope index = %d, want 0", got)
	}
}

func TestSetClampsFloatRange(t *testing.T) {
	s := NewStore()

	if err := s.Set(PeakGain, 99); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := s.Float(PeakGain); got != 24 {
		t.Errorf("Peak Gain after over-range set = %g, want 24 (clamped)", got)
	}

	if err := s.Set(LowCutFreq, 1); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := s.Float(LowCutFreq); got != 20 {
		t.Errorf("LowCut Freq after under-range set = %g, want 20 (clamped)", got)
	}
}

func TestSetRejectsBadChoiceAndName(t *testing.T) {
	s := NewStore()

	if err := s.Set(LowCutSlope, 7); err == nil {
		t.Error("expected error for out-of-range choice index")
	}
	if err := s.Set("No Such Param", 1); err == nil {
		t.Error("expected error for unknown parameter")
	}
}

func TestSubscribeNotifiesAndCloseStops(t *testing.T) {
	s := NewStore()

	calls := 0
	sub, err := s.Subscribe(PeakFreq, func(string) { calls++ })
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	if err := s.Set(PeakFreq, 1000); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if calls != 1 {
		t.Fatalf("listener calls = %d, want 1", calls)
	}

	// Writes to other parameters do not notify this listener.
	if err := s.Set(PeakGain, 3); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if calls != 1 {
		t.Fatalf("listener calls after unrelated set = %d, want 1", calls)
	}

	sub.Close()
	sub.Close() // idempotent

	if err := s.Set(PeakFreq, 2000); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if calls != 1 {
		t.Errorf("listener called after Close")
	}
}

func TestSettingsSnapshot(t *testing.T) {
	s := NewStore()
	mustSet := func(name string, v float64) {
		t.Helper()
		if err := s.Set(name, v); err != nil {
			t.Fatalf("Set(%q): %v", name, err)
		}
	}

	mustSet(PeakFreq, 1500)
	mustSet(PeakGain, -6)
	mustSet(PeakQuality, 2)
	mustSet(LowCutFreq, 80)
	mustSet(HighCutFreq, 12000)
	mustSet(LowCutSlope, 3)
	mustSet(HighCutSlope, 1)

	got := s.Settings()
	want := dsp.ChainSettings{
		PeakFreq:     1500,
		PeakGainDB:   -6,
		PeakQ:        2,
		LowCutFreq:   80,
		HighCutFreq:  12000,
		LowCutSlope:  dsp.Slope48,
		HighCutSlope: dsp.Slope24,
	}
	if got != want {
		t.Errorf("Settings() = %+v, want %+v", got, want)
	}
}
