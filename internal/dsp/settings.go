// SPDX-License-Identifier: MIT
package dsp

// CutSlope selects the roll-off steepness of a cut band. Each step adds one
// active second-order section, i.e. 12 dB/octave.
type CutSlope int

const (
	Slope12 CutSlope = iota
	Slope24
	Slope36
	Slope48
)

// Sections returns how many cascaded second-order sections the slope needs.
func (s CutSlope) Sections() int {
	return int(s) + 1
}

func (s CutSlope) String() string {
	switch s {
	case Slope12:
		return "12 dB/Oct"
	case Slope24:
		return "24 dB/Oct"
	case Slope36:
		return "36 dB/Oct"
	case Slope48:
		return "48 dB/Oct"
	default:
		return "invalid slope"
	}
}

// ChainSettings is a plain value snapshot of every parameter the filter
// chain depends on. It is decoded atomically from the parameter store each
// time the chain is rebuilt; it owns nothing.
type ChainSettings struct {
	PeakFreq   float64
	PeakGainDB float64
	PeakQ      float64

	LowCutFreq  float64
	HighCutFreq float64

	LowCutSlope  CutSlope
	HighCutSlope CutSlope
}

// DefaultSettings mirrors the parameter store defaults: a flat chain with
// the cuts parked at the edges of the audible band.
func DefaultSettings() ChainSettings {
	return ChainSettings{
		PeakFreq:     750,
		PeakGainDB:   0,
		PeakQ:        1,
		LowCutFreq:   20,
		HighCutFreq:  20000,
		LowCutSlope:  Slope12,
		HighCutSlope: Slope12,
	}
}
