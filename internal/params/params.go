// SPDX-License-Identifier: MIT
//
// Package params implements the parameter store the analysis core consumes:
// a registry of the equalizer's exposed parameters with validated writes,
// snapshot reads and scoped change subscriptions. Parameter variants are a
// tagged union resolved by exhaustive switching on Kind; there is no
// runtime type inspection.
package params

// Exposed parameter names.
const (
	PeakFreq     = "Peak Freq"
	PeakGain     = "Peak Gain"
	PeakQuality  = "Peak Quality"
	LowCutFreq   = "LowCut Freq"
	HighCutFreq  = "HighCut Freq"
	LowCutSlope  = "LowCut Slope"
	HighCutSlope = "HighCut Slope"
)

// Kind discriminates parameter variants.
type Kind int

const (
	KindFloat Kind = iota
	KindChoice
)

func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindChoice:
		return "choice"
	default:
		return "unknown"
	}
}

// FloatRange is the payload of a continuous parameter. Skew is a display
// hint for control surfaces (<1 stretches the low end of the range) and
// does not affect stored values.
type FloatRange struct {
	Min     float64
	Max     float64
	Skew    float64
	Default float64
}

// ChoiceList is the payload of a discrete parameter; the stored value is
// the label index.
type ChoiceList struct {
	Labels  []string
	Default int
}

// Parameter describes one exposed parameter. Exactly one payload field is
// meaningful, selected by Kind.
type Parameter struct {
	Name   string
	Kind   Kind
	Float  FloatRange
	Choice ChoiceList
}

var slopeLabels = []string{"12 dB/Oct", "24 dB/Oct", "36 dB/Oct", "48 dB/Oct"}

// eqParameters is the fixed layout of the three-band equalizer. Frequency
// ranges stop at 20 kHz, inside Nyquist for every supported sample rate,
// which is what lets the coefficient factory skip range checks.
func eqParameters() []Parameter {
	return []Parameter{
		{Name: LowCutFreq, Kind: KindFloat, Float: FloatRange{Min: 20, Max: 20000, Skew: 0.25, Default: 20}},
		{Name: HighCutFreq, Kind: KindFloat, Float: FloatRange{Min: 20, Max: 20000, Skew: 0.25, Default: 20000}},
		{Name: PeakFreq, Kind: KindFloat, Float: FloatRange{Min: 20, Max: 20000, Skew: 0.25, Default: 750}},
		{Name: PeakGain, Kind: KindFloat, Float: FloatRange{Min: -24, Max: 24, Skew: 1, Default: 0}},
		{Name: PeakQuality, Kind: KindFloat, Float: FloatRange{Min: 0.1, Max: 10, Skew: 1, Default: 1}},
		{Name: LowCutSlope, Kind: KindChoice, Choice: ChoiceList{Labels: slopeLabels, Default: 0}},
		{Name: HighCutSlope, Kind: KindChoice, Choice: ChoiceList{Labels: slopeLabels, Default: 0}},
	}
}
