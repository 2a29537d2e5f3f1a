// SPDX-License-Identifier: MIT
//
// Package render defines the pixel-space artifacts the analysis core hands
// to a display surface: 2-D paths and the logarithmic frequency mapping
// shared by the response curve and the spectrum analyzer. Both producers
// must use the same Mapping instance semantics so their horizontal axes
// line up bit for bit.
package render

import "math"

// Analysis region shared by response curve and spectrum overlay.
const (
	MinFreqHz = 20.0
	MaxFreqHz = 20000.0
	MinDB     = -24.0
	MaxDB     = 24.0
)

// Point is one path vertex in pixel coordinates. Y grows downward,
// matching typical raster surfaces.
type Point struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

// Path is an ordered polyline. A Path published by the core is complete and
// immutable; it is superseded wholesale by the next one, never patched.
type Path []Point

// Mapping converts between frequency/decibel values and pixel coordinates
// for a plot of the given size. The horizontal axis is logarithmic from
// MinFreq to MaxFreq; the vertical axis is linear from MaxDBTop at y=0 down
// to MinDBBottom at y=Height.
type Mapping struct {
	Width  int
	Height int

	MinFreq float64
	MaxFreq float64

	// Vertical dB window. Values outside map to off-plot Y coordinates;
	// no clamping is applied here.
	BottomDB float64
	TopDB    float64
}

// NewMapping returns the standard analysis mapping: 20 Hz..20 kHz across
// width pixels, -24..+24 dB across height pixels.
func NewMapping(width, height int) Mapping {
	return Mapping{
		Width:    width,
		Height:   height,
		MinFreq:  MinFreqHz,
		MaxFreq:  MaxFreqHz,
		BottomDB: MinDB,
		TopDB:    MaxDB,
	}
}

// FreqForX returns the frequency at pixel column x:
//
//	freq(x) = 10^(log10(MinFreq) + (x/Width)*(log10(MaxFreq)-log10(MinFreq)))
//
// so FreqForX(0) == MinFreq exactly and FreqForX(Width-1) approaches MaxFreq.
func (m Mapping) FreqForX(x int) float64 {
	t := float64(x) / float64(m.Width)
	return math.Pow(10, math.Log10(m.MinFreq)+t*(math.Log10(m.MaxFreq)-math.Log10(m.MinFreq)))
}

// XForFreq is the inverse of FreqForX, returning a fractional pixel column.
func (m Mapping) XForFreq(freq float64) float64 {
	span := math.Log10(m.MaxFreq) - math.Log10(m.MinFreq)
	return (math.Log10(freq) - math.Log10(m.MinFreq)) / span * float64(m.Width)
}

// YForDB maps a decibel value into the mapping's vertical dB window.
// The result is intentionally unclamped: values outside the window land
// above or below the visible plot area.
func (m Mapping) YForDB(db float64) float32 {
	return m.YForRange(db, m.BottomDB, m.TopDB)
}

// YForRange linearly maps value over [lo, hi] to [Height, 0], unclamped.
func (m Mapping) YForRange(value, lo, hi float64) float32 {
	t := (value - lo) / (hi - lo)
	return float32((1 - t) * float64(m.Height))
}

// Frame is one published snapshot for display surfaces: the response curve
// plus one spectrum path per analyzed channel, in the same pixel space.
type Frame struct {
	Seq        uint64  `json:"seq"`
	TimestampN int64   `json:"timestamp_ns"`
	SampleRate float64 `json:"sample_rate"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Response   Path    `json:"response"`
	Spectrum   []Path  `json:"spectrum"`
}
