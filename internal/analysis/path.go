// SPDX-License-Identifier: MIT
package analysis

import (
	"math"

	"eq/internal/render"
)

// PathProducer converts magnitude-in-decibels blocks into spectrum paths:
// one point per horizontal pixel, FFT bins grouped logarithmically using
// the same frequency mapping as the response curve. Within a pixel column
// the peak bin wins; columns narrower than a bin are interpolated between
// the surrounding bins. A completed path supersedes the previous one
// wholesale; partial paths are never exposed.
type PathProducer struct {
	mapping    render.Mapping
	sampleRate float64
	fftSize    int
	minDB      float64

	path render.Path
}

// NewPathProducer builds a producer for the given plot mapping and
// transform geometry.
func NewPathProducer(mapping render.Mapping, sampleRate float64, fftSize int, minDB float64) *PathProducer {
	return &PathProducer{
		mapping:    mapping,
		sampleRate: sampleRate,
		fftSize:    fftSize,
		minDB:      minDB,
	}
}

// SetSampleRate updates the bin-to-frequency scaling for subsequent
// updates.
func (p *PathProducer) SetSampleRate(sr float64) {
	p.sampleRate = sr
}

// Update builds a fresh path from one dB block. The new path replaces the
// previous one only once complete.
func (p *PathProducer) Update(dbBins []float64) {
	w := p.mapping.Width
	next := make(render.Path, w)

	binHz := p.sampleRate / float64(p.fftSize)
	lastBin := len(dbBins) - 1

	for x := 0; x < w; x++ {
		lo := p.mapping.FreqForX(x)
		hi := p.mapping.FreqForX(x + 1)

		// Bins whose center frequency falls in [lo, hi).
		kLo := int(math.Ceil(lo / binHz))
		kHi := int(math.Ceil(hi/binHz)) - 1
		if kLo < 0 {
			kLo = 0
		}
		if kHi > lastBin {
			kHi = lastBin
		}

		var db float64
		if kLo <= kHi {
			db = dbBins[kLo]
			for k := kLo + 1; k <= kHi; k++ {
				if dbBins[k] > db {
					db = dbBins[k]
				}
			}
		} else {
			db = p.interpolate(dbBins, math.Sqrt(lo*hi)/binHz, lastBin)
		}

		next[x] = render.Point{
			X: float32(x),
			Y: p.mapping.YForRange(db, p.minDB, 0),
		}
	}

	p.path = next
}

// interpolate returns the dB value at a fractional bin position, clamped
// to the valid bin range.
func (p *PathProducer) interpolate(dbBins []float64, bin float64, lastBin int) float64 {
	if bin <= 0 {
		return dbBins[0]
	}
	if bin >= float64(lastBin) {
		return dbBins[lastBin]
	}
	k := int(bin)
	frac := bin - float64(k)
	return dbBins[k]*(1-frac) + dbBins[k+1]*frac
}

// Path returns the most recent complete path, or nil before the first
// update. The returned path is immutable.
func (p *PathProducer) Path() render.Path {
	return p.path
}
