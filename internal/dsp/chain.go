// SPDX-License-Identifier: MIT
package dsp

import "sync/atomic"

// CutBand is an ordered run of MaxCutSections biquad sections of which the
// leading slope+1 are active. Inactive sections are bypassed, never
// removed, so the structure stays stable for lock-free access. The active
// set is an atomic bitmask read by both the audio path and the response
// sampler; at any settings snapshot the two agree.
type CutBand struct {
	sections [MaxCutSections]Section
	active   atomic.Uint32
}

func (b *CutBand) init() {
	for i := range b.sections {
		b.sections[i].init()
	}
}

// Update publishes one coefficient set per section and activates exactly
// slope+1 leading sections. Panics if slope is outside Slope12..Slope48;
// callers validate upstream.
func (b *CutBand) Update(coeffs [MaxCutSections]Coefficients, slope CutSlope) {
	if slope < Slope12 || slope > Slope48 {
		panic("dsp: cut slope out of range")
	}

	for i := range b.sections {
		c := coeffs[i]
		b.sections[i].UpdateCoefficients(&c)
	}
	b.active.Store(uint32(1)<<slope.Sections() - 1)
}

// IsBypassed reports whether section i is currently bypassed.
func (b *CutBand) IsBypassed(i int) bool {
	return b.active.Load()&(1<<uint(i)) == 0
}

// ActiveSections returns the number of active leading sections.
func (b *CutBand) ActiveSections() int {
	n := 0
	mask := b.active.Load()
	for mask != 0 {
		n++
		mask >>= 1
	}
	return n
}

// Section returns the i-th section for inspection by the response sampler.
func (b *CutBand) Section(i int) *Section {
	return &b.sections[i]
}

// ProcessBlock cascades the buffer through all active sections in order.
func (b *CutBand) ProcessBlock(buf []float32) {
	mask := b.active.Load()
	for i := range b.sections {
		if mask&(1<<uint(i)) != 0 {
			b.sections[i].ProcessBlock(buf)
		}
	}
}

// Reset clears all section delay lines.
func (b *CutBand) Reset() {
	for i := range b.sections {
		b.sections[i].Reset()
	}
}

// MonoChain is the fixed three-band topology: low-cut, parametric peak,
// high-cut, evaluated in that order to match the audio processing order.
// One MonoChain instance is shared between the audio callback (block
// processing) and the response curve engine (analytic sampling); all shared
// state is behind atomics.
type MonoChain struct {
	lowCut     CutBand
	peak       Section
	peakBypass atomic.Bool
	highCut    CutBand
	lowCutByp  atomic.Bool
	highCutByp atomic.Bool
}

// NewMonoChain returns a pass-through chain: peak at identity, all cut
// sections bypassed.
func NewMonoChain() *MonoChain {
	c := &MonoChain{}
	c.lowCut.init()
	c.peak.init()
	c.highCut.init()
	return c
}

// Update rebuilds all three bands from a settings snapshot. Each section
// swap is atomic; the audio thread picks up the new coefficients at its
// next block boundary.
func (c *MonoChain) Update(s ChainSettings, sampleRate float64) {
	pc := MakePeakFilter(s, sampleRate)
	c.peak.UpdateCoefficients(&pc)
	c.lowCut.Update(MakeLowCutFilter(s, sampleRate), s.LowCutSlope)
	c.highCut.Update(MakeHighCutFilter(s, sampleRate), s.HighCutSlope)
}

// ProcessBlock runs the buffer through low-cut, peak, high-cut in order.
// Hot path: no allocation, no locks.
func (c *MonoChain) ProcessBlock(buf []float32) {
	if !c.lowCutByp.Load() {
		c.lowCut.ProcessBlock(buf)
	}
	if !c.peakBypass.Load() {
		c.peak.ProcessBlock(buf)
	}
	if !c.highCutByp.Load() {
		c.highCut.ProcessBlock(buf)
	}
}

// LowCut returns the low-cut band.
func (c *MonoChain) LowCut() *CutBand { return &c.lowCut }

// Peak returns the peak section.
func (c *MonoChain) Peak() *Section { return &c.peak }

// HighCut returns the high-cut band.
func (c *MonoChain) HighCut() *CutBand { return &c.highCut }

// SetPeakBypassed toggles the peak band in and out of the chain.
func (c *MonoChain) SetPeakBypassed(b bool) { c.peakBypass.Store(b) }

// PeakBypassed reports the peak band bypass state.
func (c *MonoChain) PeakBypassed() bool { return c.peakBypass.Load() }

// SetLowCutBypassed toggles the whole low-cut band.
func (c *MonoChain) SetLowCutBypassed(b bool) { c.lowCutByp.Store(b) }

// SetHighCutBypassed toggles the whole high-cut band.
func (c *MonoChain) SetHighCutBypassed(b bool) { c.highCutByp.Store(b) }

// Reset clears every delay line in the chain.
func (c *MonoChain) Reset() {
	c.lowCut.Reset()
	c.peak.Reset()
	c.highCut.Reset()
}

// MagnitudeAt evaluates the combined analytic magnitude response at one
// frequency: the product of every active section's magnitude in low-cut →
// peak → high-cut order. Order does not change the product numerically but
// is kept fixed for parity with any future phase extension.
func (c *MonoChain) MagnitudeAt(freqHz, sampleRate float64) float64 {
	mag := 1.0

	if !c.lowCutByp.Load() {
		for i := 0; i < MaxCutSections; i++ {
			if !c.lowCut.IsBypassed(i) {
				mag *= c.lowCut.Section(i).Coefficients().Magnitude(freqHz, sampleRate)
			}
		}
	}
	if !c.peakBypass.Load() {
		mag *= c.peak.Coefficients().Magnitude(freqHz, sampleRate)
	}
	if !c.highCutByp.Load() {
		for i := 0; i < MaxCutSections; i++ {
			if !c.highCut.IsBypassed(i) {
				mag *= c.highCut.Section(i).Coefficients().Magnitude(freqHz, sampleRate)
			}
		}
	}
	return mag
}
