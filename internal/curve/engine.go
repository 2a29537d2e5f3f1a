// SPDX-License-Identifier: MIT
//
// Package curve computes the equalizer's static design curve: the chain's
// analytic magnitude response sampled across a logarithmic frequency grid,
// one point per horizontal pixel. The curve is recomputed only when a
// parameter change has been signalled since the last tick, coalesced
// through a single atomic dirty flag.
package curve

import (
	"math"
	"sync/atomic"

	"eq/internal/dsp"
	"eq/internal/render"
)

// magFloor guards the decibel conversion against log-of-zero when a deep
// cut drives the product toward nothing.
const magFloor = 1e-9

// Engine samples a MonoChain shared with the audio path, so the response
// it draws and the audio the listener hears always come from the same
// coefficients and bypass state.
type Engine struct {
	chain   *dsp.MonoChain
	mapping render.Mapping

	dirty atomic.Bool
	path  render.Path
}

// New creates an engine over the shared chain. The initial state is dirty
// so the first refresh always produces a curve.
func New(chain *dsp.MonoChain, mapping render.Mapping) *Engine {
	e := &Engine{chain: chain, mapping: mapping}
	e.dirty.Store(true)
	return e
}

// MarkDirty records that at least one parameter changed. Safe to call from
// any goroutine; any number of calls between two refreshes coalesce into
// one recomputation.
func (e *Engine) MarkDirty() {
	e.dirty.Store(true)
}

// Refresh recomputes the curve if and only if the dirty flag is set,
// clearing it with a compare-and-swap so a change burst triggers exactly
// one rebuild and one recomputation. The chain is rebuilt from the
// settings snapshot first so chain and curve stay in lockstep. Reports
// whether a recomputation happened.
func (e *Engine) Refresh(settings dsp.ChainSettings, sampleRate float64) bool {
	if !e.dirty.CompareAndSwap(true, false) {
		return false
	}

	e.chain.Update(settings, sampleRate)
	e.path = e.compute(sampleRate)
	return true
}

// Path returns the latest complete curve. The returned path is immutable
// and superseded wholesale by the next recomputation.
func (e *Engine) Path() render.Path {
	return e.path
}

// compute samples the combined magnitude response at every pixel column.
// The vertical mapping covers -24..+24 dB; values beyond that map off the
// visible plot rather than being clamped.
func (e *Engine) compute(sampleRate float64) render.Path {
	w := e.mapping.Width
	path := make(render.Path, w)

	for x := 0; x < w; x++ {
		freq := e.mapping.FreqForX(x)
		mag := e.chain.MagnitudeAt(freq, sampleRate)
		if mag < magFloor {
			mag = magFloor
		}
		db := 20 * math.Log10(mag)

		path[x] = render.Point{X: float32(x), Y: e.mapping.YForDB(db)}
	}
	return path
}
