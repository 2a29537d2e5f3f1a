// SPDX-License-Identifier: MIT
//
// Package analysis converts relayed sample blocks into renderable spectrum
// paths: a windowed-FFT data generator feeding a per-pixel path producer.
// Both stages run on the analysis tick goroutine; the only concurrency in
// the pipeline lives in the relay upstream of it.
package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"

	"eq/pkg/bitint"
)

// DefaultMinDB is the negative-infinity floor applied to magnitudes before
// decibel conversion.
const DefaultMinDB = -48.0

// fftQueueCap bounds the completed-block queue. Under backpressure the
// oldest block is dropped, never stalling the generator.
const fftQueueCap = 8

// FFTDataGenerator maintains a sliding sample history per channel and
// produces one floored magnitude-in-decibels block for every full window
// of new samples. Completed blocks are queued (bounded, drop-oldest) and
// consumed at most once via PopDBBlock.
type FFTDataGenerator struct {
	fftSize int
	numBins int
	minDB   float64

	fft       *fourier.FFT
	windowSeq []float64
	coherent  float64 // sum of window coefficients / 2, for amplitude scaling

	history   []float64
	sinceLast int

	input    []float64
	spectrum []complex128

	queue     [][]float64
	queueTail int
	queueLen  int
	dropped   uint64
}

// NewFFTDataGenerator creates a generator with a Hann window of fftSize
// points. fftSize must be a power of 2.
func NewFFTDataGenerator(fftSize int, minDB float64) (*FFTDataGenerator, error) {
	if !bitint.IsPowerOfTwo(fftSize) {
		return nil, fmt.Errorf("analysis: fft size must be a power of 2, got %d", fftSize)
	}
	if minDB >= 0 {
		return nil, fmt.Errorf("analysis: dB floor must be negative, got %g", minDB)
	}

	seq := make([]float64, fftSize)
	for i := range seq {
		seq[i] = 1
	}
	window.Hann(seq)

	sum := 0.0
	for _, w := range seq {
		sum += w
	}

	numBins := fftSize/2 + 1
	queue := make([][]float64, fftQueueCap)
	for i := range queue {
		queue[i] = make([]float64, numBins)
	}

	return &FFTDataGenerator{
		fftSize:   fftSize,
		numBins:   numBins,
		minDB:     minDB,
		fft:       fourier.NewFFT(fftSize),
		windowSeq: seq,
		coherent:  sum / 2,
		history:   make([]float64, fftSize),
		input:     make([]float64, fftSize),
		spectrum:  make([]complex128, numBins),
		queue:     queue,
	}, nil
}

// FFTSize returns the transform window size in samples.
func (g *FFTDataGenerator) FFTSize() int { return g.fftSize }

// NumBins returns the magnitude block size (fftSize/2 + 1).
func (g *FFTDataGenerator) NumBins() int { return g.numBins }

// Push appends samples to the sliding history, discarding the same number
// of oldest samples. Every time a full window of new samples has
// accumulated since the last analysis, one FFT block is produced.
func (g *FFTDataGenerator) Push(samples []float32) {
	n := len(samples)
	if n >= g.fftSize {
		samples = samples[n-g.fftSize:]
		n = g.fftSize
	}

	copy(g.history, g.history[n:])
	tail := g.history[g.fftSize-n:]
	for i, s := range samples {
		tail[i] = float64(s)
	}

	g.sinceLast += len(samples)
	for g.sinceLast >= g.fftSize {
		g.produce()
		g.sinceLast -= g.fftSize
	}
}

func (g *FFTDataGenerator) produce() {
	for i, s := range g.history {
		g.input[i] = s * g.windowSeq[i]
	}
	g.fft.Coefficients(g.spectrum, g.input)

	slot := g.enqueueSlot()
	floor := math.Pow(10, g.minDB/20)
	for i, c := range g.spectrum {
		// Amplitude relative to full scale; the window's coherent gain
		// is divided back out so a full-scale sine reads 0 dB.
		mag := math.Hypot(real(c), imag(c)) / g.coherent
		if mag < floor {
			slot[i] = g.minDB
		} else {
			slot[i] = 20 * math.Log10(mag)
		}
	}
}

// enqueueSlot returns the queue slot for the next block, dropping the
// oldest block when the queue is full.
func (g *FFTDataGenerator) enqueueSlot() []float64 {
	if g.queueLen == fftQueueCap {
		g.queueTail = (g.queueTail + 1) % fftQueueCap
		g.queueLen--
		g.dropped++
	}
	slot := g.queue[(g.queueTail+g.queueLen)%fftQueueCap]
	g.queueLen++
	return slot
}

// PopDBBlock copies the oldest completed block into dst and reports
// whether one was available. dst must have NumBins capacity.
func (g *FFTDataGenerator) PopDBBlock(dst []float64) bool {
	if g.queueLen == 0 {
		return false
	}
	copy(dst[:g.numBins], g.queue[g.queueTail])
	g.queueTail = (g.queueTail + 1) % fftQueueCap
	g.queueLen--
	return true
}

// Dropped returns how many completed blocks were discarded under
// backpressure.
func (g *FFTDataGenerator) Dropped() uint64 { return g.dropped }
