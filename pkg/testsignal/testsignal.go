// SPDX-License-Identifier: MIT
//
// Package testsignal generates deterministic audio test signals and provides
// small helpers for inspecting spectra in tests.
package testsignal

import "math"

// Sine fills a new float32 buffer with a sine wave at the given frequency
// and amplitude. Amplitude 1.0 is full scale.
func Sine(size int, sampleRate, frequency, amplitude float64) []float32 {
	buf := make([]float32, size)
	for i := range buf {
		t := float64(i) / sampleRate
		buf[i] = float32(amplitude * math.Sin(2*math.Pi*frequency*t))
	}
	return buf
}

// Sine64 is Sine with float64 output, for response-math tests.
func Sine64(size int, sampleRate, frequency, amplitude float64) []float64 {
	buf := make([]float64, size)
	for i := range buf {
		t := float64(i) / sampleRate
		buf[i] = amplitude * math.Sin(2*math.Pi*frequency*t)
	}
	return buf
}

// MultiTone sums sine components at the given frequencies with matching
// amplitudes. len(freqs) must equal len(amps).
func MultiTone(size int, sampleRate float64, freqs, amps []float64) []float32 {
	buf := make([]float32, size)
	for i := range buf {
		t := float64(i) / sampleRate
		var s float64
		for j, f := range freqs {
			s += amps[j] * math.Sin(2*math.Pi*f*t)
		}
		buf[i] = float32(s)
	}
	return buf
}

// PeakIndex returns the index of the largest value in data[start..end].
// Out-of-range bounds are clamped.
func PeakIndex(data []float64, start, end int) int {
	if len(data) == 0 {
		return 0
	}
	if start < 0 {
		start = 0
	}
	if end >= len(data) {
		end = len(data) - 1
	}

	peak := start
	for i := start + 1; i <= end; i++ {
		if data[i] > data[peak] {
			peak = i
		}
	}
	return peak
}
