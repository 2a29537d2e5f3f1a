// SPDX-License-Identifier: MIT
package engine

import (
	"fmt"
	"os"

	"github.com/go-audio/wav"

	"eq/internal/dsp"
	applog "eq/internal/log"
)

// RenderFile runs a WAV file through the equalizer offline and writes
// the filtered result. Each channel gets its own chain so stereo
// content keeps independent filter state, with identical settings
// applied to both.
func RenderFile(inPath, outPath string, settings dsp.ChainSettings) error {
	in, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	defer in.Close()

	decoder := wav.NewDecoder(in)
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", inPath, err)
	}
	if buf.Format == nil || buf.Format.NumChannels < 1 {
		return fmt.Errorf("%s: no decodable audio", inPath)
	}

	channels := buf.Format.NumChannels
	sampleRate := float64(buf.Format.SampleRate)
	bitDepth := int(decoder.BitDepth)
	if bitDepth == 0 {
		bitDepth = 16
	}
	frames := len(buf.Data) / channels
	scale := float64(int64(1)<<(bitDepth-1)) - 1

	applog.Infof("render: %s: %d frames, %d ch, %.0f Hz, %d-bit",
		inPath, frames, channels, sampleRate, bitDepth)

	block := make([]float32, frames)
	for ch := 0; ch < channels; ch++ {
		for i := 0; i < frames; i++ {
			block[i] = float32(float64(buf.Data[i*channels+ch]) / scale)
		}

		chain := dsp.NewMonoChain()
		chain.Update(settings, sampleRate)
		chain.ProcessBlock(block)

		for i := 0; i < frames; i++ {
			buf.Data[i*channels+ch] = clampToInt(float64(block[i]) * scale)
		}
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	defer out.Close()

	encoder := wav.NewEncoder(out, buf.Format.SampleRate, bitDepth, channels, 1)
	buf.SourceBitDepth = bitDepth
	if err := encoder.Write(buf); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to finalize output: %w", err)
	}
	return nil
}
