// SPDX-License-Identifier: MIT
package engine

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"eq/internal/dsp"
	"eq/pkg/testsignal"
)

const testSampleRate = 48000.0

func writeSineWAV(t *testing.T, path string, freq float64, n int) {
	t.Helper()
	sine := testsignal.Sine(n, testSampleRate, freq, 0.5)

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, int(testSampleRate), 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: int(testSampleRate)},
		SourceBitDepth: 16,
		Data:           make([]int, n),
	}
	for i, s := range sine {
		buf.Data[i] = int(float64(s) * 32767)
	}
	if err := enc.Write(buf); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
}

func readRMS(t *testing.T, path string, skip int) float64 {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	buf, err := wav.NewDecoder(f).FullPCMBuffer()
	if err != nil {
		t.Fatal(err)
	}
	sum := 0.0
	n := 0
	for _, s := range buf.Data[skip:] {
		v := float64(s) / 32767
		sum += v * v
		n++
	}
	return math.Sqrt(sum / float64(n))
}

func TestRenderFileDefaultSettingsNearTransparent(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.wav")
	out := filepath.Join(dir, "out.wav")
	writeSineWAV(t, in, 1000, 48000)

	if err := RenderFile(in, out, dsp.DefaultSettings()); err != nil {
		t.Fatal(err)
	}

	// Default cut corners sit at the band edges, so a 1 kHz tone
	// passes essentially untouched.
	inRMS := readRMS(t, in, 4096)
	outRMS := readRMS(t, out, 4096)
	if math.Abs(20*math.Log10(outRMS/inRMS)) > 0.5 {
		t.Errorf("default settings changed level: in %.4f out %.4f", inRMS, outRMS)
	}
}

func TestRenderFileLowCutAttenuates(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.wav")
	out := filepath.Join(dir, "out.wav")
	writeSineWAV(t, in, 100, 48000)

	settings := dsp.DefaultSettings()
	settings.LowCutFreq = 2000
	settings.LowCutSlope = dsp.Slope48

	if err := RenderFile(in, out, settings); err != nil {
		t.Fatal(err)
	}

	// 100 Hz sits more than four octaves below a 48 dB/oct cut at
	// 2 kHz; after the filter settles it should be buried.
	inRMS := readRMS(t, in, 8192)
	outRMS := readRMS(t, out, 8192)
	if db := 20 * math.Log10(outRMS / inRMS); db > -60 {
		t.Errorf("low cut only attenuated %.1f dB", db)
	}
}

func TestRenderFileMissingInput(t *testing.T) {
	dir := t.TempDir()
	err := RenderFile(filepath.Join(dir, "missing.wav"), filepath.Join(dir, "out.wav"), dsp.DefaultSettings())
	if err == nil {
		t.Error("expected error for missing input file")
	}
}

func TestClampToInt(t *testing.T) {
	cases := []struct {
		in   float64
		want int
	}{
		{0, 0},
		{0.4, 0},
		{0.6, 1},
		{-0.6, -1},
		{32766.7, 32767},
		{-32766.7, -32767},
	}
	for _, tc := range cases {
		if got := clampToInt(tc.in); got != tc.want {
			t.Errorf("clampToInt(%g) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
