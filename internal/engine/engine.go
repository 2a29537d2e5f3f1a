// SPDX-License-Identifier: MIT
/*
Package engine captures audio through PortAudio, runs each channel
through its equalizer chain and hands the processed blocks to the
analyzer's relays.

The capture callback is the hot path: it touches only pre-allocated
buffers, atomics and the lock-free relays, so it never blocks the
audio thread.
*/
package engine

import (
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/gordonklaus/portaudio"

	"eq/internal/analyzer"
	"eq/internal/config"
	applog "eq/internal/log"
)

type Engine struct {
	cfg        *config.Config
	controller *analyzer.Controller

	inputDevice  *portaudio.DeviceInfo
	inputLatency time.Duration
	inputStream  *portaudio.Stream

	// Per-channel deinterleave scratch, one block each.
	scratch [][]float32

	rec recorder
}

// NewEngine resolves the input device and pre-allocates every buffer
// the callback will touch. PortAudio must already be initialized.
func NewEngine(cfg *config.Config, controller *analyzer.Controller) (*Engine, error) {
	inputDevice, err := InputDevice(cfg.Audio.InputDevice)
	if err != nil {
		return nil, err
	}
	if inputDevice.MaxInputChannels < cfg.Audio.Channels {
		return nil, fmt.Errorf("device %q has %d input channels, need %d",
			inputDevice.Name, inputDevice.MaxInputChannels, cfg.Audio.Channels)
	}

	scratch := make([][]float32, cfg.Audio.Channels)
	for ch := range scratch {
		scratch[ch] = make([]float32, cfg.Audio.FramesPerBuffer)
	}

	e := &Engine{
		cfg:         cfg,
		controller:  controller,
		inputDevice: inputDevice,
		scratch:     scratch,
	}
	e.rec.init(cfg)

	if cfg.Audio.LowLatency {
		e.inputLatency = inputDevice.DefaultLowInputLatency
	} else {
		e.inputLatency = inputDevice.DefaultHighInputLatency
	}

	applog.Infof("engine: using input device %q (latency %s)", inputDevice.Name, e.inputLatency)
	return e, nil
}

// StartInputStream opens and starts the capture stream.
func (e *Engine) StartInputStream() error {
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: e.cfg.Audio.Channels,
			Device:   e.inputDevice,
			Latency:  e.inputLatency,
		},
		FramesPerBuffer: e.cfg.Audio.FramesPerBuffer,
		SampleRate:      e.cfg.Audio.SampleRate,
	}

	stream, err := portaudio.OpenStream(params, e.processInputStream)
	if err != nil {
		return fmt.Errorf("failed to open input stream: %w", err)
	}
	e.inputStream = stream

	if err := e.inputStream.Start(); err != nil {
		e.inputStream.Close()
		e.inputStream = nil
		return fmt.Errorf("failed to start input stream: %w", err)
	}
	return nil
}

// StopInputStream stops and closes the capture stream.
func (e *Engine) StopInputStream() error {
	if e.inputStream == nil {
		return nil
	}
	if err := e.inputStream.Stop(); err != nil {
		return err
	}
	if err := e.inputStream.Close(); err != nil {
		return err
	}
	e.inputStream = nil
	return nil
}

// Close stops recording (if active) and the input stream.
func (e *Engine) Close() error {
	if err := e.StopRecording(); err != nil {
		return err
	}
	return e.StopInputStream()
}

// processInputStream is the capture callback. The interleaved input is
// split per channel, filtered in place and pushed to the analyzer's
// relays. Pre-allocated buffers only.
func (e *Engine) processInputStream(in []float32) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	channels := e.cfg.Audio.Channels
	frames := len(in) / channels
	if frames > e.cfg.Audio.FramesPerBuffer {
		frames = e.cfg.Audio.FramesPerBuffer
	}

	for ch := 0; ch < channels; ch++ {
		block := e.scratch[ch]
		for i := 0; i < frames; i++ {
			block[i] = in[i*channels+ch]
		}
		for i := frames; i < len(block); i++ {
			block[i] = 0
		}

		e.controller.Chain(ch).ProcessBlock(block)
		e.controller.Relay(ch).Push(block)
	}

	e.rec.write(e.scratch, frames)
}

// recorder writes the processed (post-filter) stream to a WAV file.
// State transitions are atomic so the callback can check cheaply.
type recorder struct {
	enc      *wav.Encoder
	buf      *audio.IntBuffer
	scale    float64
	bitDepth int
	channels int
	active   atomic.Bool
	closeFn  func() error
}

func (r *recorder) init(cfg *config.Config) {
	r.bitDepth = cfg.Recording.BitDepth
	r.channels = cfg.Audio.Channels
}

func (r *recorder) write(scratch [][]float32, frames int) {
	if !r.active.Load() || r.enc == nil {
		return
	}

	data := r.buf.Data[:frames*r.channels]
	for ch := range scratch {
		for i := 0; i < frames; i++ {
			data[i*r.channels+ch] = clampToInt(float64(scratch[ch][i]) * r.scale)
		}
	}
	r.buf.Data = data

	if err := r.enc.Write(r.buf); err != nil {
		applog.Errorf("engine: WAV write failed: %v", err)
	}
}

func clampToInt(v float64) int {
	if v > 0 {
		return int(v + 0.5)
	}
	return int(v - 0.5)
}
