// SPDX-License-Identifier: MIT
package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	applog "eq/internal/log"
)

// StartRecording begins writing the processed stream to a timestamped
// WAV file in the configured output directory. Returns the file path.
func (e *Engine) StartRecording() (string, error) {
	if e.rec.active.Load() {
		return "", fmt.Errorf("already recording")
	}

	dir := e.cfg.Recording.OutputDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create recording directory: %w", err)
	}

	name := fmt.Sprintf("eq-%s.wav", time.Now().Format("20060102-150405"))
	path := filepath.Join(dir, name)
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}

	sampleRate := int(e.cfg.Audio.SampleRate)
	channels := e.cfg.Audio.Channels
	bitDepth := e.cfg.Recording.BitDepth

	e.rec.enc = wav.NewEncoder(file, sampleRate, bitDepth, channels, 1)
	e.rec.buf = &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: channels,
			SampleRate:  sampleRate,
		},
		SourceBitDepth: bitDepth,
		Data:           make([]int, e.cfg.Audio.FramesPerBuffer*channels),
	}
	e.rec.scale = float64(int64(1)<<(bitDepth-1)) - 1
	e.rec.closeFn = file.Close

	e.rec.active.Store(true)
	applog.Infof("engine: recording to %s (%d-bit)", path, bitDepth)
	return path, nil
}

// StopRecording finalizes the WAV file. A no-op when not recording;
// safe to call more than once.
func (e *Engine) StopRecording() error {
	if !e.rec.active.Swap(false) {
		return nil
	}

	if e.rec.enc != nil {
		if err := e.rec.enc.Close(); err != nil {
			return err
		}
		e.rec.enc = nil
	}
	if e.rec.closeFn != nil {
		if err := e.rec.closeFn(); err != nil {
			return err
		}
		e.rec.closeFn = nil
	}
	applog.Infof("engine: recording stopped")
	return nil
}

// IsRecording reports whether a recording is in progress.
func (e *Engine) IsRecording() bool {
	return e.rec.active.Load()
}
