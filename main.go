// SPDX-License-Identifier: MIT
package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eq/cmd"
	"eq/internal/analyzer"
	"eq/internal/config"
	"eq/internal/engine"
	applog "eq/internal/log"
	"eq/internal/params"
	"eq/internal/transport"
	"eq/internal/tui"
	"eq/pkg/build"
)

// main runs in three phases: startup (build info, configuration,
// PortAudio, command dispatch), the concurrent phase (audio callback,
// analyzer tick, display), and shutdown (stop publishers, close the
// stream, flush recordings).
func main() {
	// ==================== STARTUP ====================

	if err := build.Initialize(); err != nil {
		log.Fatal(err)
	}

	options, err := cmd.ParseArgs()
	if err != nil {
		log.Fatal(err)
	}

	cfg, err := config.Load(options.ConfigPath)
	if err != nil {
		log.Fatal(err)
	}
	if level, ok := applog.ParseLevel(cfg.LogLevel); ok {
		applog.SetLevel(level)
	}

	store := params.NewStore()
	if err := options.ApplyParams(store); err != nil {
		log.Fatal(err)
	}

	switch options.Command {
	case "list":
		if err := tui.StartDeviceListUI(); err != nil {
			log.Fatal(err)
		}
		return
	case "render":
		if err := engine.RenderFile(options.RenderIn, options.RenderOut, store.Settings()); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Rendered %s -> %s\n", options.RenderIn, options.RenderOut)
		return
	}

	if err := engine.Initialize(); err != nil {
		log.Fatal(err)
	}
	defer engine.Terminate()

	controller, err := analyzer.New(analyzer.Config{
		Channels:   cfg.Audio.Channels,
		BlockSize:  cfg.Audio.FramesPerBuffer,
		FFTSize:    cfg.Analysis.FFTSize,
		MinDB:      cfg.Analysis.MinDB,
		Width:      cfg.Analysis.Width,
		Height:     cfg.Analysis.Height,
		SampleRate: cfg.Audio.SampleRate,
	}, store)
	if err != nil {
		log.Fatal(err)
	}

	var consumers []transport.Consumer
	if cfg.Transport.WebSocketEnabled {
		ws := transport.NewWebSocketConsumer(cfg.Transport.WebSocketAddr)
		consumers = append(consumers, ws)
		controller.AddConsumer(ws)
	}
	if options.Headless && !cfg.Transport.WebSocketEnabled {
		lc := transport.NewLogConsumer()
		consumers = append(consumers, lc)
		controller.AddConsumer(lc)
	}

	// ==================== CONCURRENT ====================

	audioEngine, err := engine.NewEngine(cfg, controller)
	if err != nil {
		log.Fatal(err)
	}

	if err := audioEngine.StartInputStream(); err != nil {
		log.Fatal(err)
	}

	if cfg.Recording.Enabled {
		path, err := audioEngine.StartRecording()
		if err != nil {
			log.Fatal(err)
		}
		applog.Infof("recording to %s", path)
	}

	interval := time.Second / time.Duration(cfg.Analysis.RefreshHz)
	controller.Start(interval)

	if options.TUIMode {
		if err := tui.StartViewer(controller, store); err != nil {
			applog.Errorf("viewer: %v", err)
		}
	} else {
		done := make(chan os.Signal, 1)
		signal.Notify(done, os.Interrupt, syscall.SIGTERM)
		<-done
	}

	// ==================== SHUTDOWN ====================

	if err := controller.Stop(); err != nil {
		applog.Errorf("error stopping analyzer: %v", err)
	}
	for _, c := range consumers {
		if err := c.Close(); err != nil {
			applog.Errorf("error closing consumer: %v", err)
		}
	}
	if err := audioEngine.Close(); err != nil {
		applog.Errorf("error closing audio engine: %v", err)
	}
}
