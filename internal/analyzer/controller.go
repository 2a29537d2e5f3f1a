// SPDX-License-Identifier: MIT
// Package analyzer ties the analysis pipeline together: it drains the
// per-channel sample relays feeding the FFT generators, keeps the
// response curve current, and publishes finished frames to consumers
// on a fixed refresh tick.
package analyzer

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"eq/internal/analysis"
	"eq/internal/curve"
	"eq/internal/dsp"
	applog "eq/internal/log"
	"eq/internal/params"
	"eq/internal/relay"
	"eq/internal/render"
	"eq/internal/transport"
)

// Config describes one analyzer instance.
type Config struct {
	Channels   int     // analyzed input channels (one spectrum path each)
	BlockSize  int     // samples per relay block, matches the audio callback
	RelayDepth int     // relay capacity in blocks, rounded up to a power of two
	FFTSize    int     // analysis window length, power of two
	MinDB      float64 // spectrum floor, e.g. -48
	Width      int     // plot width in pixels
	Height     int     // plot height in pixels
	SampleRate float64
}

// Controller owns the shared filter chain and the per-channel analysis
// pipelines. The audio callback pushes processed blocks into the
// channel relays; everything else runs on the controller's tick
// goroutine.
type Controller struct {
	store   *params.Store
	chains  []*dsp.MonoChain
	curve   *curve.Engine
	mapping render.Mapping

	relays    []*relay.Relay
	gens      []*analysis.FFTDataGenerator
	producers []*analysis.PathProducer

	sampleRate atomic.Uint64 // float64 bits
	seq        uint64

	popBuf []float32
	dbBuf  []float64

	consumersMu sync.Mutex
	consumers   []transport.Consumer
	subs        []*params.Subscription

	interval time.Duration
	ticker   *time.Ticker
	doneChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	mu       sync.Mutex
}

// New builds a controller and subscribes it to every filter parameter
// in the store, so any parameter change marks the response curve dirty
// for the next tick.
func New(cfg Config, store *params.Store) (*Controller, error) {
	if cfg.Channels < 1 {
		return nil, fmt.Errorf("analyzer: channels must be >= 1, got %d", cfg.Channels)
	}
	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("analyzer: invalid sample rate %g", cfg.SampleRate)
	}
	if cfg.RelayDepth <= 0 {
		cfg.RelayDepth = 64
	}

	mapping := render.NewMapping(cfg.Width, cfg.Height)

	// One chain per channel so each carries its own filter state; the
	// response curve reads channel 0, and settings fan out to all.
	chains := make([]*dsp.MonoChain, cfg.Channels)
	for ch := range chains {
		chains[ch] = dsp.NewMonoChain()
	}

	c := &Controller{
		store:     store,
		chains:    chains,
		curve:     curve.New(chains[0], mapping),
		mapping:   mapping,
		relays:    make([]*relay.Relay, cfg.Channels),
		gens:      make([]*analysis.FFTDataGenerator, cfg.Channels),
		producers: make([]*analysis.PathProducer, cfg.Channels),
		popBuf:    make([]float32, cfg.BlockSize),
	}
	c.sampleRate.Store(math.Float64bits(cfg.SampleRate))

	for ch := 0; ch < cfg.Channels; ch++ {
		r, err := relay.New(cfg.BlockSize, cfg.RelayDepth)
		if err != nil {
			return nil, fmt.Errorf("analyzer: channel %d relay: %w", ch, err)
		}
		g, err := analysis.NewFFTDataGenerator(cfg.FFTSize, cfg.MinDB)
		if err != nil {
			return nil, fmt.Errorf("analyzer: channel %d generator: %w", ch, err)
		}
		c.relays[ch] = r
		c.gens[ch] = g
		c.producers[ch] = analysis.NewPathProducer(mapping, cfg.SampleRate, cfg.FFTSize, cfg.MinDB)
	}
	c.dbBuf = make([]float64, c.gens[0].NumBins())

	for _, p := range store.Parameters() {
		sub, err := store.Subscribe(p.Name, func(string) { c.curve.MarkDirty() })
		if err != nil {
			return nil, fmt.Errorf("analyzer: subscribe %q: %w", p.Name, err)
		}
		c.subs = append(c.subs, sub)
	}

	// The chains start as pass-through; bring them in line with the
	// store's current parameter values before any audio flows.
	settings := store.Settings()
	for _, chain := range chains {
		chain.Update(settings, cfg.SampleRate)
	}

	return c, nil
}

// Chain exposes one channel's filter chain for the audio callback.
// Channel 0's instance also backs the response curve, so the drawn
// curve always reflects what the audio path applies.
func (c *Controller) Chain(ch int) *dsp.MonoChain { return c.chains[ch] }

// Relay returns the sample relay for one channel. The audio callback
// pushes each processed block here.
func (c *Controller) Relay(ch int) *relay.Relay { return c.relays[ch] }

// Mapping returns the pixel mapping shared by curve and spectrum.
func (c *Controller) Mapping() render.Mapping { return c.mapping }

// AddConsumer registers a frame sink. Consumers added after Start
// receive frames from the next tick onward.
func (c *Controller) AddConsumer(consumer transport.Consumer) {
	c.consumersMu.Lock()
	c.consumers = append(c.consumers, consumer)
	c.consumersMu.Unlock()
}

// SetSampleRate retargets the analysis pipeline after a device change.
// Filter coefficients are rebuilt on the next tick.
func (c *Controller) SetSampleRate(sr float64) {
	c.sampleRate.Store(math.Float64bits(sr))
	for _, p := range c.producers {
		p.SetSampleRate(sr)
	}
	c.curve.MarkDirty()
}

// SampleRate returns the rate the pipeline currently assumes.
func (c *Controller) SampleRate() float64 {
	return math.Float64frombits(c.sampleRate.Load())
}

// SetPeakBypassed toggles the peak band on every channel and refreshes
// the curve.
func (c *Controller) SetPeakBypassed(b bool) {
	for _, chain := range c.chains {
		chain.SetPeakBypassed(b)
	}
	c.curve.MarkDirty()
}

// SetLowCutBypassed toggles the low-cut band on every channel and
// refreshes the curve.
func (c *Controller) SetLowCutBypassed(b bool) {
	for _, chain := range c.chains {
		chain.SetLowCutBypassed(b)
	}
	c.curve.MarkDirty()
}

// SetHighCutBypassed toggles the high-cut band on every channel and
// refreshes the curve.
func (c *Controller) SetHighCutBypassed(b bool) {
	for _, chain := range c.chains {
		chain.SetHighCutBypassed(b)
	}
	c.curve.MarkDirty()
}

// Start launches the tick goroutine. Safe to call once per Stop cycle;
// a second Start while running is a no-op.
func (c *Controller) Start(interval time.Duration) {
	if interval <= 0 {
		interval = 16 * time.Millisecond
		applog.Warnf("analyzer: invalid refresh interval, defaulting to %s", interval)
	}

	c.mu.Lock()
	if c.ticker != nil {
		c.mu.Unlock()
		applog.Warnf("analyzer: Start called but already running")
		return
	}
	c.interval = interval
	c.ticker = time.NewTicker(interval)
	c.doneChan = make(chan struct{})
	c.stopOnce = sync.Once{}

	ticker := c.ticker
	doneChan := c.doneChan
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		applog.Infof("analyzer: refresh loop started (interval %s)", interval)
		for {
			select {
			case <-ticker.C:
				c.Tick()
			case <-doneChan:
				applog.Debugf("analyzer: refresh loop stopped")
				return
			}
		}
	}()
}

// Stop halts the tick goroutine and waits for it to exit, then closes
// the parameter subscriptions. Safe to call more than once.
func (c *Controller) Stop() error {
	c.mu.Lock()
	if c.ticker == nil {
		c.mu.Unlock()
		return nil
	}
	c.stopOnce.Do(func() {
		close(c.doneChan)
		c.ticker.Stop()
		c.ticker = nil
	})
	c.mu.Unlock()

	c.wg.Wait()
	for _, sub := range c.subs {
		sub.Close()
	}
	return nil
}

// Tick runs one refresh pass: drain relays into the FFT generators,
// fold finished FFT blocks into the spectrum paths, recompute the
// response curve if a parameter changed, and publish a frame. Exported
// so tests and offline rendering can drive the pipeline without the
// ticker.
func (c *Controller) Tick() {
	sr := c.SampleRate()
	settings := c.store.Settings()
	// Refresh rebuilds channel 0's coefficients along with the curve;
	// when it fires, the remaining channels follow with the same settings.
	if c.curve.Refresh(settings, sr) {
		for _, chain := range c.chains[1:] {
			chain.Update(settings, sr)
		}
	}

	for ch := range c.relays {
		for c.relays[ch].Pop(c.popBuf) {
			c.gens[ch].Push(c.popBuf)
		}
		for c.gens[ch].PopDBBlock(c.dbBuf) {
			c.producers[ch].Update(c.dbBuf)
		}
	}

	c.publish(sr)
}

func (c *Controller) publish(sampleRate float64) {
	c.consumersMu.Lock()
	defer c.consumersMu.Unlock()
	if len(c.consumers) == 0 {
		return
	}

	c.seq++
	frame := render.Frame{
		Seq:        c.seq,
		TimestampN: time.Now().UnixNano(),
		SampleRate: sampleRate,
		Width:      c.mapping.Width,
		Height:     c.mapping.Height,
		Response:   c.curve.Path(),
		Spectrum:   make([]render.Path, len(c.producers)),
	}
	for ch, p := range c.producers {
		frame.Spectrum[ch] = p.Path()
	}

	for _, consumer := range c.consumers {
		if err := consumer.Consume(frame); err != nil {
			applog.Errorf("analyzer: consumer rejected frame %d: %v", frame.Seq, err)
		}
	}
}
