// SPDX-License-Identifier: MIT
package params

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"eq/internal/dsp"
)

// Store holds the current value of every exposed parameter. Values are
// stored as atomic float bits so writers (host automation, CLI, UI) and the
// analysis tick never contend on a lock for value access; the mutex only
// guards the listener registry. Choice parameters store their label index.
type Store struct {
	parameters []Parameter
	index      map[string]int
	values     []paramValue

	mu        sync.Mutex
	nextSubID uint64
	listeners map[string]map[uint64]func(name string)
}

type paramValue struct {
	bits atomic.Uint64
}

// NewStore returns a store populated with the equalizer's parameter layout
// at default values.
func NewStore() *Store {
	parameters := eqParameters()
	s := &Store{
		parameters: parameters,
		index:      make(map[string]int, len(parameters)),
		values:     make([]paramValue, len(parameters)),
		listeners:  make(map[string]map[uint64]func(string)),
	}
	for i, p := range parameters {
		s.index[p.Name] = i
		switch p.Kind {
		case KindFloat:
			s.values[i].bits.Store(math.Float64bits(p.Float.Default))
		case KindChoice:
			s.values[i].bits.Store(math.Float64bits(float64(p.Choice.Default)))
		}
	}
	return s
}

// Parameters returns the parameter layout in registration order.
func (s *Store) Parameters() []Parameter {
	return s.parameters
}

// Lookup returns the parameter description for name.
func (s *Store) Lookup(name string) (Parameter, bool) {
	i, ok := s.index[name]
	if !ok {
		return Parameter{}, false
	}
	return s.parameters[i], true
}

// Set validates and stores a new value, then notifies subscribers. Float
// values are clamped to the parameter range; choice values are rounded to
// the nearest index and must land inside the label list. This store-side
// validation is what guarantees the coefficient factory only ever sees
// Nyquist-safe frequencies and slopes in range.
func (s *Store) Set(name string, value float64) error {
	i, ok := s.index[name]
	if !ok {
		return fmt.Errorf("params: unknown parameter %q", name)
	}

	p := s.parameters[i]
	switch p.Kind {
	case KindFloat:
		value = math.Min(math.Max(value, p.Float.Min), p.Float.Max)
	case KindChoice:
		idx := int(math.Round(value))
		if idx < 0 || idx >= len(p.Choice.Labels) {
			return fmt.Errorf("params: %q index %d out of range [0,%d)", name, idx, len(p.Choice.Labels))
		}
		value = float64(idx)
	}

	s.values[i].bits.Store(math.Float64bits(value))
	s.notify(name)
	return nil
}

// Float returns the current value of a continuous parameter.
func (s *Store) Float(name string) float64 {
	i, ok := s.index[name]
	if !ok {
		return 0
	}
	return math.Float64frombits(s.values[i].bits.Load())
}

// ChoiceIndex returns the current index of a choice parameter.
func (s *Store) ChoiceIndex(name string) int {
	return int(s.Float(name))
}

// Subscribe registers fn to run after every accepted Set of the named
// parameter. fn runs on the writer's goroutine and must be cheap and
// non-blocking; the analysis core only flips an atomic flag in it. The
// returned Subscription deregisters on Close.
func (s *Store) Subscribe(name string, fn func(name string)) (*Subscription, error) {
	if _, ok := s.index[name]; !ok {
		return nil, fmt.Errorf("params: unknown parameter %q", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSubID++
	id := s.nextSubID
	if s.listeners[name] == nil {
		s.listeners[name] = make(map[uint64]func(string))
	}
	s.listeners[name][id] = fn

	return &Subscription{store: s, name: name, id: id}, nil
}

func (s *Store) notify(name string) {
	s.mu.Lock()
	fns := make([]func(string), 0, len(s.listeners[name]))
	for _, fn := range s.listeners[name] {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(name)
	}
}

func (s *Store) unsubscribe(name string, id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.listeners[name], id)
}

// Subscription is a scoped listener registration. Closing it deregisters
// the listener; Close is idempotent and safe to defer.
type Subscription struct {
	store *Store
	name  string
	id    uint64
	once  sync.Once
}

// Close removes the listener from the store.
func (sub *Subscription) Close() {
	sub.once.Do(func() {
		sub.store.unsubscribe(sub.name, sub.id)
	})
}

// Settings decodes an atomic value snapshot of the whole chain
// configuration. Each field is read individually but every read is atomic;
// the chain treats the result as one consistent snapshot.
func (s *Store) Settings() dsp.ChainSettings {
	return dsp.ChainSettings{
		PeakFreq:     s.Float(PeakFreq),
		PeakGainDB:   s.Float(PeakGain),
		PeakQ:        s.Float(PeakQuality),
		LowCutFreq:   s.Float(LowCutFreq),
		HighCutFreq:  s.Float(HighCutFreq),
		LowCutSlope:  dsp.CutSlope(s.ChoiceIndex(LowCutSlope)),
		HighCutSlope: dsp.CutSlope(s.ChoiceIndex(HighCutSlope)),
	}
}
