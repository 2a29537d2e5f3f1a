// SPDX-License-Identifier: MIT
//
// Package relay moves fixed-size sample blocks from the real-time audio
// callback to the analysis thread over a lock-free single-producer
// single-consumer ring. The producer never blocks and never allocates;
// when the ring is full it reclaims the oldest unread slot (counting the
// drop) so the newest audio always gets through. Blocks are delivered in
// FIFO order.
package relay

import (
	"fmt"
	"sync/atomic"

	"eq/pkg/bitint"
)

// Relay is the SPSC block ring. head is written only by the producer; tail
// is normally advanced by the consumer but the producer may CAS it forward
// to reclaim the oldest slot on overflow. A consumer copy that loses that
// race fails its own CAS and retries, so a torn block is never delivered.
type Relay struct {
	blockSize int
	capacity  int
	slots     [][]float32

	head    atomic.Uint64
	tail    atomic.Uint64
	dropped atomic.Uint64
}

// New creates a relay of capacity blocks, each blockSize samples. Capacity
// is rounded up to a power of 2. All memory is allocated here; the push
// and pop paths are allocation-free.
func New(blockSize, capacity int) (*Relay, error) {
	if blockSize <= 0 {
		return nil, fmt.Errorf("relay: block size must be positive, got %d", blockSize)
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("relay: capacity must be positive, got %d", capacity)
	}
	capacity = bitint.NextPowerOfTwo(capacity)

	backing := make([]float32, blockSize*capacity)
	slots := make([][]float32, capacity)
	for i := range slots {
		slots[i] = backing[i*blockSize : (i+1)*blockSize]
	}

	return &Relay{
		blockSize: blockSize,
		capacity:  capacity,
		slots:     slots,
	}, nil
}

// BlockSize returns the fixed sample count per block.
func (r *Relay) BlockSize() int { return r.blockSize }

// Push copies one block into the ring. Real-time safe: no blocking, no
// allocation. len(src) must equal BlockSize. If the ring is full the
// oldest unread block is discarded (and counted) to make room; the push
// itself always succeeds.
func (r *Relay) Push(src []float32) {
	head := r.head.Load()
	for {
		tail := r.tail.Load()
		if head-tail < uint64(r.capacity) {
			break
		}
		// Full: reclaim the oldest slot. The CAS loses only to the
		// consumer finishing a pop, which also frees a slot.
		if r.tail.CompareAndSwap(tail, tail+1) {
			r.dropped.Add(1)
			break
		}
	}

	copy(r.slots[head&uint64(r.capacity-1)], src)
	r.head.Store(head + 1)
}

// Pop copies the oldest available block into dst and reports whether a
// block was delivered. Non-blocking; len(dst) must be at least BlockSize.
// The consumer drains the relay by calling Pop until it returns false.
func (r *Relay) Pop(dst []float32) bool {
	for {
		tail := r.tail.Load()
		if tail == r.head.Load() {
			return false
		}

		copy(dst[:r.blockSize], r.slots[tail&uint64(r.capacity-1)])

		// If the producer reclaimed this slot mid-copy the CAS fails and
		// the possibly torn copy is discarded.
		if r.tail.CompareAndSwap(tail, tail+1) {
			return true
		}
	}
}

// Pending returns how many blocks are currently waiting. Advisory only.
func (r *Relay) Pending() int {
	return int(r.head.Load() - r.tail.Load())
}

// Dropped returns the total number of blocks discarded due to overflow.
func (r *Relay) Dropped() uint64 {
	return r.dropped.Load()
}
