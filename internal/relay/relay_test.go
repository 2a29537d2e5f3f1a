// SPDX-License-Identifier: MIT
package relay

import (
	"sync"
	"testing"
)

func block(size int, value float32) []float32 {
	b := make([]float32, size)
	for i := range b {
		b[i] = value
	}
	return b
}

func TestPushPopFIFO(t *testing.T) {
	r, err := New(4, 8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for i := 1; i <= 3; i++ {
		r.Push(block(4, float32(i)))
	}

	dst := make([]float32, 4)
	for i := 1; i <= 3; i++ {
		if !r.Pop(dst) {
			t.Fatalf("Pop %d returned false", i)
		}
		if dst[0] != float32(i) {
			t.Fatalf("Pop %d delivered block %g, want %d (FIFO violated)", i, dst[0], i)
		}
	}
	if r.Pop(dst) {
		t.Error("Pop on empty relay returned true")
	}
	if r.Dropped() != 0 {
		t.Errorf("Dropped = %d, want 0", r.Dropped())
	}
}

func TestOverflowDropsOldest(t *testing.T) {
	r, err := New(2, 4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Fill the ring, then push two more. The two oldest must be the ones
	// lost; the newest must survive.
	for i := 1; i <= 6; i++ {
		r.Push(block(2, float32(i)))
	}

	if got := r.Dropped(); got != 2 {
		t.Errorf("Dropped = %d, want 2", got)
	}

	dst := make([]float32, 2)
	var got []float32
	for r.Pop(dst) {
		got = append(got, dst[0])
	}

	want := []float32{3, 4, 5, 6}
	if len(got) != len(want) {
		t.Fatalf("drained %d blocks, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("block %d = %g, want %g", i, got[i], want[i])
		}
	}
}

func TestPushZeroAlloc(t *testing.T) {
	r, err := New(64, 8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	src := block(64, 0.5)
	dst := make([]float32, 64)

	allocs := testing.AllocsPerRun(100, func() {
		r.Push(src)
		r.Pop(dst)
	})
	if allocs > 0 {
		t.Errorf("expected zero allocations in Push/Pop, got %.1f", allocs)
	}
}

func TestConcurrentProducerConsumer(t *testing.T) {
	const (
		blockSize = 8
		total     = 20000
	)

	r, err := New(blockSize, 16)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		src := make([]float32, blockSize)
		for i := 0; i < total; i++ {
			src[0] = float32(i)
			r.Push(src)
		}
	}()

	// Delivered block sequence numbers must be strictly increasing: drops
	// lose blocks but never reorder or duplicate them.
	dst := make([]float32, blockSize)
	last := float32(-1)
	received := 0
	for received+int(r.Dropped()) < total || r.Pending() > 0 {
		if !r.Pop(dst) {
			continue
		}
		if dst[0] <= last {
			t.Fatalf("out-of-order delivery: %g after %g", dst[0], last)
		}
		last = dst[0]
		received++
	}
	wg.Wait()

	// Drain anything pushed after the loop condition was checked.
	for r.Pop(dst) {
		if dst[0] <= last {
			t.Fatalf("out-of-order delivery: %g after %g", dst[0], last)
		}
		last = dst[0]
		received++
	}

	if received+int(r.Dropped()) != total {
		t.Errorf("received %d + dropped %d != pushed %d", received, r.Dropped(), total)
	}
}
