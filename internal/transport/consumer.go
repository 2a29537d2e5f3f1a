// SPDX-License-Identifier: MIT
package transport

import "eq/internal/render"

// Consumer receives finished analyzer frames. Implementations must be
// safe for use from the analyzer's refresh goroutine and must never
// block it: a slow sink drops frames rather than stalling the tick.
type Consumer interface {
	Consume(frame render.Frame) error
	Close() error
}
