// SPDX-License-Identifier: MIT
package transport

import (
	applog "eq/internal/log"
	"eq/internal/render"
)

// LogConsumer reports frame summaries through the debug log. Useful
// when running headless without a WebSocket client attached.
type LogConsumer struct{}

func NewLogConsumer() *LogConsumer {
	return &LogConsumer{}
}

func (lc *LogConsumer) Consume(frame render.Frame) error {
	applog.Debugf("frame %d: %d response points, %d spectrum channels",
		frame.Seq, len(frame.Response), len(frame.Spectrum))
	return nil
}

func (lc *LogConsumer) Close() error {
	return nil
}

var _ Consumer = (*LogConsumer)(nil)
