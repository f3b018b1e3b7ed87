// Package gonoop is the telemetry implementation used when telemetry is
// disabled.
package gonoop

import (
	"context"

	"github.com/vanlist/van-builder-scraper/tlmt"
)

type noop struct{}

func New() tlmt.Telemetry {
	return noop{}
}

func (noop) Send(context.Context, tlmt.Event) error {
	return nil
}

func (noop) Close() error {
	return nil
}
