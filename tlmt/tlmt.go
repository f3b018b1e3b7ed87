// Package tlmt defines the anonymous usage telemetry contract.
// Telemetry is opt-out via DISABLE_TELEMETRY=1; only run shape
// (durations, counts, errors) is reported, never scraped data.
package tlmt

import (
	"context"
	"runtime"
)

type Event struct {
	Name  string
	Props map[string]any
}

func NewEvent(name string, props map[string]any) Event {
	if props == nil {
		props = make(map[string]any)
	}

	props["os"] = runtime.GOOS
	props["arch"] = runtime.GOARCH

	return Event{
		Name:  name,
		Props: props,
	}
}

type Telemetry interface {
	Send(ctx context.Context, event Event) error
	Close() error
}
