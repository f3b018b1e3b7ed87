// Package goposthog sends telemetry events to PostHog.
package goposthog

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/posthog/posthog-go"
	"github.com/shirou/gopsutil/v4/host"

	"github.com/vanlist/van-builder-scraper/tlmt"
)

type service struct {
	client     posthog.Client
	distinctID string

	once     sync.Once
	hostInfo map[string]any
}

func New(apiKey, endpoint string) (tlmt.Telemetry, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key is empty")
	}

	client, err := posthog.NewWithConfig(apiKey, posthog.Config{
		Endpoint: endpoint,
	})
	if err != nil {
		return nil, err
	}

	return &service{
		client:     client,
		distinctID: machineID(),
	}, nil
}

func (s *service) Send(_ context.Context, event tlmt.Event) error {
	props := posthog.NewProperties()

	for k, v := range event.Props {
		props.Set(k, v)
	}

	for k, v := range s.host() {
		props.Set(k, v)
	}

	return s.client.Enqueue(posthog.Capture{
		DistinctId: s.distinctID,
		Event:      event.Name,
		Properties: props,
	})
}

func (s *service) Close() error {
	return s.client.Close()
}

// host collects coarse platform information once per process.
func (s *service) host() map[string]any {
	s.once.Do(func() {
		s.hostInfo = make(map[string]any)

		info, err := host.Info()
		if err != nil {
			return
		}

		s.hostInfo["platform"] = info.Platform
		s.hostInfo["platform_version"] = info.PlatformVersion
		s.hostInfo["kernel_arch"] = info.KernelArch
	})

	return s.hostInfo
}

func machineID() string {
	id, err := host.HostID()
	if err != nil || id == "" {
		return uuid.New().String()
	}

	return id
}
