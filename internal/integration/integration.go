// Package integration defines the vendor adapter contract and the factory
// registry that creates adapters from configuration.
package integration

import (
	"context"

	"github.com/outboundhq/courier/internal/domain"
)

// Integration is one vendor adapter. Every capability method delivers a
// single logical event and returns exactly one result: nil on success (or
// when the capability is an explicit no-op for the vendor), or a
// *domain.DeliveryError describing the first terminal failure.
type Integration interface {
	// Name returns the vendor name used in errors, logs and metrics.
	Name() string

	// Enabled reports whether the adapter will handle the event at all,
	// generally by matching the event channel against the vendor's
	// supported set. No request is issued for disabled events.
	Enabled(ev *domain.Event, settings Settings) bool

	// Validate checks that every setting the event needs is present. A
	// config error here means the network is never touched.
	Validate(ev *domain.Event, settings Settings) error

	Identify(ctx context.Context, ev *domain.Event, settings Settings) error
	Track(ctx context.Context, ev *domain.Event, settings Settings) error
	Page(ctx context.Context, ev *domain.Event, settings Settings) error
	Alias(ctx context.Context, ev *domain.Event, settings Settings) error
	CompletedOrder(ctx context.Context, ev *domain.Event, settings Settings) error
}

// NoCapabilities provides no-op implementations of every capability.
// Vendor adapters embed it and override what they support, so unsupported
// operations call back immediately with no error.
type NoCapabilities struct{}

func (NoCapabilities) Identify(context.Context, *domain.Event, Settings) error { return nil }
func (NoCapabilities) Track(context.Context, *domain.Event, Settings) error    { return nil }
func (NoCapabilities) Page(context.Context, *domain.Event, Settings) error     { return nil }
func (NoCapabilities) Alias(context.Context, *domain.Event, Settings) error    { return nil }
func (NoCapabilities) CompletedOrder(context.Context, *domain.Event, Settings) error {
	return nil
}
