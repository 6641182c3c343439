// Package vero delivers analytics events to the Vero API. Vero is a
// body-style API: payloads travel as JSON POST bodies and rejections come
// back as non-2xx statuses with a JSON message.
// https://github.com/getvero/vero-api
package vero

import (
	"context"
	"net/http"

	"github.com/outboundhq/courier/internal/classify"
	"github.com/outboundhq/courier/internal/dispatch"
	"github.com/outboundhq/courier/internal/domain"
	"github.com/outboundhq/courier/internal/integration"
	"github.com/outboundhq/courier/internal/transport"
)

const (
	vendorName     = "vero"
	defaultBaseURL = "https://api.getvero.com/api/v2"
)

func init() {
	integration.Register(vendorName, func(d *dispatch.Coordinator) integration.Integration {
		return New(d)
	})
}

// identity names the user an event or profile update belongs to. Email is
// omitted entirely when absent.
type identity struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

type trackBody struct {
	AuthToken string         `json:"auth_token"`
	EventName string         `json:"event_name"`
	Data      map[string]any `json:"data,omitempty"`
	Identity  identity       `json:"identity"`
}

type identifyBody struct {
	AuthToken string         `json:"auth_token"`
	ID        string         `json:"id"`
	Email     string         `json:"email,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// Adapter implements the Vero integration.
type Adapter struct {
	integration.NoCapabilities
	dispatcher *dispatch.Coordinator
}

// New creates a Vero adapter.
func New(d *dispatch.Coordinator) *Adapter {
	return &Adapter{dispatcher: d}
}

func (a *Adapter) Name() string { return vendorName }

// Enabled accepts server-side events only.
func (a *Adapter) Enabled(ev *domain.Event, _ integration.Settings) bool {
	return ev.Channel == domain.ChannelServer
}

// Validate requires the auth token.
func (a *Adapter) Validate(_ *domain.Event, settings integration.Settings) error {
	if settings.AuthToken == "" {
		return domain.NewConfigError(vendorName, "authToken")
	}
	return nil
}

// Track records an action.
// https://github.com/getvero/vero-api/blob/master/sections/api/events.md
func (a *Adapter) Track(ctx context.Context, ev *domain.Event, settings integration.Settings) error {
	return a.post(ctx, settings, "/events/track", trackBody{
		AuthToken: settings.AuthToken,
		EventName: ev.Event,
		Data:      ev.Properties,
		Identity: identity{
			ID:    ev.DistinctID(),
			Email: ev.Email(),
		},
	})
}

// Identify creates or updates a user.
// https://github.com/getvero/vero-api/blob/master/sections/api/users.md
func (a *Adapter) Identify(ctx context.Context, ev *domain.Event, settings integration.Settings) error {
	return a.post(ctx, settings, "/users/track", identifyBody{
		AuthToken: settings.AuthToken,
		ID:        ev.DistinctID(),
		Email:     ev.Email(),
		Data:      ev.Traits,
	})
}

func (a *Adapter) post(ctx context.Context, settings integration.Settings, path string, body any) error {
	outcome := a.dispatcher.Dispatch(ctx, dispatch.Plan{
		Vendor: vendorName,
		Primary: transport.Request{
			Method:   http.MethodPost,
			URL:      a.baseURL(settings) + path,
			JSONBody: body,
		},
		Classify: classify.JSONMessage(vendorName),
	})
	return outcome.Err
}

func (a *Adapter) baseURL(settings integration.Settings) string {
	if settings.BaseURL != "" {
		return settings.BaseURL
	}
	return defaultBaseURL
}
