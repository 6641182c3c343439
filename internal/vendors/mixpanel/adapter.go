// Package mixpanel delivers analytics events to the Mixpanel HTTP API.
// Mixpanel is a query-style API: every payload travels base64-encoded
// under a single data parameter, and rejections come back as a status
// flag inside a 200 body.
package mixpanel

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/outboundhq/courier/internal/classify"
	"github.com/outboundhq/courier/internal/dispatch"
	"github.com/outboundhq/courier/internal/domain"
	"github.com/outboundhq/courier/internal/integration"
	"github.com/outboundhq/courier/internal/transport"
)

const (
	vendorName     = "mixpanel"
	defaultBaseURL = "https://api.mixpanel.com"
)

func init() {
	integration.Register(vendorName, func(d *dispatch.Coordinator) integration.Integration {
		return New(d)
	})
}

// Adapter implements the Mixpanel integration.
type Adapter struct {
	integration.NoCapabilities
	dispatcher *dispatch.Coordinator
	now        func() time.Time
}

// New creates a Mixpanel adapter.
func New(d *dispatch.Coordinator) *Adapter {
	return &Adapter{dispatcher: d, now: time.Now}
}

func (a *Adapter) Name() string { return vendorName }

// Enabled accepts server-side events only.
func (a *Adapter) Enabled(ev *domain.Event, _ integration.Settings) bool {
	return ev.Channel == domain.ChannelServer
}

// Validate requires the project token, and additionally the API key when
// the event is old enough to need the historical import endpoint.
func (a *Adapter) Validate(ev *domain.Event, settings integration.Settings) error {
	if settings.Token == "" {
		return domain.NewConfigError(vendorName, "token")
	}
	if shouldImport(ev, a.now()) && settings.APIKey == "" {
		return domain.NewConfigError(vendorName, "apiKey")
	}
	return nil
}

// Identify updates the user's people profile. A no-op unless the people
// setting is on.
func (a *Adapter) Identify(ctx context.Context, ev *domain.Event, settings integration.Settings) error {
	if !settings.People {
		return nil
	}
	outcome := a.dispatcher.Dispatch(ctx, dispatch.Plan{
		Vendor:   vendorName,
		Primary:  a.engageRequest(settings, identifyPayload(ev, settings)),
		Classify: classify.VerboseJSON(vendorName),
	})
	return outcome.Err
}

// Track sends the event, choosing the live or historical-import endpoint
// by the event's age. Events carrying revenue additionally append a
// transaction to the user's profile, so a revenue track is a two-request
// fan-out whose surfaced outcome is the track request's.
func (a *Adapter) Track(ctx context.Context, ev *domain.Event, settings integration.Settings) error {
	imported := shouldImport(ev, a.now())
	endpoint := "/track/"
	if imported {
		endpoint = "/import/"
	}

	query := url.Values{
		"ip":      {"0"}, // ignore the server IP
		"verbose": {"1"}, // always get a structured response
		"data":    {encode(trackPayload(ev, settings))},
	}
	if imported {
		query.Set("api_key", settings.APIKey)
	}

	plan := dispatch.Plan{
		Vendor: vendorName,
		Primary: transport.Request{
			Method: http.MethodPost,
			URL:    a.baseURL(settings) + endpoint,
			Query:  query,
		},
		Classify: classify.VerboseJSON(vendorName),
	}
	if ev.Revenue() > 0 {
		plan.Items = []transport.Request{
			a.engageRequest(settings, revenuePayload(ev, settings)),
		}
	}

	return a.dispatcher.Dispatch(ctx, plan).Err
}

// Alias ties a prior identifier to a new one.
func (a *Adapter) Alias(ctx context.Context, ev *domain.Event, settings integration.Settings) error {
	outcome := a.dispatcher.Dispatch(ctx, dispatch.Plan{
		Vendor: vendorName,
		Primary: transport.Request{
			Method: http.MethodPost,
			URL:    a.baseURL(settings) + "/track/",
			Query: url.Values{
				"ip":      {"0"},
				"verbose": {"1"},
				"data":    {encode(aliasPayload(ev, settings))},
				"api_key": {settings.APIKey},
			},
		},
		Classify: classify.VerboseJSON(vendorName),
	})
	return outcome.Err
}

func (a *Adapter) engageRequest(settings integration.Settings, payload map[string]any) transport.Request {
	return transport.Request{
		Method: http.MethodGet,
		URL:    a.baseURL(settings) + "/engage/",
		Query: url.Values{
			"ip":      {"0"},
			"verbose": {"1"},
			"data":    {encode(payload)},
		},
	}
}

func (a *Adapter) baseURL(settings integration.Settings) string {
	if settings.BaseURL != "" {
		return settings.BaseURL
	}
	return defaultBaseURL
}
