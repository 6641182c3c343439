// Package snowplow delivers analytics events to a Snowplow collector.
// Snowplow is a query-style API: every event is a GET against the
// collector's /i endpoint, and a completed order fans out into one
// transaction request plus one request per line item.
package snowplow

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/outboundhq/courier/internal/classify"
	"github.com/outboundhq/courier/internal/dispatch"
	"github.com/outboundhq/courier/internal/domain"
	"github.com/outboundhq/courier/internal/integration"
	"github.com/outboundhq/courier/internal/transport"
)

const vendorName = "snowplow"

func init() {
	integration.Register(vendorName, func(d *dispatch.Coordinator) integration.Integration {
		return New(d)
	})
}

// Adapter implements the Snowplow integration.
type Adapter struct {
	integration.NoCapabilities
	dispatcher *dispatch.Coordinator
}

// New creates a Snowplow adapter.
func New(d *dispatch.Coordinator) *Adapter {
	return &Adapter{dispatcher: d}
}

func (a *Adapter) Name() string { return vendorName }

// Enabled accepts server and mobile events.
func (a *Adapter) Enabled(ev *domain.Event, _ integration.Settings) bool {
	return ev.Channel == domain.ChannelServer || ev.Channel == domain.ChannelMobile
}

// Validate requires the collector URL.
func (a *Adapter) Validate(_ *domain.Event, settings integration.Settings) error {
	if settings.CollectorURL == "" {
		return domain.NewConfigError(vendorName, "collectorUrl")
	}
	return nil
}

// Page sends a page view.
func (a *Adapter) Page(ctx context.Context, ev *domain.Event, settings integration.Settings) error {
	return a.send(ctx, ev, settings, pagePayload(ev))
}

// Track sends an unstructured event when the event name is mapped to a
// schema, a structured event when a category property is present, and
// silently does nothing otherwise.
func (a *Adapter) Track(ctx context.Context, ev *domain.Event, settings integration.Settings) error {
	payload, ok := trackPayload(ev, settings)
	if !ok {
		return nil
	}
	return a.send(ctx, ev, settings, payload)
}

// CompletedOrder fans out one transaction request plus one request per
// line item carrying a SKU. Orders without both an order id and a total
// are skipped by policy, with no error. The surfaced outcome is the
// transaction request's; item requests run alongside it and are neither
// retried here nor cancelled when a sibling fails.
func (a *Adapter) CompletedOrder(ctx context.Context, ev *domain.Event, settings integration.Settings) error {
	if ev.OrderID() == "" || ev.Total() == 0 {
		return nil
	}

	plan := dispatch.Plan{
		Vendor:   vendorName,
		Primary:  a.request(ev, settings, transactionPayload(ev)),
		Classify: classify.StatusOnly(vendorName),
	}
	currency := ev.Currency()
	for _, item := range ev.Products() {
		if item.SKU == "" {
			continue
		}
		plan.Items = append(plan.Items, a.request(ev, settings, itemPayload(item, currency)))
	}

	return a.dispatcher.Dispatch(ctx, plan).Err
}

func (a *Adapter) send(ctx context.Context, ev *domain.Event, settings integration.Settings, payload map[string]string) error {
	outcome := a.dispatcher.Dispatch(ctx, dispatch.Plan{
		Vendor:   vendorName,
		Primary:  a.request(ev, settings, payload),
		Classify: classify.StatusOnly(vendorName),
	})
	return outcome.Err
}

// request assembles one collector call: the mapped payload, the optional
// user-traits context, the millisecond device timestamp and the tracker
// tag. The collector sees the event's own user agent when one was
// captured.
func (a *Adapter) request(ev *domain.Event, settings integration.Settings, payload map[string]string) transport.Request {
	query := url.Values{}
	for key, value := range payload {
		if value == "" {
			continue
		}
		query.Set(key, value)
	}
	if field, value, ok := traitsContext(ev, settings); ok {
		query.Set(field, value)
	}
	query.Set("dtm", strconv.FormatInt(ev.ReceivedTimestamp().UnixMilli(), 10))
	query.Set("tv", trackerVersion)

	userAgent := ev.UserAgent()
	if userAgent == "" {
		userAgent = "not set"
	}

	return transport.Request{
		Method: http.MethodGet,
		URL:    collectorEndpoint(settings.CollectorURL),
		Query:  query,
		Header: http.Header{"User-Agent": {userAgent}},
	}
}

// collectorEndpoint accepts either a bare host ("c.example.com") or a
// full URL and returns the collector's /i endpoint.
func collectorEndpoint(collector string) string {
	if !strings.Contains(collector, "://") {
		collector = "https://" + collector
	}
	return strings.TrimSuffix(collector, "/") + "/i"
}
