package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/outboundhq/courier/internal/config"
	"github.com/outboundhq/courier/internal/dispatch"
	"github.com/outboundhq/courier/internal/domain"
	"github.com/outboundhq/courier/internal/integration"
	"github.com/outboundhq/courier/internal/metrics"
)

// errSkipped marks an integration that declined the event (wrong channel
// or unsupported type). Not a failure.
var errSkipped = errors.New("skipped")

// ConfiguredIntegration pairs an adapter with the settings it is invoked
// with on every event.
type ConfiguredIntegration struct {
	Name        string
	Integration integration.Integration
	Settings    integration.Settings
}

// FromConfig builds the configured integrations declared in the vendors
// section, creating each adapter through the registry.
func FromConfig(vendors []config.VendorConfig, d *dispatch.Coordinator) ([]ConfiguredIntegration, error) {
	configured := make([]ConfiguredIntegration, 0, len(vendors))
	for _, vc := range vendors {
		adapter, err := integration.New(vc.Type, d)
		if err != nil {
			return nil, err
		}
		configured = append(configured, ConfiguredIntegration{
			Name:        vc.Name,
			Integration: adapter,
			Settings:    vc.Settings,
		})
	}
	return configured, nil
}

// Handler ingests events and delivers them to every configured
// integration. The integration list is swappable for config hot-reload;
// a delivery in flight keeps the list it started with.
type Handler struct {
	mu           sync.RWMutex
	integrations []ConfiguredIntegration
	logger       *slog.Logger
}

// NewHandler creates the ingest handler.
func NewHandler(integrations []ConfiguredIntegration, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{integrations: integrations, logger: logger}
}

// SetIntegrations replaces the configured integrations.
func (h *Handler) SetIntegrations(integrations []ConfiguredIntegration) {
	h.mu.Lock()
	h.integrations = integrations
	h.mu.Unlock()
}

func (h *Handler) configured() []ConfiguredIntegration {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.integrations
}

type ingestResponse struct {
	Results map[string]string `json:"results"`
}

// HandleEvent accepts one analytics event and runs every configured
// integration against it. Each integration observes exactly one result;
// the response reports them per vendor.
func (h *Handler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var ev domain.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		http.Error(w, "invalid event payload", http.StatusBadRequest)
		return
	}
	switch ev.Type {
	case domain.EventIdentify, domain.EventTrack, domain.EventPage, domain.EventAlias:
	default:
		http.Error(w, "unknown event type", http.StatusBadRequest)
		return
	}

	metrics.EventsReceived.WithLabelValues(string(ev.Type)).Inc()
	AddLogField(r.Context(), "event_type", string(ev.Type))

	results := make(map[string]string)
	failed := false
	for _, ci := range h.configured() {
		err := deliver(r.Context(), ci, &ev)
		switch {
		case errors.Is(err, errSkipped):
			results[ci.Name] = "skipped"
		case err != nil:
			results[ci.Name] = err.Error()
			failed = true
			h.logger.Warn("delivery failed",
				slog.String("vendor", ci.Name),
				slog.String("event_type", string(ev.Type)),
				slog.String("error", err.Error()),
			)
		default:
			results[ci.Name] = "ok"
		}
	}

	metrics.IngestDuration.Observe(float64(time.Since(start).Milliseconds()))

	status := http.StatusOK
	if failed {
		status = http.StatusBadGateway
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ingestResponse{Results: results})
}

// deliver routes one event to the matching capability of one integration.
func deliver(ctx context.Context, ci ConfiguredIntegration, ev *domain.Event) error {
	itg := ci.Integration
	if !itg.Enabled(ev, ci.Settings) {
		return errSkipped
	}
	if err := itg.Validate(ev, ci.Settings); err != nil {
		return err
	}

	switch ev.Type {
	case domain.EventIdentify:
		return itg.Identify(ctx, ev, ci.Settings)
	case domain.EventTrack:
		if ev.IsCompletedOrder() {
			return itg.CompletedOrder(ctx, ev, ci.Settings)
		}
		return itg.Track(ctx, ev, ci.Settings)
	case domain.EventPage:
		return itg.Page(ctx, ev, ci.Settings)
	case domain.EventAlias:
		return itg.Alias(ctx, ev, ci.Settings)
	}
	return errSkipped
}
