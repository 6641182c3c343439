package mixpanel

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/outboundhq/courier/internal/dispatch"
	"github.com/outboundhq/courier/internal/domain"
	"github.com/outboundhq/courier/internal/integration"
	"github.com/outboundhq/courier/internal/transport"
)

// capturedRequest is one request the fake vendor endpoint observed.
type capturedRequest struct {
	Method string
	Path   string
	Query  url.Values
}

type fakeEndpoint struct {
	mu       sync.Mutex
	requests []capturedRequest
	body     string
	status   int
	srv      *httptest.Server
}

func newFakeEndpoint(t *testing.T, body string) *fakeEndpoint {
	t.Helper()
	f := &fakeEndpoint{body: body, status: http.StatusOK}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests = append(f.requests, capturedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
		})
		f.mu.Unlock()
		w.WriteHeader(f.status)
		w.Write([]byte(f.body))
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeEndpoint) captured() []capturedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]capturedRequest(nil), f.requests...)
}

func (f *fakeEndpoint) settings() integration.Settings {
	return integration.Settings{Token: "T", BaseURL: f.srv.URL}
}

func newAdapter(t *testing.T) *Adapter {
	t.Helper()
	client := transport.NewClient(transport.WithBackoff(time.Millisecond))
	return New(dispatch.New(client))
}

func decodeData(t *testing.T, query url.Values) map[string]any {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(query.Get("data"))
	if err != nil {
		t.Fatalf("data parameter is not base64: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("data parameter is not JSON: %v", err)
	}
	return payload
}

func TestAdapter_Enabled(t *testing.T) {
	a := newAdapter(t)
	tests := []struct {
		channel domain.Channel
		want    bool
	}{
		{domain.ChannelServer, true},
		{domain.ChannelMobile, false},
		{domain.ChannelClient, false},
	}
	for _, tt := range tests {
		ev := &domain.Event{Type: domain.EventTrack, Channel: tt.channel}
		if got := a.Enabled(ev, integration.Settings{Token: "T"}); got != tt.want {
			t.Errorf("Enabled(channel=%s) = %v, want %v", tt.channel, got, tt.want)
		}
	}
}

func TestAdapter_Validate(t *testing.T) {
	a := newAdapter(t)
	fresh := &domain.Event{Timestamp: time.Now()}
	old := &domain.Event{Timestamp: time.Now().Add(-6 * 24 * time.Hour)}

	if err := a.Validate(fresh, integration.Settings{}); domain.KindOf(err) != domain.ErrorKindConfig {
		t.Errorf("Validate without token = %v, want config error", err)
	}
	if err := a.Validate(fresh, integration.Settings{Token: "T"}); err != nil {
		t.Errorf("Validate(fresh event) = %v, want nil", err)
	}
	if err := a.Validate(old, integration.Settings{Token: "T"}); domain.KindOf(err) != domain.ErrorKindConfig {
		t.Errorf("Validate(old event without apiKey) = %v, want config error", err)
	}
	if err := a.Validate(old, integration.Settings{Token: "T", APIKey: "K"}); err != nil {
		t.Errorf("Validate(old event with apiKey) = %v, want nil", err)
	}
}

func TestAdapter_Track(t *testing.T) {
	endpoint := newFakeEndpoint(t, `{"status": 1}`)
	a := newAdapter(t)

	ev := &domain.Event{
		Type:      domain.EventTrack,
		Event:     "Login",
		UserID:    "u1",
		Channel:   domain.ChannelServer,
		Timestamp: time.Now(),
	}

	if err := a.Track(context.Background(), ev, endpoint.settings()); err != nil {
		t.Fatalf("Track() = %v, want nil", err)
	}

	requests := endpoint.captured()
	if len(requests) != 1 {
		t.Fatalf("endpoint saw %d requests, want exactly 1", len(requests))
	}
	req := requests[0]
	if req.Method != http.MethodPost || req.Path != "/track/" {
		t.Errorf("request = %s %s, want POST /track/", req.Method, req.Path)
	}

	payload := decodeData(t, req.Query)
	if payload["event"] != "Login" {
		t.Errorf("event = %v", payload["event"])
	}
	props := payload["properties"].(map[string]any)
	if props["distinct_id"] != "u1" || props["token"] != "T" {
		t.Errorf("properties = %v", props)
	}
}

func TestAdapter_TrackWithRevenueFansOut(t *testing.T) {
	endpoint := newFakeEndpoint(t, `{"status": 1}`)
	a := newAdapter(t)

	ev := &domain.Event{
		Type:       domain.EventTrack,
		Event:      "Purchased",
		UserID:     "u1",
		Channel:    domain.ChannelServer,
		Timestamp:  time.Now(),
		Properties: map[string]any{"revenue": 25.0},
	}

	if err := a.Track(context.Background(), ev, endpoint.settings()); err != nil {
		t.Fatalf("Track() = %v", err)
	}

	requests := endpoint.captured()
	if len(requests) != 2 {
		t.Fatalf("endpoint saw %d requests, want 2 (track + revenue)", len(requests))
	}
	paths := map[string]bool{}
	for _, r := range requests {
		paths[r.Path] = true
	}
	if !paths["/track/"] || !paths["/engage/"] {
		t.Errorf("fan-out hit %v, want /track/ and /engage/", paths)
	}
}

func TestAdapter_TrackHistoricalImport(t *testing.T) {
	endpoint := newFakeEndpoint(t, `{"status": 1}`)
	a := newAdapter(t)
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return now }

	ev := &domain.Event{
		Type:      domain.EventTrack,
		Event:     "Backfill",
		UserID:    "u1",
		Channel:   domain.ChannelServer,
		Timestamp: now.Add(-6 * 24 * time.Hour),
	}
	settings := endpoint.settings()
	settings.APIKey = "K"

	if err := a.Track(context.Background(), ev, settings); err != nil {
		t.Fatalf("Track() = %v", err)
	}

	requests := endpoint.captured()
	if len(requests) != 1 {
		t.Fatalf("endpoint saw %d requests, want 1", len(requests))
	}
	if requests[0].Path != "/import/" {
		t.Errorf("old event went to %s, want /import/", requests[0].Path)
	}
	if requests[0].Query.Get("api_key") != "K" {
		t.Errorf("import request missing api_key, query = %v", requests[0].Query)
	}
}

func TestAdapter_IdentifyGatedOnPeople(t *testing.T) {
	endpoint := newFakeEndpoint(t, `{"status": 1}`)
	a := newAdapter(t)

	ev := &domain.Event{
		Type:      domain.EventIdentify,
		UserID:    "u1",
		Channel:   domain.ChannelServer,
		Timestamp: time.Now(),
		Traits:    map[string]any{"email": "u1@example.com"},
	}

	if err := a.Identify(context.Background(), ev, endpoint.settings()); err != nil {
		t.Fatalf("Identify() without people = %v, want nil no-op", err)
	}
	if got := endpoint.captured(); len(got) != 0 {
		t.Fatalf("people disabled but %d requests issued", len(got))
	}

	settings := endpoint.settings()
	settings.People = true
	if err := a.Identify(context.Background(), ev, settings); err != nil {
		t.Fatalf("Identify() = %v", err)
	}
	requests := endpoint.captured()
	if len(requests) != 1 || requests[0].Path != "/engage/" {
		t.Fatalf("requests = %+v, want one GET /engage/", requests)
	}
}

func TestAdapter_Alias(t *testing.T) {
	endpoint := newFakeEndpoint(t, `{"status": 1}`)
	a := newAdapter(t)

	ev := &domain.Event{
		Type:       domain.EventAlias,
		PreviousID: "anon-1",
		UserID:     "u1",
		Channel:    domain.ChannelServer,
		Timestamp:  time.Now(),
	}

	if err := a.Alias(context.Background(), ev, endpoint.settings()); err != nil {
		t.Fatalf("Alias() = %v", err)
	}

	requests := endpoint.captured()
	if len(requests) != 1 {
		t.Fatalf("endpoint saw %d requests, want 1", len(requests))
	}
	payload := decodeData(t, requests[0].Query)
	if payload["event"] != "$create_alias" {
		t.Errorf("event = %v", payload["event"])
	}
	props := payload["properties"].(map[string]any)
	if props["distinct_id"] != "anon-1" || props["alias"] != "u1" {
		t.Errorf("alias properties = %v", props)
	}
}

func TestAdapter_RejectionAndParseFailures(t *testing.T) {
	ev := &domain.Event{
		Type:      domain.EventTrack,
		Event:     "Login",
		UserID:    "u1",
		Channel:   domain.ChannelServer,
		Timestamp: time.Now(),
	}

	rejected := newFakeEndpoint(t, `{"status": 0, "error": "token, missing or empty"}`)
	a := newAdapter(t)
	err := a.Track(context.Background(), ev, rejected.settings())
	if domain.KindOf(err) != domain.ErrorKindRejected {
		t.Errorf("status 0 body should reject, got %v", err)
	}

	malformed := newFakeEndpoint(t, `<!doctype html>`)
	err = a.Track(context.Background(), ev, malformed.settings())
	if domain.KindOf(err) != domain.ErrorKindParse {
		t.Errorf("malformed body should surface a parse error, got %v", err)
	}
}
