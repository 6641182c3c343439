package classify

import (
	"strings"
	"testing"

	"github.com/outboundhq/courier/internal/domain"
	"github.com/outboundhq/courier/internal/transport"
)

func TestStatusOnly(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   domain.OutcomeKind
	}{
		{name: "200", status: 200, want: domain.OutcomeSuccess},
		{name: "204", status: 204, want: domain.OutcomeSuccess},
		{name: "404", status: 404, body: "not found", want: domain.OutcomeVendorRejected},
		{name: "400", status: 400, want: domain.OutcomeVendorRejected},
	}

	fn := StatusOnly("snowplow")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fn(&transport.Response{StatusCode: tt.status, Body: []byte(tt.body)})
			if got.Kind != tt.want {
				t.Errorf("outcome = %q, want %q", got.Kind, tt.want)
			}
		})
	}
}

func TestVerboseJSON(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    domain.OutcomeKind
		wantMsg string
	}{
		{name: "success flag", status: 200, body: `{"status": 1}`, want: domain.OutcomeSuccess},
		{
			name:    "rejection flag inside 200",
			status:  200,
			body:    `{"status": 0, "error": "data, missing or empty"}`,
			want:    domain.OutcomeVendorRejected,
			wantMsg: "data, missing or empty",
		},
		{name: "malformed body", status: 200, body: `0<!doctype`, want: domain.OutcomeParseError},
		{name: "empty body", status: 200, body: ``, want: domain.OutcomeParseError},
		{name: "non-2xx", status: 503, body: `oops`, want: domain.OutcomeVendorRejected},
	}

	fn := VerboseJSON("mixpanel")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fn(&transport.Response{StatusCode: tt.status, Body: []byte(tt.body)})
			if got.Kind != tt.want {
				t.Errorf("outcome = %q, want %q", got.Kind, tt.want)
			}
			if tt.wantMsg != "" && !strings.Contains(got.Err.Error(), tt.wantMsg) {
				t.Errorf("error %q should carry vendor message %q", got.Err, tt.wantMsg)
			}
			if got.Kind != domain.OutcomeSuccess && got.Err == nil {
				t.Error("non-success outcome must carry an error")
			}
		})
	}
}

func TestJSONMessage(t *testing.T) {
	fn := JSONMessage("vero")

	got := fn(&transport.Response{StatusCode: 200, Body: []byte(`{"message":"Success."}`)})
	if !got.OK() {
		t.Errorf("200 should classify as success, got %q", got.Kind)
	}

	got = fn(&transport.Response{StatusCode: 401, Body: []byte(`{"message":"Invalid auth token."}`)})
	if got.Kind != domain.OutcomeVendorRejected {
		t.Fatalf("outcome = %q, want rejection", got.Kind)
	}
	if !strings.Contains(got.Err.Error(), "Invalid auth token.") {
		t.Errorf("error %q should carry the vendor message", got.Err)
	}

	// unparseable rejection body falls back to the raw text
	got = fn(&transport.Response{StatusCode: 500, Body: []byte("gateway exploded")})
	if got.Kind != domain.OutcomeVendorRejected || !strings.Contains(got.Err.Error(), "gateway exploded") {
		t.Errorf("outcome = %+v, want rejection carrying raw body", got)
	}
}
