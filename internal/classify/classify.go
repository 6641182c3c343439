// Package classify converts raw HTTP responses into typed outcomes.
// Vendors disagree on how they signal rejection: some only use the status
// code, some embed a status flag in a 200 body, some return a JSON message
// for non-2xx statuses. Each shape gets its own classifier constructor.
package classify

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/outboundhq/courier/internal/domain"
	"github.com/outboundhq/courier/internal/transport"
)

// Func classifies one completed HTTP exchange. Implementations must not
// panic on malformed bodies; a body that fails to parse where the vendor
// contract promises structure is a ParseError outcome.
type Func func(resp *transport.Response) domain.Outcome

// StatusOnly treats any 2xx status as success and everything else as a
// vendor rejection carrying the raw body as the message.
func StatusOnly(vendor string) Func {
	return func(resp *transport.Response) domain.Outcome {
		if is2xx(resp.StatusCode) {
			return domain.Success()
		}
		return domain.Rejected(vendor, string(resp.Body), resp.StatusCode)
	}
}

// verboseBody is the Mixpanel-style verbose response: status is 1 on
// success and 0 on rejection, with the reason under "error".
type verboseBody struct {
	Status int    `json:"status"`
	Error  string `json:"error"`
}

// VerboseJSON expects a JSON body with a numeric status flag even on
// HTTP 200. A false flag is a rejection; an unparseable body is a parse
// failure, never a fault.
func VerboseJSON(vendor string) Func {
	return func(resp *transport.Response) domain.Outcome {
		if !is2xx(resp.StatusCode) {
			return domain.Rejected(vendor, string(resp.Body), resp.StatusCode)
		}
		var body verboseBody
		if err := json.Unmarshal(resp.Body, &body); err != nil {
			return domain.Parse(vendor, fmt.Errorf("unmarshal response body %q: %w", truncate(resp.Body), err))
		}
		if body.Status == 0 {
			return domain.Rejected(vendor, body.Error, resp.StatusCode)
		}
		return domain.Success()
	}
}

// JSONMessage treats 2xx as success and extracts a JSON "message" field
// from rejection bodies, falling back to the raw body.
func JSONMessage(vendor string) Func {
	return func(resp *transport.Response) domain.Outcome {
		if is2xx(resp.StatusCode) {
			return domain.Success()
		}
		var body struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(resp.Body, &body); err == nil && body.Message != "" {
			return domain.Rejected(vendor, body.Message, resp.StatusCode)
		}
		return domain.Rejected(vendor, string(resp.Body), resp.StatusCode)
	}
}

func is2xx(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}

func truncate(body []byte) string {
	const max = 256
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
