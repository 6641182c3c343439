// Package transport builds outbound HTTP requests and sends them with a
// bounded retry loop. It owns retries so the dispatch coordinator and the
// vendor adapters never re-issue requests themselves.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Request describes one outbound vendor call. One analytics event may
// produce several of these (an order plus its line items).
type Request struct {
	Method string
	URL    string

	// Query carries query-string parameters for query-style vendor APIs.
	// Parameters with empty values are stripped before encoding.
	Query url.Values

	// Header carries extra request headers.
	Header http.Header

	// JSONBody, when non-nil, is marshaled as the request body for
	// body-style vendor APIs.
	JSONBody any
}

// HTTPRequest encodes the request into an *http.Request. The receiver is
// not mutated; empty query parameters are dropped from the encoded URL so
// vendors never see malformed empty pairs.
func (r *Request) HTTPRequest(ctx context.Context) (*http.Request, error) {
	target, err := url.Parse(r.URL)
	if err != nil {
		return nil, fmt.Errorf("parse url %q: %w", r.URL, err)
	}

	if len(r.Query) > 0 {
		q := target.Query()
		for key, values := range r.Query {
			for _, v := range values {
				if key == "" || v == "" {
					continue
				}
				q.Add(key, v)
			}
		}
		target.RawQuery = q.Encode()
	}

	var body *bytes.Reader
	if r.JSONBody != nil {
		encoded, err := json.Marshal(r.JSONBody)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	var httpReq *http.Request
	if body != nil {
		httpReq, err = http.NewRequestWithContext(ctx, method, target.String(), body)
	} else {
		httpReq, err = http.NewRequestWithContext(ctx, method, target.String(), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	for key, values := range r.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	if r.JSONBody != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	return httpReq, nil
}

// Response is the raw result of one outbound call, handed to the vendor's
// response classifier.
type Response struct {
	StatusCode int
	Body       []byte
}
