// Package domain provides the canonical analytics event model and the
// normalized outcome/error types shared by every vendor adapter.
package domain

import (
	"strconv"
	"strings"
	"time"
)

// EventType identifies the kind of analytics call an event represents.
type EventType string

const (
	EventIdentify EventType = "identify"
	EventTrack    EventType = "track"
	EventPage     EventType = "page"
	EventAlias    EventType = "alias"
)

// Channel identifies where an event originated.
type Channel string

const (
	ChannelServer Channel = "server"
	ChannelMobile Channel = "mobile"
	ChannelClient Channel = "client"
)

// CompletedOrderEvent is the track event name that adapters treat as an
// e-commerce transaction.
const CompletedOrderEvent = "Completed Order"

// EventContext carries transport-level metadata captured alongside an event.
type EventContext struct {
	IP        string `json:"ip,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
	Referrer  string `json:"referrer,omitempty"`
	Library   string `json:"library,omitempty"`
}

// Product is a single line item of a completed order.
type Product struct {
	SKU      string  `json:"sku,omitempty"`
	Name     string  `json:"name,omitempty"`
	Category string  `json:"category,omitempty"`
	Price    float64 `json:"price,omitempty"`
	Quantity int     `json:"quantity,omitempty"`
}

// Event is the vendor-neutral analytics event envelope. It is decoded once
// from the inbound request and treated as read-only for the duration of a
// delivery; adapters project it into vendor payloads but never mutate it.
type Event struct {
	Type       EventType      `json:"type"`
	Event      string         `json:"event,omitempty"`
	UserID     string         `json:"userId,omitempty"`
	SessionID  string         `json:"sessionId,omitempty"`
	PreviousID string         `json:"previousId,omitempty"`
	Channel    Channel        `json:"channel,omitempty"`
	Timestamp  time.Time      `json:"timestamp,omitempty"`
	Traits     map[string]any `json:"traits,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
	Context    EventContext   `json:"context,omitempty"`
	Options    map[string]any `json:"options,omitempty"`
}

// DistinctID returns the primary user identifier, falling back to the
// session (anonymous) id when no user id was supplied.
func (e *Event) DistinctID() string {
	if e.UserID != "" {
		return e.UserID
	}
	return e.SessionID
}

// ReceivedTimestamp returns the event timestamp, defaulting to the current
// time when the source did not supply one.
func (e *Event) ReceivedTimestamp() time.Time {
	if e.Timestamp.IsZero() {
		return time.Now()
	}
	return e.Timestamp
}

// IsCompletedOrder reports whether a track event is an e-commerce
// transaction.
func (e *Event) IsCompletedOrder() bool {
	return e.Type == EventTrack && strings.EqualFold(e.Event, CompletedOrderEvent)
}

// From returns the prior identifier of an alias event.
func (e *Event) From() string { return e.PreviousID }

// To returns the new identifier of an alias event.
func (e *Event) To() string { return e.UserID }

// TraitString returns a string trait, or "" when absent or not a string.
func (e *Event) TraitString(key string) string {
	return stringValue(e.Traits[key])
}

// PropertyString returns a string property, or "" when absent.
func (e *Event) PropertyString(key string) string {
	return stringValue(e.Properties[key])
}

// Email looks up the user email from traits, then properties.
func (e *Event) Email() string {
	if v := e.TraitString("email"); v != "" {
		return v
	}
	return e.PropertyString("email")
}

// FirstName returns the firstName trait, splitting a combined "name" trait
// when no explicit first name was supplied.
func (e *Event) FirstName() string {
	if v := e.TraitString("firstName"); v != "" {
		return v
	}
	first, _ := splitName(e.TraitString("name"))
	return first
}

// LastName returns the lastName trait, splitting a combined "name" trait
// when no explicit last name was supplied.
func (e *Event) LastName() string {
	if v := e.TraitString("lastName"); v != "" {
		return v
	}
	_, last := splitName(e.TraitString("name"))
	return last
}

// Phone returns the phone trait.
func (e *Event) Phone() string { return e.TraitString("phone") }

// Username returns the username trait.
func (e *Event) Username() string { return e.TraitString("username") }

// Created returns the account creation time trait, if parseable.
func (e *Event) Created() (time.Time, bool) {
	for _, key := range []string{"created", "createdAt"} {
		switch v := e.Traits[key].(type) {
		case time.Time:
			return v, true
		case string:
			if t, err := time.Parse(time.RFC3339, v); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// IP returns the client IP override, preferring an explicit option over the
// captured context value.
func (e *Event) IP() string {
	if v := stringValue(e.Options["ip"]); v != "" {
		return v
	}
	return e.Context.IP
}

// UserAgent returns the captured user agent.
func (e *Event) UserAgent() string { return e.Context.UserAgent }

// Referrer returns the captured referrer.
func (e *Event) Referrer() string { return e.Context.Referrer }

// Revenue returns the revenue property. String values may carry a leading
// currency symbol ("$25.50").
func (e *Event) Revenue() float64 {
	return numericValue(e.Properties["revenue"])
}

// OrderID returns the order identifier of a transaction event.
func (e *Event) OrderID() string {
	if v := e.PropertyString("orderId"); v != "" {
		return v
	}
	return e.PropertyString("id")
}

// Total returns the order total of a transaction event.
func (e *Event) Total() float64 { return numericValue(e.Properties["total"]) }

// Tax returns the order tax of a transaction event.
func (e *Event) Tax() float64 { return numericValue(e.Properties["tax"]) }

// Shipping returns the shipping cost of a transaction event.
func (e *Event) Shipping() float64 { return numericValue(e.Properties["shipping"]) }

// Currency returns the transaction currency code.
func (e *Event) Currency() string { return e.PropertyString("currency") }

// Products returns the order line items, in source order. Entries that are
// not objects are skipped.
func (e *Event) Products() []Product {
	raw, ok := e.Properties["products"].([]any)
	if !ok {
		return nil
	}
	products := make([]Product, 0, len(raw))
	for _, entry := range raw {
		item, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		products = append(products, Product{
			SKU:      stringValue(item["sku"]),
			Name:     stringValue(item["name"]),
			Category: stringValue(item["category"]),
			Price:    numericValue(item["price"]),
			Quantity: int(numericValue(item["quantity"])),
		})
	}
	return products
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

func numericValue(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		trimmed := strings.TrimPrefix(strings.TrimSpace(n), "$")
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return f
		}
	}
	return 0
}

func splitName(name string) (first, last string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ""
	}
	parts := strings.Fields(name)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
