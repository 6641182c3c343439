package domain

import (
	"testing"
	"time"
)

func TestEvent_DistinctID(t *testing.T) {
	tests := []struct {
		name      string
		userID    string
		sessionID string
		want      string
	}{
		{name: "user id wins", userID: "u1", sessionID: "s1", want: "u1"},
		{name: "falls back to session id", sessionID: "s1", want: "s1"},
		{name: "both absent", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := &Event{UserID: tt.userID, SessionID: tt.sessionID}
			if got := ev.DistinctID(); got != tt.want {
				t.Errorf("DistinctID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEvent_Revenue(t *testing.T) {
	tests := []struct {
		name    string
		revenue any
		want    float64
	}{
		{name: "float", revenue: 25.5, want: 25.5},
		{name: "int", revenue: 30, want: 30},
		{name: "dollar string", revenue: "$25.50", want: 25.5},
		{name: "plain string", revenue: "12", want: 12},
		{name: "garbage string", revenue: "abc", want: 0},
		{name: "absent", revenue: nil, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := &Event{Properties: map[string]any{"revenue": tt.revenue}}
			if got := ev.Revenue(); got != tt.want {
				t.Errorf("Revenue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvent_Names(t *testing.T) {
	tests := []struct {
		name      string
		traits    map[string]any
		wantFirst string
		wantLast  string
	}{
		{
			name:      "explicit first and last",
			traits:    map[string]any{"firstName": "Ada", "lastName": "Lovelace"},
			wantFirst: "Ada",
			wantLast:  "Lovelace",
		},
		{
			name:      "split combined name",
			traits:    map[string]any{"name": "Grace Brewster Hopper"},
			wantFirst: "Grace",
			wantLast:  "Brewster Hopper",
		},
		{
			name:      "single word name",
			traits:    map[string]any{"name": "Prince"},
			wantFirst: "Prince",
			wantLast:  "",
		},
		{name: "no traits"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := &Event{Traits: tt.traits}
			if got := ev.FirstName(); got != tt.wantFirst {
				t.Errorf("FirstName() = %q, want %q", got, tt.wantFirst)
			}
			if got := ev.LastName(); got != tt.wantLast {
				t.Errorf("LastName() = %q, want %q", got, tt.wantLast)
			}
		})
	}
}

func TestEvent_Products(t *testing.T) {
	ev := &Event{Properties: map[string]any{
		"products": []any{
			map[string]any{"sku": "p-90", "name": "shirt", "price": 19.99, "quantity": 2},
			"not an object",
			map[string]any{"name": "no sku item"},
		},
	}}

	products := ev.Products()
	if len(products) != 2 {
		t.Fatalf("Products() returned %d items, want 2", len(products))
	}
	if products[0].SKU != "p-90" || products[0].Price != 19.99 || products[0].Quantity != 2 {
		t.Errorf("Products()[0] = %+v", products[0])
	}
	if products[1].SKU != "" || products[1].Name != "no sku item" {
		t.Errorf("Products()[1] = %+v", products[1])
	}
}

func TestEvent_OrderID(t *testing.T) {
	ev := &Event{Properties: map[string]any{"orderId": "o-1"}}
	if got := ev.OrderID(); got != "o-1" {
		t.Errorf("OrderID() = %q, want %q", got, "o-1")
	}

	ev = &Event{Properties: map[string]any{"id": "o-2"}}
	if got := ev.OrderID(); got != "o-2" {
		t.Errorf("OrderID() fallback = %q, want %q", got, "o-2")
	}
}

func TestEvent_IP(t *testing.T) {
	ev := &Event{
		Context: EventContext{IP: "10.0.0.1"},
		Options: map[string]any{"ip": "192.168.1.1"},
	}
	if got := ev.IP(); got != "192.168.1.1" {
		t.Errorf("IP() = %q, option override should win", got)
	}

	ev = &Event{Context: EventContext{IP: "10.0.0.1"}}
	if got := ev.IP(); got != "10.0.0.1" {
		t.Errorf("IP() = %q, want context value", got)
	}
}

func TestEvent_ReceivedTimestamp(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	ev := &Event{Timestamp: ts}
	if got := ev.ReceivedTimestamp(); !got.Equal(ts) {
		t.Errorf("ReceivedTimestamp() = %v, want %v", got, ts)
	}

	ev = &Event{}
	if got := ev.ReceivedTimestamp(); time.Since(got) > time.Minute {
		t.Errorf("ReceivedTimestamp() for zero timestamp = %v, want near now", got)
	}
}

func TestEvent_IsCompletedOrder(t *testing.T) {
	ev := &Event{Type: EventTrack, Event: "Completed Order"}
	if !ev.IsCompletedOrder() {
		t.Error("IsCompletedOrder() = false for Completed Order track")
	}
	ev = &Event{Type: EventTrack, Event: "completed order"}
	if !ev.IsCompletedOrder() {
		t.Error("IsCompletedOrder() should be case-insensitive")
	}
	ev = &Event{Type: EventIdentify, Event: "Completed Order"}
	if ev.IsCompletedOrder() {
		t.Error("IsCompletedOrder() = true for identify event")
	}
}
