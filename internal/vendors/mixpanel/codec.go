package mixpanel

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/outboundhq/courier/internal/domain"
	"github.com/outboundhq/courier/internal/integration"
)

// libraryTag is sent as mp_lib on every payload.
const libraryTag = "courier"

// importCutoff is the age past which events must go through the historical
// import endpoint instead of live track. The comparison is strict: an
// event exactly importCutoff old still uses the live endpoint.
// https://mixpanel.com/docs/api-documentation/importing-events-older-than-31-days
const importCutoff = 5 * 24 * time.Hour

func shouldImport(ev *domain.Event, now time.Time) bool {
	return now.Sub(ev.ReceivedTimestamp()) > importCutoff
}

// identifyPayload builds the /engage/ profile update.
// https://mixpanel.com/help/reference/http#people-analytics-updates
func identifyPayload(ev *domain.Event, settings integration.Settings) map[string]any {
	payload := map[string]any{
		"$distinct_id": ev.DistinctID(),
		"$token":       settings.Token,
		"$time":        ev.ReceivedTimestamp().UnixMilli(),
		"$set":         formatTraits(ev),
		"mp_lib":       libraryTag,
	}
	if ip := ev.IP(); ip != "" {
		payload["$ip"] = ip
	}
	if ignore, ok := ev.Options["ignoreTime"].(bool); ok && ignore {
		payload["$ignore_time"] = true
	}
	return payload
}

// trackPayload builds the /track/ (or /import/) event body.
// https://mixpanel.com/help/reference/http#tracking-events
func trackPayload(ev *domain.Event, settings integration.Settings) map[string]any {
	return map[string]any{
		"event":      ev.Event,
		"properties": formatProperties(ev, settings),
	}
}

// aliasPayload builds the synthetic $create_alias event.
// https://mixpanel.com/help/reference/http#distinct-id-alias
func aliasPayload(ev *domain.Event, settings integration.Settings) map[string]any {
	return map[string]any{
		"event": "$create_alias",
		"properties": map[string]any{
			"distinct_id": ev.From(),
			"alias":       ev.To(),
			"token":       settings.Token,
		},
	}
}

// revenuePayload builds the /engage/ transaction append for events that
// carry revenue.
// https://mixpanel.com/help/reference/http#tracking-revenue
func revenuePayload(ev *domain.Event, settings integration.Settings) map[string]any {
	return map[string]any{
		"$distinct_id": ev.DistinctID(),
		"$token":       settings.Token,
		"$append": map[string]any{
			"$transactions": map[string]any{
				"$time":   formatDate(ev.ReceivedTimestamp()),
				"$amount": ev.Revenue(),
			},
		},
	}
}

// formatTraits merges the trait map with Mixpanel's special people
// properties. Absent specials are omitted entirely; Mixpanel rejects null
// placeholders.
// https://mixpanel.com/help/reference/http#people-special-properties
func formatTraits(ev *domain.Event) map[string]any {
	traits := make(map[string]any, len(ev.Traits)+5)
	for k, v := range ev.Traits {
		traits[k] = v
	}
	setIfPresent(traits, "$first_name", ev.FirstName())
	setIfPresent(traits, "$last_name", ev.LastName())
	setIfPresent(traits, "$email", ev.Email())
	setIfPresent(traits, "$phone", ev.Phone())
	if created, ok := ev.Created(); ok {
		traits["$created"] = formatDate(created)
	}
	return traits
}

// formatProperties merges the property map with the Mixpanel metadata
// every tracked event carries.
func formatProperties(ev *domain.Event, settings integration.Settings) map[string]any {
	properties := make(map[string]any, len(ev.Properties)+7)
	for k, v := range ev.Properties {
		properties[k] = v
	}
	properties["token"] = settings.Token
	properties["distinct_id"] = ev.DistinctID()
	properties["time"] = ev.ReceivedTimestamp().Unix()
	properties["mp_lib"] = libraryTag
	setIfPresent(properties, "$referrer", ev.Referrer())
	setIfPresent(properties, "$username", ev.Username())
	setIfPresent(properties, "$ip", ev.IP())
	return properties
}

// formatDate renders the first 19 characters of the ISO timestamp, the
// format Mixpanel expects for dates in updates.
// https://mixpanel.com/help/reference/http#dates-in-updates
func formatDate(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05")
}

// encode base64-encodes the JSON payload for the data query parameter.
func encode(payload any) string {
	raw, _ := json.Marshal(payload)
	return base64.StdEncoding.EncodeToString(raw)
}

func setIfPresent(m map[string]any, key, value string) {
	if value != "" {
		m[key] = value
	}
}
