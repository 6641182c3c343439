package snowplow

import (
	"encoding/base64"
	"encoding/json"
	"strconv"

	"github.com/outboundhq/courier/internal/domain"
	"github.com/outboundhq/courier/internal/integration"
)

// Iglu schema URIs for the self-describing JSON wrappers.
const (
	unstructEventSchema = "iglu:com.snowplowanalytics.snowplow/unstruct_event/jsonschema/1-0-0"
	contextsSchema      = "iglu:com.snowplowanalytics.snowplow/contexts/jsonschema/1-0-0"
)

// trackerVersion is sent as tv on every request.
const trackerVersion = "courier-1.0.0"

// pagePayload builds a page view (e=pv).
func pagePayload(ev *domain.Event) map[string]string {
	return map[string]string{
		"e":    "pv",
		"page": ev.PropertyString("title"),
	}
}

// trackPayload builds either an unstructured (e=ue) or a structured
// (e=se) event. Unstructured requires the event name to be mapped to a
// schema in settings; structured requires a category property. Events
// matching neither shape produce no request, reported by ok=false.
func trackPayload(ev *domain.Event, settings integration.Settings) (payload map[string]string, ok bool) {
	if schema, mapped := settings.UnstructuredEvents[ev.Event]; mapped {
		outer := selfDescribing(unstructEventSchema, map[string]any{
			"schema": schema,
			"data":   ev.Properties,
		})
		payload = map[string]string{"e": "ue"}
		if settings.Base64Enabled() {
			payload["ue_px"] = encodeBase64(outer)
		} else {
			payload["ue_pr"] = encodeJSON(outer)
		}
		return payload, true
	}

	if category := ev.PropertyString("category"); category != "" {
		return map[string]string{
			"e":     "se",
			"se_ca": category,
			"se_ac": ev.Event,
			"se_la": ev.PropertyString("label"),
			"se_pr": ev.PropertyString("property"),
			"se_va": ev.PropertyString("value"),
		}, true
	}

	return nil, false
}

// transactionPayload builds the order-level event (e=tr).
func transactionPayload(ev *domain.Event) map[string]string {
	return map[string]string{
		"e":     "tr",
		"tr_id": ev.OrderID(),
		"tr_af": ev.PropertyString("affiliation"),
		"tr_tt": formatAmount(ev.Total()),
		"tr_tx": formatAmount(ev.Tax()),
		"tr_sh": formatAmount(ev.Shipping()),
		"tr_ci": ev.PropertyString("city"),
		"tr_st": ev.PropertyString("state"),
		"tr_co": ev.PropertyString("country"),
		"tr_cu": ev.Currency(),
	}
}

// itemPayload builds one line-item event (e=ti).
func itemPayload(item domain.Product, currency string) map[string]string {
	payload := map[string]string{
		"e":     "ti",
		"ti_sk": item.SKU,
		"ti_na": item.Name,
		"ti_ca": item.Category,
		"ti_pr": formatAmount(item.Price),
		"ti_cu": currency,
	}
	if item.Quantity > 0 {
		payload["ti_qu"] = strconv.Itoa(item.Quantity)
	}
	return payload
}

// traitsContext renders the user traits as a custom context when a traits
// schema is configured. The query field depends on the base64 flag: cx
// carries the encoded form, co the plain JSON.
func traitsContext(ev *domain.Event, settings integration.Settings) (field, value string, ok bool) {
	if settings.UserTraitsSchema == "" || len(ev.Traits) == 0 {
		return "", "", false
	}
	contexts := selfDescribing(contextsSchema, []any{
		map[string]any{
			"schema": settings.UserTraitsSchema,
			"data":   ev.Traits,
		},
	})
	if settings.Base64Enabled() {
		return "cx", encodeBase64(contexts), true
	}
	return "co", encodeJSON(contexts), true
}

func selfDescribing(schema string, data any) map[string]any {
	return map[string]any{
		"schema": schema,
		"data":   data,
	}
}

func formatAmount(amount float64) string {
	if amount == 0 {
		return ""
	}
	return strconv.FormatFloat(amount, 'f', -1, 64)
}

func encodeJSON(payload any) string {
	raw, _ := json.Marshal(payload)
	return string(raw)
}

func encodeBase64(payload any) string {
	raw, _ := json.Marshal(payload)
	return base64.StdEncoding.EncodeToString(raw)
}
