package integration

// Settings is the per-vendor configuration bag threaded through every
// adapter call. It is the superset of all vendor settings; each adapter
// reads only its own fields and validates the ones it requires. Settings
// values are immutable for the duration of one delivery.
type Settings struct {
	// Token is the project token (Mixpanel).
	Token string `koanf:"token" json:"token,omitempty"`

	// APIKey authorizes historical imports (Mixpanel).
	APIKey string `koanf:"api_key" json:"apiKey,omitempty"`

	// AuthToken authenticates body-style APIs (Vero).
	AuthToken string `koanf:"auth_token" json:"authToken,omitempty"`

	// CollectorURL is the event collector host or URL (Snowplow).
	CollectorURL string `koanf:"collector_url" json:"collectorUrl,omitempty"`

	// BaseURL overrides the vendor's default API endpoint.
	BaseURL string `koanf:"base_url" json:"baseUrl,omitempty"`

	// People enables profile updates on identify (Mixpanel).
	People bool `koanf:"people" json:"people,omitempty"`

	// EncodeBase64 controls base64 encoding of JSON query blobs
	// (Snowplow). Nil means the vendor default, which is on.
	EncodeBase64 *bool `koanf:"encode_base64" json:"encodeBase64,omitempty"`

	// UserTraitsSchema, when set, attaches user traits to every request
	// as a custom context conforming to this schema (Snowplow).
	UserTraitsSchema string `koanf:"user_traits_schema" json:"userTraitsSchema,omitempty"`

	// UnstructuredEvents maps event names to the schema their properties
	// conform to (Snowplow).
	UnstructuredEvents map[string]string `koanf:"unstructured_events" json:"unstructuredEvents,omitempty"`
}

// Base64Enabled reports the EncodeBase64 flag with its default applied.
func (s Settings) Base64Enabled() bool {
	return s.EncodeBase64 == nil || *s.EncodeBase64
}
