// Package registration wires the built-in vendor adapters into the
// integration registry.
package registration

import (
	// Imported for their init() registration.
	_ "github.com/outboundhq/courier/internal/vendors/mixpanel"
	_ "github.com/outboundhq/courier/internal/vendors/snowplow"
	_ "github.com/outboundhq/courier/internal/vendors/vero"
)

// RegisterBuiltins ensures the built-in adapter packages are linked in.
// The registrations themselves run in package init().
func RegisterBuiltins() {}
