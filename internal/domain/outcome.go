package domain

// OutcomeKind tags the classified result of one outbound request.
type OutcomeKind string

const (
	OutcomeSuccess        OutcomeKind = "success"
	OutcomeVendorRejected OutcomeKind = "vendor_rejected"
	OutcomeTransportError OutcomeKind = "transport_error"
	OutcomeParseError     OutcomeKind = "parse_error"
)

// Outcome is the classified result of one outbound request, or of a whole
// fan-out after the dispatch coordinator reduces its request outcomes.
type Outcome struct {
	Kind OutcomeKind
	Err  error
}

// OK reports whether the outcome is a success.
func (o Outcome) OK() bool { return o.Kind == OutcomeSuccess }

// Success returns a successful outcome.
func Success() Outcome {
	return Outcome{Kind: OutcomeSuccess}
}

// Rejected returns a vendor-rejection outcome.
func Rejected(vendor, message string, statusCode int) Outcome {
	return Outcome{Kind: OutcomeVendorRejected, Err: NewRejectedError(vendor, message, statusCode)}
}

// Transport returns a transport-failure outcome.
func Transport(vendor string, cause error) Outcome {
	return Outcome{Kind: OutcomeTransportError, Err: NewTransportError(vendor, cause)}
}

// Parse returns a parse-failure outcome.
func Parse(vendor string, cause error) Outcome {
	return Outcome{Kind: OutcomeParseError, Err: NewParseError(vendor, cause)}
}
