package query

// Kind identifies why a chart request was rejected. The taxonomy is closed:
// every rejection maps to exactly one kind.
type Kind string

const (
	KindUnknownTable         Kind = "unknown_table"
	KindUnknownColumn        Kind = "unknown_column"
	KindPiiViolation         Kind = "pii_violation"
	KindUnknownChartType     Kind = "unknown_chart_type"
	KindUnknownAggregation   Kind = "unknown_aggregation"
	KindNonNumericAggTarget  Kind = "non_numeric_aggregation_target"
	KindMissingRequiredField Kind = "missing_required_field"
)

// ValidationError is a structured rejection. It is returned as a value, never
// thrown across the validation boundary, and it carries the allowed set so
// the caller (often an LLM) can self-correct. It never contains SQL text,
// stack traces, or connection details.
type ValidationError struct {
	Kind      Kind     `json:"kind"`
	Message   string   `json:"message"`
	Available []string `json:"available_options,omitempty"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

// WireError is the JSON shape handed back to clients on rejection.
type WireError struct {
	Error            string   `json:"error"`
	AvailableTables  []string `json:"available_tables,omitempty"`
	AvailableColumns []string `json:"available_columns,omitempty"`
	NumericColumns   []string `json:"numeric_columns,omitempty"`
}

// Wire maps the rejection onto its client-facing shape; the allowed set lands
// in the field matching the rejection kind.
func (e *ValidationError) Wire() WireError {
	w := WireError{Error: e.Message}

	switch e.Kind {
	case KindUnknownTable:
		w.AvailableTables = e.Available
	case KindUnknownColumn, KindPiiViolation:
		w.AvailableColumns = e.Available
	case KindNonNumericAggTarget, KindMissingRequiredField:
		w.NumericColumns = e.Available
	}

	return w
}

func newValidationError(kind Kind, message string, available []string) *ValidationError {
	return &ValidationError{Kind: kind, Message: message, Available: available}
}
