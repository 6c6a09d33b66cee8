package harness

import "fmt"

// Result is the outcome of a scenario execution.
type Result struct {
	Scenario string `json:"scenario"`

	// Pass indicates overall success: every expectation held.
	Pass bool `json:"pass"`

	// IDs are the id_field values of the returned page, in order.
	// Records without the field report nil.
	IDs []any `json:"ids"`

	Total      int  `json:"total"`
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`

	// Digest identifies the full page (records included).
	Digest string `json:"digest,omitempty"`

	// QueryError is the query's error message when it was rejected.
	QueryError string `json:"query_error,omitempty"`

	// Errors contains failed expectations. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult(name string) *Result {
	return &Result{
		Scenario: name,
		Pass:     true,
		IDs:      []any{},
		Errors:   []string{},
	}
}

// AddError adds a failed expectation and marks the result as failed.
func (r *Result) AddError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Pass = false
}
