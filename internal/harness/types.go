package harness

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: backends agree and every assertion
	// holds.
	Pass bool `json:"pass"`

	// Filter is the outline of the parsed filter tree.
	Filter string `json:"filter"`

	// Sort is the parsed sort directives, rendered as a sort parameter.
	Sort string `json:"sort"`

	// Records are the records the query returned, in order.
	Records []any `json:"records"`

	// SQL is the compiled statement when the SQLite backend ran.
	SQL string `json:"sql,omitempty"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Records: []any{},
		Errors:  []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
