package harness

// TraceEvent records one flow step and what it produced.
type TraceEvent struct {
	// Step is the 1-based position in the flow.
	Step   int    `json:"step"`
	Action string `json:"action"`
	Member string `json:"member,omitempty"`
	Book   string `json:"book,omitempty"`

	// Outcome is the outcome kind for borrow/return, "ok" for adds and
	// "found" or "none" for most_borrowed.
	Outcome string `json:"outcome"`
	Message string `json:"message"`

	// Count is the borrow count reported by most_borrowed.
	Count int `json:"count,omitempty"`

	// Seq is the journal sequence number of a borrow or return. Zero for
	// steps that are not journaled.
	Seq int64 `json:"seq,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success.
	// True if every expect clause and assertion matched.
	Pass bool `json:"pass"`

	// Trace contains one event per flow step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends an event, numbering it after the previous one.
func (r *Result) AddTrace(ev TraceEvent) {
	ev.Step = len(r.Trace) + 1
	r.Trace = append(r.Trace, ev)
}
