package harness

// Encoding is the encoding of one scenario value.
type Encoding struct {
	Index int    `json:"index"`
	Value string `json:"value"` // JSON text of the value
	Hex   string `json:"hex"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every enabled check succeeded.
	Pass bool `json:"pass"`

	// Schema is the one-line rendering of the compiled schema.
	Schema string `json:"schema"`

	// Fingerprint identifies the compiled schema.
	Fingerprint string `json:"fingerprint"`

	// Encodings holds the encoding of every value, in scenario order.
	Encodings []Encoding `json:"encodings"`

	// Order lists value indices in ascending codec order. Equal values keep
	// their scenario order.
	Order []int `json:"order"`

	// Errors contains check failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:      true,
		Encodings: []Encoding{},
		Order:     []int{},
		Errors:    []string{},
	}
}

// AddError adds a check failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
