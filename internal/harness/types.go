package harness

import (
	"github.com/roach88/beltline/internal/engine"
	"github.com/roach88/beltline/internal/ir"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// Errors contains one message per failed assertion.
	Errors []string `json:"errors,omitempty"`

	RunID       string                        `json:"runId"`
	Results     map[string]*ir.Result         `json:"results"`
	Edges       map[string]*ir.EdgeAnnotation `json:"edges"`
	Diagnostics []ir.Diagnostic               `json:"diagnostics"`
	Efficiency  []engine.Efficiency           `json:"efficiency,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:        true,
		Errors:      []string{},
		Results:     map[string]*ir.Result{},
		Edges:       map[string]*ir.EdgeAnnotation{},
		Diagnostics: []ir.Diagnostic{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// record copies a compute report into the result.
func (r *Result) record(rep *engine.Report, diags []ir.Diagnostic, eff []engine.Efficiency) {
	r.RunID = rep.RunID
	r.Results = rep.Results
	r.Edges = rep.Edges
	r.Diagnostics = append(r.Diagnostics, diags...)
	r.Efficiency = eff
}
