// Package harness sequences the experiment phases: one build, the case
// study variants, and the scalability sweep over benchmark models.
package harness

// Phase names a stage of a run.
type Phase string

const (
	PhaseBuild     Phase = "build"
	PhaseCaseStudy Phase = "case-study"
	PhaseSweep     Phase = "sweep"
)

// Step is one planned invocation together with what it belongs to.
// Subject is the case study name or benchmark id; Label is the variant
// label and is empty outside case studies.
type Step struct {
	Phase      Phase      `json:"phase"`
	Subject    string     `json:"subject,omitempty"`
	Label      string     `json:"label,omitempty"`
	Invocation Invocation `json:"invocation"`
}

// Record is a step the harness actually ran and what it observed.
type Record struct {
	Step
	Outcome Outcome `json:"-"`
}
