package classify

import (
	"context"
	"fmt"
)

// SectionType labels what kind of documentation a section contains.
type SectionType string

const (
	TypeEndpoint SectionType = "endpoint"
	TypeConcept  SectionType = "concept"
	TypeOverview SectionType = "overview"
	TypeOther    SectionType = "other"
)

// Record is the structured classification of one documentation section,
// as produced by an LLM backend.
type Record struct {
	SectionType      SectionType `json:"section_type"`
	RelatedEndpoints []string    `json:"related_endpoints"`
	Filename         string      `json:"filename"`
	Content          string      `json:"content"`
}

// Input is the read-only triple a gateway classifies. It carries no shared
// state, so callers may fan out concurrent Classify calls over it.
type Input struct {
	Title       string
	Content     string
	Breadcrumbs []string
}

// Gateway maps a section to a classification record or signals failure.
// Implementations may be remote and latent; callers bound each call with a
// context deadline.
type Gateway interface {
	Classify(ctx context.Context, in Input) (*Record, error)
}

// FailureKind distinguishes content-policy refusals from transport or
// parse failures.
type FailureKind string

const (
	KindRefusal FailureKind = "refusal"
	KindError   FailureKind = "error"
)

// Failure is a terminal classification failure for one unit. The dispatch
// layer records it and drops the unit; it never aborts the run.
type Failure struct {
	Kind   FailureKind
	Detail string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("classification %s: %s", f.Kind, f.Detail)
}

// RetryableError indicates a transient transport failure worth retrying.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
