// Package annotate produces findings for a text, either from a hosted
// language model or from the offline spell checker.
package annotate

import (
	"context"

	"github.com/Code-Monger/InkPilot/pkg/finding"
)

// Result is one annotator response after boundary validation.
type Result struct {
	Findings []finding.Finding
	// Rejected lists wire entries that were dropped as malformed.
	Rejected []finding.Rejection
	// RequestID correlates the result with the annotator's logs.
	RequestID string
}

// Annotator makes claims about a text. Returned findings are unresolved:
// their claimed text still has to be located in the document.
type Annotator interface {
	Annotate(ctx context.Context, kind finding.Kind, text string) (Result, error)
	Name() string
}
