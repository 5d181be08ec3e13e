package finding

import (
	"github.com/Code-Monger/InkPilot/pkg/spanlocate"
)

// ResolveOptions tunes how claimed text is located.
type ResolveOptions struct {
	// UseContext anchors the search on the finding's context phrase when
	// the claimed text occurs more than once.
	UseContext bool
}

// Resolve locates every finding in text and returns the ones that were
// found, each carrying its range, in input order. Findings that cannot be
// located are dropped and counted; that is expected annotator noise, not
// an error. Incoming ranges are ignored: they may belong to another text.
func Resolve(text string, findings []Finding, opts ResolveOptions) (resolved []Finding, dropped int) {
	if len(findings) == 0 {
		return nil, 0
	}
	proj := spanlocate.NewProjection(text)
	resolved = make([]Finding, 0, len(findings))
	for _, f := range findings {
		var (
			r  spanlocate.Range
			ok bool
		)
		if opts.UseContext {
			r, ok = proj.LocateInContext(f.ClaimedText, f.Context)
		} else {
			r, ok = proj.Locate(f.ClaimedText)
		}
		if !ok {
			dropped++
			continue
		}
		f.Range = &r
		resolved = append(resolved, f)
	}
	return resolved, dropped
}
