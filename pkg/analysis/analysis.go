// Package analysis runs grammar and style passes over an editor session.
// Each pass is gated by the user's daily quota, runs concurrently with the
// other kind and attaches its findings to whatever the document has become
// by the time it completes.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Code-Monger/InkPilot/pkg/annotate"
	"github.com/Code-Monger/InkPilot/pkg/finding"
	"github.com/Code-Monger/InkPilot/pkg/metrics"
	"github.com/Code-Monger/InkPilot/pkg/quota"
	"github.com/Code-Monger/InkPilot/pkg/session"
)

// AnonymousUser is the quota account of sessions opened without a user.
const AnonymousUser = "anonymous"

// Pass outcomes, also used as metric labels.
const (
	StatusOK            = "ok"
	StatusError         = "error"
	StatusQuotaExceeded = "quota_exceeded"
)

// Outcome is the result of one pass.
type Outcome struct {
	Kind   finding.Kind `json:"kind"`
	Status string       `json:"status"`
	// Resolved findings are attached to the session and highlighted.
	Resolved int `json:"resolved"`
	// Dropped findings could not be located in the current document.
	Dropped int `json:"dropped"`
	// Rejected findings were malformed on the wire.
	Rejected int `json:"rejected"`
	// AnalyzedRevision is the revision of the text sent to the annotator;
	// Revision is the one the findings were resolved against.
	AnalyzedRevision uint64          `json:"analyzed_revision"`
	Revision         uint64          `json:"revision"`
	Quota            *quota.Decision `json:"quota,omitempty"`
	Err              error           `json:"-"`
}

// Result collects the outcome of every requested kind, in rendering
// priority order.
type Result struct {
	SessionID string    `json:"session_id"`
	Outcomes  []Outcome `json:"outcomes"`
}

// Outcome returns the outcome of kind.
func (r Result) Outcome(kind finding.Kind) (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Kind == kind {
			return o, true
		}
	}
	return Outcome{}, false
}

// Err joins the errors of the failed passes.
func (r Result) Err() error {
	var errs []error
	for _, o := range r.Outcomes {
		if o.Err != nil {
			errs = append(errs, o.Err)
		}
	}
	return errors.Join(errs...)
}

// Analyzer runs analysis passes against the session store.
type Analyzer struct {
	store     *session.Store
	annotator annotate.Annotator
	quotas    *quota.Manager
	metrics   *metrics.Metrics
}

// NewAnalyzer creates an analyzer. A nil quotas manager disables quota
// checks and a nil metrics records nothing.
func NewAnalyzer(store *session.Store, annotator annotate.Annotator, quotas *quota.Manager, m *metrics.Metrics) *Analyzer {
	return &Analyzer{
		store:     store,
		annotator: annotator,
		quotas:    quotas,
		metrics:   m,
	}
}

// Annotator returns the annotator passes are sent to.
func (a *Analyzer) Annotator() annotate.Annotator {
	return a.annotator
}

// Analyze runs the requested kinds, or every kind when none are given,
// against a snapshot of the session text. The returned error is reserved
// for requests that cannot start at all; per-kind failures, including
// quota denials, are reported in the outcomes.
func (a *Analyzer) Analyze(ctx context.Context, sessionID string, kinds []finding.Kind) (Result, error) {
	kinds, err := normalizeKinds(kinds)
	if err != nil {
		return Result{}, err
	}

	doc, userID, err := a.store.Snapshot(sessionID)
	if err != nil {
		return Result{}, err
	}
	if userID == "" {
		userID = AnonymousUser
	}

	log.Printf("[Analysis] Session %s revision %d: running %v with %s", sessionID, doc.Revision, kinds, a.annotator.Name())

	outcomes := make([]Outcome, len(kinds))
	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		g.Go(func() error {
			outcomes[i] = a.runPass(gctx, sessionID, userID, kind, doc.Text, doc.Revision)
			return nil
		})
	}
	_ = g.Wait()

	return Result{SessionID: sessionID, Outcomes: outcomes}, nil
}

// runPass performs one kind's quota check, annotator request and
// resolution. A failure here never affects the other kind.
func (a *Analyzer) runPass(ctx context.Context, sessionID, userID string, kind finding.Kind, text string, revision uint64) Outcome {
	outcome := Outcome{Kind: kind, AnalyzedRevision: revision}
	fail := func(status string, err error) Outcome {
		outcome.Status = status
		outcome.Err = err
		a.metrics.AnalysisPass(string(kind), status)
		log.Printf("[Analysis] Session %s %s pass failed: %v", sessionID, kind, err)
		return outcome
	}

	if a.quotas != nil {
		decision, err := a.quotas.Check(userID, kind)
		if err != nil {
			// The decision stands even when it could not be persisted
			log.Printf("[Analysis] Error saving quota for user %s: %v", userID, err)
		}
		a.metrics.QuotaDecision(string(kind), decision.Allowed)
		outcome.Quota = &decision
		if !decision.Allowed {
			return fail(StatusQuotaExceeded, decision.Err(kind))
		}
	}

	startTime := time.Now()
	result, err := a.annotator.Annotate(ctx, kind, text)
	a.metrics.ObserveAnnotate(a.annotator.Name(), string(kind), time.Since(startTime))
	if err != nil {
		return fail(StatusError, fmt.Errorf("%s analysis: %w", kind, err))
	}

	completion, err := a.store.CompleteAnalysis(sessionID, kind, result.Findings)
	if err != nil {
		return fail(StatusError, fmt.Errorf("%s analysis: %w", kind, err))
	}

	outcome.Status = StatusOK
	outcome.Resolved = completion.Resolved
	outcome.Dropped = completion.Dropped
	outcome.Rejected = len(result.Rejected)
	outcome.Revision = completion.Revision

	a.metrics.AnalysisPass(string(kind), StatusOK)
	a.metrics.Findings(string(kind), outcome.Resolved, outcome.Dropped, outcome.Rejected)
	log.Printf("[Analysis] Session %s %s pass: %d resolved, %d dropped, %d rejected (revision %d -> %d)",
		sessionID, kind, outcome.Resolved, outcome.Dropped, outcome.Rejected, revision, outcome.Revision)
	return outcome
}

// normalizeKinds validates kinds, removes duplicates and orders them by
// rendering priority.
func normalizeKinds(kinds []finding.Kind) ([]finding.Kind, error) {
	if len(kinds) == 0 {
		return append([]finding.Kind(nil), finding.Kinds...), nil
	}

	requested := make(map[finding.Kind]bool)
	for _, k := range kinds {
		kind, err := finding.ParseKind(string(k))
		if err != nil {
			return nil, err
		}
		requested[kind] = true
	}

	var ordered []finding.Kind
	for _, k := range finding.Kinds {
		if requested[k] {
			ordered = append(ordered, k)
		}
	}
	return ordered, nil
}
