// Package session keeps the open editor documents and the findings
// currently attached to each of them.
package session

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Code-Monger/InkPilot/pkg/document"
	"github.com/Code-Monger/InkPilot/pkg/finding"
	"github.com/Code-Monger/InkPilot/pkg/highlight"
)

var (
	// ErrSessionNotFound is returned for unknown session IDs.
	ErrSessionNotFound = errors.New("session not found")
	// ErrFindingNotFound is returned when a finding ID is not attached to the session.
	ErrFindingNotFound = errors.New("finding not found")
	// ErrNoRange is returned when applying a finding that was never located.
	ErrNoRange = errors.New("finding has no range")
	// ErrNoReplacement is returned when no replacement was given and the finding offers none.
	ErrNoReplacement = errors.New("no replacement available")
)

// Session is one open document with its current grammar and style findings.
// Values returned by Store are copies.
type Session struct {
	ID         string            `json:"id"`
	UserID     string            `json:"user_id,omitempty"`
	ProjectID  string            `json:"project_id,omitempty"`
	Title      string            `json:"title,omitempty"`
	Document   document.Document `json:"document"`
	Grammar    []finding.Finding `json:"grammar"`
	Style      []finding.Finding `json:"style"`
	OpenedAt   time.Time         `json:"opened_at"`
	LastAccess time.Time         `json:"last_access"`
}

// Findings returns grammar findings followed by style findings.
func (s Session) Findings() []finding.Finding {
	all := make([]finding.Finding, 0, len(s.Grammar)+len(s.Style))
	all = append(all, s.Grammar...)
	return append(all, s.Style...)
}

// Lookup returns the finding with the given ID from either list, or only
// from kind's list when kind is non-empty. A non-empty kind also accepts the
// ID the finding had before it was qualified, so (style, "1") finds
// "style:1". With an empty kind, "style:1" also finds a style finding "1".
func (s Session) Lookup(kind finding.Kind, id string) (finding.Finding, bool) {
	for _, list := range s.lists(kind) {
		for _, f := range list {
			if f.ID == id {
				return f, true
			}
		}
	}

	if kind == "" {
		if prefix, rest, ok := strings.Cut(id, ":"); ok {
			if k, err := finding.ParseKind(prefix); err == nil {
				return s.Lookup(k, rest)
			}
		}
		return finding.Finding{}, false
	}

	qualified := finding.QualifiedID(kind, id)
	for _, list := range s.lists(kind) {
		for _, f := range list {
			if f.ID == qualified {
				return f, true
			}
		}
	}
	return finding.Finding{}, false
}

func (s Session) lists(kind finding.Kind) [][]finding.Finding {
	switch kind {
	case "":
		return [][]finding.Finding{s.Grammar, s.Style}
	case finding.KindGrammar:
		return [][]finding.Finding{s.Grammar}
	case finding.KindStyle:
		return [][]finding.Finding{s.Style}
	}
	return nil
}

func (s *Session) clone() Session {
	c := *s
	c.Grammar = append([]finding.Finding(nil), s.Grammar...)
	c.Style = append([]finding.Finding(nil), s.Style...)
	return c
}

func (s *Session) clearFindings() {
	s.Grammar = nil
	s.Style = nil
}

// Completion summarizes one analysis result attached to a session.
type Completion struct {
	Kind     finding.Kind `json:"kind"`
	Resolved int          `json:"resolved"`
	Dropped  int          `json:"dropped"`
	Revision uint64       `json:"revision"`
}

// Store manages the sessions of every connected editor.
type Store struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
	resolve  finding.ResolveOptions
	now      func() time.Time
}

// NewStore creates an empty store. opts controls how findings are located
// when analyses complete.
func NewStore(opts finding.ResolveOptions) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		resolve:  opts,
		now:      time.Now,
	}
}

// Open starts a session over text. An empty id is replaced by a new one;
// reopening an existing id replaces its document and drops its findings.
func (s *Store) Open(id, userID, projectID, title, text string) Session {
	if id == "" {
		id = "session-" + uuid.NewString()[:8]
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := s.now()
	sess := &Session{
		ID:         id,
		UserID:     userID,
		ProjectID:  projectID,
		Title:      title,
		Document:   document.New(text),
		OpenedAt:   now,
		LastAccess: now,
	}
	s.sessions[id] = sess
	log.Printf("[Session] Opened session %s (%d bytes)", id, sess.Document.Len())
	return sess.clone()
}

// Get returns a copy of the session.
func (s *Store) Get(id string) (Session, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	sess.LastAccess = s.now()
	return sess.clone(), nil
}

// Snapshot returns the session's current document and owner. Analyses run
// against the snapshot while the session keeps accepting edits.
func (s *Store) Snapshot(id string) (document.Document, string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return document.Document{}, "", fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess.Document, sess.UserID, nil
}

// Close forgets the session.
func (s *Store) Close(id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(s.sessions, id)
	log.Printf("[Session] Closed session %s", id)
	return nil
}

// List returns copies of every session, oldest first.
func (s *Store) List() []Session {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	list := make([]Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		list = append(list, sess.clone())
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].OpenedAt.Equal(list[j].OpenedAt) {
			return list[i].OpenedAt.Before(list[j].OpenedAt)
		}
		return list[i].ID < list[j].ID
	})
	return list
}

// Count returns the number of open sessions.
func (s *Store) Count() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.sessions)
}

// SetText replaces the document with an edited text. Every finding is
// dropped because its range may no longer hold.
func (s *Store) SetText(id, text string) (Session, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	next := document.New(text)
	next.Revision = sess.Document.Revision + 1
	sess.Document = next
	sess.clearFindings()
	sess.LastAccess = s.now()
	return sess.clone(), nil
}

// CompleteAnalysis attaches the findings of one finished analysis. They are
// resolved against the document as it is now, which may be newer than the
// text that was analyzed, and replace the previous list of the same kind.
// IDs that clash with the other kind's findings are qualified with the
// kind, see finding.UniqueIDs.
func (s *Store) CompleteAnalysis(id string, kind finding.Kind, findings []finding.Finding) (Completion, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Completion{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	resolved, dropped := finding.Resolve(sess.Document.Text, findings, s.resolve)
	switch kind {
	case finding.KindGrammar:
		sess.Grammar = finding.UniqueIDs(kind, resolved, sess.Style)
	case finding.KindStyle:
		sess.Style = finding.UniqueIDs(kind, resolved, sess.Grammar)
	default:
		return Completion{}, fmt.Errorf("unknown finding kind: %q", kind)
	}
	sess.LastAccess = s.now()

	if dropped > 0 {
		log.Printf("[Session] %s: %d of %d %s findings could not be located", id, dropped, len(findings), kind)
	}
	return Completion{
		Kind:     kind,
		Resolved: len(resolved),
		Dropped:  dropped,
		Revision: sess.Document.Revision,
	}, nil
}

// Highlights assembles the current document and findings into segments.
func (s *Store) Highlights(id string) ([]highlight.Segment, error) {
	sess, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return highlight.Assemble(sess.Document.Text, sess.Findings()), nil
}

// ApplySuggestion splices a replacement over the finding's range. kind may
// be empty; see Session.Lookup. A nil replacement selects the finding's
// first suggestion and an empty one deletes the span. Afterwards every
// finding of both kinds is discarded, whether or not it overlapped the
// edit, until the next analysis completes.
func (s *Store) ApplySuggestion(id string, kind finding.Kind, findingID string, replacement *string) (Session, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	f, ok := sess.Lookup(kind, findingID)
	if !ok {
		return Session{}, fmt.Errorf("%w: %s", ErrFindingNotFound, findingID)
	}
	if !f.Resolved() {
		return Session{}, fmt.Errorf("%w: %s", ErrNoRange, f.ID)
	}

	var text string
	switch {
	case replacement != nil:
		text = *replacement
	case f.Actionable():
		text = f.Replacements[0]
	default:
		return Session{}, fmt.Errorf("%w: %s", ErrNoReplacement, f.ID)
	}

	next, err := document.Apply(sess.Document, *f.Range, text)
	if err != nil {
		return Session{}, fmt.Errorf("failed to apply %s: %w", f.ID, err)
	}
	sess.Document = next
	sess.clearFindings()
	sess.LastAccess = s.now()

	source := "custom replacement"
	if f.HasReplacement(text) {
		source = "suggestion"
	}
	log.Printf("[Session] %s: applied %s of %s at %s, now revision %d", id, source, f.ID, f.Range, next.Revision)
	return sess.clone(), nil
}
