// Package quota enforces the daily analysis limits of each user's plan.
package quota

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Code-Monger/InkPilot/pkg/finding"
)

// Plan is a user's subscription level.
type Plan string

const (
	PlanFree       Plan = "free"
	PlanPro        Plan = "pro"
	PlanEnterprise Plan = "enterprise"
)

// Unlimited is reported as the limit and remaining count of paid plans.
const Unlimited = -1

// ParsePlan validates a plan name.
func ParsePlan(s string) (Plan, error) {
	switch p := Plan(strings.ToLower(strings.TrimSpace(s))); p {
	case PlanFree, PlanPro, PlanEnterprise:
		return p, nil
	}
	return "", fmt.Errorf("unknown plan: %q", s)
}

// Limited reports whether the plan has daily limits.
func (p Plan) Limited() bool {
	return p == PlanFree || p == ""
}

// Limits are the free plan's daily allowances per kind.
type Limits struct {
	Grammar int `yaml:"grammar" toml:"grammar" json:"grammar"`
	Style   int `yaml:"style" toml:"style" json:"style"`
}

// DefaultLimits allow ten grammar checks and ten style passes a day.
func DefaultLimits() Limits {
	return Limits{Grammar: 10, Style: 10}
}

func (l Limits) of(kind finding.Kind) int {
	if kind == finding.KindStyle {
		return l.Style
	}
	return l.Grammar
}

// Record is the persisted usage of one user.
type Record struct {
	UserID       string    `json:"user_id"`
	Plan         Plan      `json:"plan"`
	GrammarToday int       `json:"grammar_today"`
	StyleToday   int       `json:"style_today"`
	LastReset    time.Time `json:"last_reset"`
}

func (r *Record) used(kind finding.Kind) int {
	if kind == finding.KindStyle {
		return r.StyleToday
	}
	return r.GrammarToday
}

func (r *Record) increment(kind finding.Kind) {
	if kind == finding.KindStyle {
		r.StyleToday++
	} else {
		r.GrammarToday++
	}
}

// ResetTime is 24 hours after the last reset.
func (r *Record) ResetTime() time.Time {
	return r.LastReset.Add(24 * time.Hour)
}

// Decision is the outcome of one quota check.
type Decision struct {
	Allowed   bool      `json:"allowed"`
	Remaining int       `json:"remaining"`
	Limit     int       `json:"limit"`
	ResetTime time.Time `json:"reset_time"`
}

// Err returns an *ExceededError for a denied decision and nil otherwise.
func (d Decision) Err(kind finding.Kind) error {
	if d.Allowed {
		return nil
	}
	return &ExceededError{Kind: kind, Limit: d.Limit, ResetTime: d.ResetTime}
}

// ExceededError reports that a user has used up a kind's daily allowance.
type ExceededError struct {
	Kind      finding.Kind
	Limit     int
	ResetTime time.Time
}

func (e *ExceededError) Error() string {
	return fmt.Sprintf("daily %s limit of %d reached, resets at %s", e.Kind, e.Limit, e.ResetTime.Format(time.RFC3339))
}

// IsExceeded reports whether err is or wraps an *ExceededError.
func IsExceeded(err error) bool {
	var exceeded *ExceededError
	return errors.As(err, &exceeded)
}

// KindUsage is one kind's line of a usage summary.
type KindUsage struct {
	Used      int `json:"used"`
	Limit     int `json:"limit"`
	Remaining int `json:"remaining"`
}

// Summary is a user's current usage.
type Summary struct {
	UserID    string    `json:"user_id"`
	Plan      Plan      `json:"plan"`
	Grammar   KindUsage `json:"grammar"`
	Style     KindUsage `json:"style"`
	ResetTime time.Time `json:"reset_time"`
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// Manager tracks usage per user and persists it to a JSON file.
type Manager struct {
	records  map[string]*Record
	limits   Limits
	filePath string
	mutex    sync.Mutex
	now      func() time.Time
}

// NewManager loads usage from filePath. An empty filePath keeps usage in
// memory only.
func NewManager(filePath string, limits Limits, opts ...Option) (*Manager, error) {
	m := &Manager{
		records:  make(map[string]*Record),
		limits:   limits,
		filePath: filePath,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if filePath == "" {
		return m, nil
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory for usage file: %w", err)
	}
	data, err := os.ReadFile(filePath)
	switch {
	case err == nil:
		var records []*Record
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("failed to parse usage file: %w", err)
		}
		for _, r := range records {
			m.records[r.UserID] = r
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read usage file: %w", err)
	}
	return m, nil
}

// Limits returns the configured free plan limits.
func (m *Manager) Limits() Limits {
	return m.limits
}

// newDay reports whether now falls on a later calendar day than the last
// reset, both read in now's location.
func newDay(r *Record, now time.Time) bool {
	ny, nm, nd := now.Date()
	ly, lm, ld := r.LastReset.In(now.Location()).Date()
	return ny != ly || nm != lm || nd != ld
}

// record returns the user's record, creating a free one on first use.
// The caller holds the lock.
func (m *Manager) record(userID string) (*Record, bool) {
	r, ok := m.records[userID]
	if !ok {
		r = &Record{UserID: userID, Plan: PlanFree, LastReset: m.now()}
		m.records[userID] = r
	}
	return r, !ok
}

// Check consumes one use of kind for userID if the plan allows it. Counters
// reset when the calendar day changes. A denied check consumes nothing. The
// returned error reports a persistence failure; the decision still holds.
func (m *Manager) Check(userID string, kind finding.Kind) (Decision, error) {
	if _, err := finding.ParseKind(string(kind)); err != nil {
		return Decision{}, err
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	r, changed := m.record(userID)
	now := m.now()
	if newDay(r, now) {
		r.GrammarToday, r.StyleToday = 0, 0
		r.LastReset = now
		changed = true
	}

	if !r.Plan.Limited() {
		var err error
		if changed {
			err = m.save()
		}
		return Decision{Allowed: true, Remaining: Unlimited, Limit: Unlimited, ResetTime: r.ResetTime()}, err
	}

	limit := m.limits.of(kind)
	used := r.used(kind)
	if used >= limit {
		var err error
		if changed {
			err = m.save()
		}
		log.Printf("[Quota] Denied %s for user %s: %d/%d used", kind, userID, used, limit)
		return Decision{Allowed: false, Remaining: 0, Limit: limit, ResetTime: r.ResetTime()}, err
	}

	r.increment(kind)
	return Decision{
		Allowed:   true,
		Remaining: limit - used - 1,
		Limit:     limit,
		ResetTime: r.ResetTime(),
	}, m.save()
}

// Usage reports the user's usage without consuming anything.
func (m *Manager) Usage(userID string) Summary {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	r, ok := m.records[userID]
	if !ok {
		r = &Record{UserID: userID, Plan: PlanFree, LastReset: m.now()}
	}

	grammarUsed, styleUsed := r.GrammarToday, r.StyleToday
	if newDay(r, m.now()) {
		grammarUsed, styleUsed = 0, 0
	}

	return Summary{
		UserID:    userID,
		Plan:      r.Plan,
		Grammar:   m.kindUsage(r.Plan, finding.KindGrammar, grammarUsed),
		Style:     m.kindUsage(r.Plan, finding.KindStyle, styleUsed),
		ResetTime: r.ResetTime(),
	}
}

func (m *Manager) kindUsage(plan Plan, kind finding.Kind, used int) KindUsage {
	if !plan.Limited() {
		return KindUsage{Used: used, Limit: Unlimited, Remaining: Unlimited}
	}
	limit := m.limits.of(kind)
	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}
	return KindUsage{Used: used, Limit: limit, Remaining: remaining}
}

// SetPlan changes a user's plan.
func (m *Manager) SetPlan(userID string, plan Plan) error {
	if _, err := ParsePlan(string(plan)); err != nil {
		return err
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	r, _ := m.record(userID)
	r.Plan = plan
	log.Printf("[Quota] User %s moved to plan %s", userID, plan)
	return m.save()
}

// save writes every record; the caller holds the lock.
func (m *Manager) save() error {
	if m.filePath == "" {
		return nil
	}
	records := make([]*Record, 0, len(m.records))
	for _, r := range m.records {
		records = append(records, r)
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal usage: %w", err)
	}
	if err := os.WriteFile(m.filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write usage file: %w", err)
	}
	return nil
}
