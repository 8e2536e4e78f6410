// Package matcher implements the prioritized, regex-based rule matcher that
// maps merchant and description text to a category and subcategory.
package matcher

import (
	"regexp"
	"sort"
	"sync"

	"fjacquet/spendsense/internal/logging"
	"fjacquet/spendsense/internal/models"
)

// compiledRule pairs a rule with its compiled case-insensitive pattern.
type compiledRule struct {
	rule models.MerchantRule
	re   *regexp.Regexp
}

// RuleSet is an immutable snapshot of the active rules, compiled and sorted
// into match order. A snapshot is taken at the start of a batch run and
// passed explicitly into the matcher; there is no hidden global rule state.
type RuleSet struct {
	version string
	rules   []compiledRule
}

// NewRuleSet compiles the given rules into a snapshot. Rules are sorted by
// ascending priority, then creation time, then id, guaranteeing a total
// order even when the caller's ordering is unspecified. A pattern that fails
// to compile is skipped with a warning; the validating write path should
// have rejected it already.
func NewRuleSet(version string, rules []models.MerchantRule, logger logging.Logger) *RuleSet {
	if logger == nil {
		logger = logging.GetLogger()
	}

	sorted := make([]models.MerchantRule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Priority != sorted[j].Priority {
			return sorted[i].Priority < sorted[j].Priority
		}
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		}
		return sorted[i].ID < sorted[j].ID
	})

	compiled := make([]compiledRule, 0, len(sorted))
	for _, rule := range sorted {
		re, err := regexp.Compile("(?i)" + rule.Pattern)
		if err != nil {
			logger.WithError(err).WithFields(
				logging.Field{Key: logging.FieldRuleID, Value: rule.ID},
				logging.Field{Key: "pattern", Value: rule.Pattern},
			).Warn("Skipping rule with invalid pattern")
			continue
		}
		compiled = append(compiled, compiledRule{rule: rule, re: re})
	}

	return &RuleSet{version: version, rules: compiled}
}

// Version returns the rule-set fingerprint this snapshot was compiled from.
func (rs *RuleSet) Version() string {
	return rs.version
}

// Len returns the number of usable rules in the snapshot.
func (rs *RuleSet) Len() int {
	return len(rs.rules)
}

// RuleSource is the repository surface the snapshot provider reads from.
type RuleSource interface {
	ActiveRules(tenantID string) ([]models.MerchantRule, error)
	RuleSetVersion() (string, error)
}

// SnapshotProvider hands out rule-set snapshots, caching the compiled form
// per tenant and recompiling only when the repository's rule-set version
// changes. Different tenants see different active rules, so one process
// enriching several users keeps one cached snapshot per tenant. In-flight
// runs holding a slightly older snapshot are acceptable; rule edits only
// affect future runs.
type SnapshotProvider struct {
	source RuleSource
	logger logging.Logger

	mu     sync.Mutex
	cached map[string]*RuleSet
}

// NewSnapshotProvider creates a provider over the given rule source.
func NewSnapshotProvider(source RuleSource, logger logging.Logger) *SnapshotProvider {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &SnapshotProvider{
		source: source,
		logger: logger,
		cached: make(map[string]*RuleSet),
	}
}

// Snapshot returns the current rule-set snapshot for a tenant, reusing the
// tenant's cached compile when the repository version is unchanged.
func (p *SnapshotProvider) Snapshot(tenantID string) (*RuleSet, error) {
	version, err := p.source.RuleSetVersion()
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if cached, ok := p.cached[tenantID]; ok && cached.version == version {
		return cached, nil
	}

	rules, err := p.source.ActiveRules(tenantID)
	if err != nil {
		return nil, err
	}

	snapshot := NewRuleSet(version, rules, p.logger)
	p.cached[tenantID] = snapshot
	p.logger.WithFields(
		logging.Field{Key: logging.FieldCount, Value: snapshot.Len()},
		logging.Field{Key: "version", Value: version},
	).Debug("Compiled rule set snapshot")

	return snapshot, nil
}
