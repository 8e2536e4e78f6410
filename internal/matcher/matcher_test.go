package matcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/spendsense/internal/logging"
	"fjacquet/spendsense/internal/models"
)

func TestRuleSet_Match_PriorityOrder(t *testing.T) {
	rules := []models.MerchantRule{
		{
			ID:           2,
			Priority:     25,
			AppliesTo:    models.RuleFieldDescription,
			Pattern:      "petro",
			CategoryCode: "shopping",
		},
		{
			ID:           1,
			Priority:     15,
			AppliesTo:    models.RuleFieldDescription,
			Pattern:      "petro",
			CategoryCode: "fuel",
		},
	}

	rs := NewRuleSet("v1", rules, &logging.MockLogger{})
	match, found := rs.Match(Input{Description: "HP PETRO PUMP"})

	require.True(t, found)
	assert.Equal(t, "fuel", match.CategoryCode, "lower priority value must win")
	assert.Equal(t, uint(1), match.RuleID)
}

func TestRuleSet_Match_EqualPriorityTieBreak(t *testing.T) {
	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		rules    []models.MerchantRule
		expected uint
	}{
		{
			name: "earlier creation wins",
			rules: []models.MerchantRule{
				{ID: 9, Priority: 10, AppliesTo: models.RuleFieldDescription, Pattern: "uber", CategoryCode: "b", CreatedAt: newer},
				{ID: 7, Priority: 10, AppliesTo: models.RuleFieldDescription, Pattern: "uber", CategoryCode: "a", CreatedAt: older},
			},
			expected: 7,
		},
		{
			name: "identical creation falls back to rule id",
			rules: []models.MerchantRule{
				{ID: 9, Priority: 10, AppliesTo: models.RuleFieldDescription, Pattern: "uber", CategoryCode: "b", CreatedAt: older},
				{ID: 7, Priority: 10, AppliesTo: models.RuleFieldDescription, Pattern: "uber", CategoryCode: "a", CreatedAt: older},
			},
			expected: 7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := NewRuleSet("v1", tt.rules, &logging.MockLogger{})
			match, found := rs.Match(Input{Description: "UBER TRIP"})
			require.True(t, found)
			assert.Equal(t, tt.expected, match.RuleID)
		})
	}
}

func TestRuleSet_Match_FieldTargeting(t *testing.T) {
	rules := []models.MerchantRule{
		{ID: 1, Priority: 5, AppliesTo: models.RuleFieldMerchant, Pattern: "swiggy", CategoryCode: "food_dining"},
		{ID: 2, Priority: 10, AppliesTo: models.RuleFieldDescription, Pattern: "swiggy", CategoryCode: "shopping"},
	}
	rs := NewRuleSet("v1", rules, &logging.MockLogger{})

	// Merchant-targeted rule does not fire on description text.
	match, found := rs.Match(Input{Description: "payment to swiggy"})
	require.True(t, found)
	assert.Equal(t, "shopping", match.CategoryCode)
	assert.Equal(t, uint(2), match.RuleID)

	// With merchant text present, the higher-precedence merchant rule fires.
	match, found = rs.Match(Input{MerchantText: "swiggy", Description: "payment to swiggy"})
	require.True(t, found)
	assert.Equal(t, "food_dining", match.CategoryCode)
}

func TestRuleSet_Match_CaseInsensitive(t *testing.T) {
	rules := []models.MerchantRule{
		{ID: 1, Priority: 10, AppliesTo: models.RuleFieldDescription, Pattern: "^neft.*salary", CategoryCode: "salary"},
	}
	rs := NewRuleSet("v1", rules, &logging.MockLogger{})

	_, found := rs.Match(Input{Description: "NEFT CR SALARY JULY"})
	assert.True(t, found)
}

func TestRuleSet_Match_NoMatch(t *testing.T) {
	rules := []models.MerchantRule{
		{ID: 1, Priority: 10, AppliesTo: models.RuleFieldDescription, Pattern: "zomato", CategoryCode: "food_dining"},
	}
	rs := NewRuleSet("v1", rules, &logging.MockLogger{})

	_, found := rs.Match(Input{Description: "ATM WITHDRAWAL"})
	assert.False(t, found)

	// Empty input never matches anything.
	_, found = rs.Match(Input{})
	assert.False(t, found)
}

func TestNewRuleSet_SkipsInvalidPattern(t *testing.T) {
	logger := &logging.MockLogger{}
	rules := []models.MerchantRule{
		{ID: 1, Priority: 5, AppliesTo: models.RuleFieldDescription, Pattern: "([", CategoryCode: "broken"},
		{ID: 2, Priority: 10, AppliesTo: models.RuleFieldDescription, Pattern: "valid", CategoryCode: "ok"},
	}
	rs := NewRuleSet("v1", rules, logger)

	assert.Equal(t, 1, rs.Len())
	assert.True(t, logger.HasEntry("WARN", "Skipping rule with invalid pattern"))

	match, found := rs.Match(Input{Description: "valid text"})
	require.True(t, found)
	assert.Equal(t, "ok", match.CategoryCode)
}

type fakeRuleSource struct {
	version string
	rules   []models.MerchantRule
	loads   int
}

func (f *fakeRuleSource) ActiveRules(string) ([]models.MerchantRule, error) {
	f.loads++
	return f.rules, nil
}

func (f *fakeRuleSource) RuleSetVersion() (string, error) {
	return f.version, nil
}

func TestSnapshotProvider_CachesUntilVersionChanges(t *testing.T) {
	source := &fakeRuleSource{
		version: "1:2024-01-01",
		rules: []models.MerchantRule{
			{ID: 1, Priority: 10, AppliesTo: models.RuleFieldDescription, Pattern: "coffee", CategoryCode: "food_dining"},
		},
	}
	provider := NewSnapshotProvider(source, &logging.MockLogger{})

	first, err := provider.Snapshot("")
	require.NoError(t, err)
	second, err := provider.Snapshot("")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, source.loads)

	// A version bump forces a recompile.
	source.version = "2:2024-02-01"
	third, err := provider.Snapshot("")
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Equal(t, 2, source.loads)
}

type tenantRuleSource struct {
	version string
	rules   map[string][]models.MerchantRule
}

func (f *tenantRuleSource) ActiveRules(tenantID string) ([]models.MerchantRule, error) {
	return f.rules[tenantID], nil
}

func (f *tenantRuleSource) RuleSetVersion() (string, error) {
	return f.version, nil
}

func TestSnapshotProvider_CachesPerTenant(t *testing.T) {
	source := &tenantRuleSource{
		version: "2:2024-01-01",
		rules: map[string][]models.MerchantRule{
			"tenant-a": {
				{ID: 1, Priority: 10, AppliesTo: models.RuleFieldDescription, Pattern: "uber", CategoryCode: "a-transport"},
			},
			"tenant-b": {
				{ID: 2, Priority: 10, AppliesTo: models.RuleFieldDescription, Pattern: "uber", CategoryCode: "b-travel"},
			},
		},
	}
	provider := NewSnapshotProvider(source, &logging.MockLogger{})

	// Warming one tenant's cache must not leak its rules into another
	// tenant's snapshot at the same repository version.
	a, err := provider.Snapshot("tenant-a")
	require.NoError(t, err)
	b, err := provider.Snapshot("tenant-b")
	require.NoError(t, err)
	assert.NotSame(t, a, b)

	in := Input{Description: "UBER TRIP BLR"}
	matchA, ok := a.Match(in)
	require.True(t, ok)
	assert.Equal(t, "a-transport", matchA.CategoryCode)

	matchB, ok := b.Match(in)
	require.True(t, ok)
	assert.Equal(t, "b-travel", matchB.CategoryCode)

	// Each tenant still reuses its own cached compile.
	aAgain, err := provider.Snapshot("tenant-a")
	require.NoError(t, err)
	assert.Same(t, a, aAgain)
}
