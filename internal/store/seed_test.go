package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const categoriesYAML = `categories:
  - code: food_dining
    name: Food & Dining
    txn_type: wants
    subcategories:
      - code: fd_online
        name: Online Delivery
  - code: fuel
    name: Fuel
    txn_type: needs
`

const merchantsYAML = `merchants:
  - code: swiggy
    name: Swiggy
    channel: online
    category: food_dining
    subcategory: fd_online
    keywords: [swiggy]
    aliases:
      - "Swiggy Limited"
      - "SWIGGY*ORDER"
`

const rulesYAML = `rules:
  - priority: 10
    applies_to: description
    pattern: swiggy
    category: food_dining
    subcategory: fd_online
  - priority: 20
    applies_to: merchant
    pattern: "[broken"
    category: food_dining
  - priority: 30
    applies_to: description
    pattern: hp petro
    category: fuel
    active: false
`

func writeSeed(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestSeedImportRoundTrip(t *testing.T) {
	s := newTestStore(t)
	dir := t.TempDir()

	categories, err := s.LoadCategoriesSeed(writeSeed(t, dir, "categories.yaml", categoriesYAML))
	require.NoError(t, err)
	require.NoError(t, s.ImportCategoriesSeed(categories))

	cat, err := s.CategoryByCode("food_dining")
	require.NoError(t, err)
	require.NotNil(t, cat)
	assert.Equal(t, "wants", cat.TxnType)

	sub, err := s.SubcategoryByCode("fd_online")
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, "food_dining", sub.CategoryCode)

	merchants, err := s.LoadMerchantsSeed(writeSeed(t, dir, "merchants.yaml", merchantsYAML))
	require.NoError(t, err)
	require.NoError(t, s.ImportMerchantsSeed(merchants))

	m, err := s.MerchantByCode("swiggy")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "Swiggy", m.DisplayName)
	assert.Equal(t, "food_dining", m.DefaultCategoryCode)

	aliases, err := s.Aliases()
	require.NoError(t, err)
	require.Len(t, aliases, 2)
	// Aliases are stored normalized.
	stored := []string{aliases[0].Alias, aliases[1].Alias}
	assert.ElementsMatch(t, []string{"swiggy limited", "swiggy order"}, stored)

	rules, err := s.LoadRulesSeed(writeSeed(t, dir, "rules.yaml", rulesYAML))
	require.NoError(t, err)
	inserted, errs := s.ImportRulesSeed(rules, "seed")
	assert.Equal(t, 2, inserted)
	assert.Len(t, errs, 1)

	active, err := s.ActiveRules("")
	require.NoError(t, err)
	// The hp petro rule imported inactive.
	require.Len(t, active, 1)
	assert.Equal(t, "swiggy", active[0].Pattern)
	assert.Equal(t, "seed", active[0].Source)
}

func TestLoadSeedMissingFileIsEmpty(t *testing.T) {
	s := newTestStore(t)
	seed, err := s.LoadRulesSeed("no-such-rules.yaml")
	require.NoError(t, err)
	require.NotNil(t, seed)
	assert.Empty(t, seed.Rules)
}

func TestImportMerchantsSeedIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	dir := t.TempDir()

	seed, err := s.LoadMerchantsSeed(writeSeed(t, dir, "merchants.yaml", merchantsYAML))
	require.NoError(t, err)
	require.NoError(t, s.ImportMerchantsSeed(seed))
	require.NoError(t, s.ImportMerchantsSeed(seed))

	merchants, err := s.Merchants()
	require.NoError(t, err)
	assert.Len(t, merchants, 1)

	aliases, err := s.Aliases()
	require.NoError(t, err)
	assert.Len(t, aliases, 2)
}
