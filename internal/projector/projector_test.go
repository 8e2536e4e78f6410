package projector

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/spendsense/internal/logging"
	"fjacquet/spendsense/internal/models"
	"fjacquet/spendsense/internal/store"
)

type fakeStorage struct {
	txns       map[string]*models.Transaction
	parsed     map[string]*models.ParsedTransaction
	enriched   map[string]*models.EnrichedTransaction
	overrides  map[string]*models.Override
	categories map[string]*models.Category
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		txns:       make(map[string]*models.Transaction),
		parsed:     make(map[string]*models.ParsedTransaction),
		enriched:   make(map[string]*models.EnrichedTransaction),
		overrides:  make(map[string]*models.Override),
		categories: make(map[string]*models.Category),
	}
}

func (f *fakeStorage) TransactionByID(id string) (*models.Transaction, error) {
	return f.txns[id], nil
}

func (f *fakeStorage) Transactions(scope store.Scope) ([]models.Transaction, error) {
	var out []models.Transaction
	for _, txn := range f.txns {
		out = append(out, *txn)
	}
	return out, nil
}

func (f *fakeStorage) ParsedForTransaction(id string) (*models.ParsedTransaction, error) {
	return f.parsed[id], nil
}

func (f *fakeStorage) EnrichedForTransaction(id string) (*models.EnrichedTransaction, error) {
	return f.enriched[id], nil
}

func (f *fakeStorage) LatestOverride(id string) (*models.Override, error) {
	return f.overrides[id], nil
}

func (f *fakeStorage) CategoryByCode(code string) (*models.Category, error) {
	return f.categories[code], nil
}

func newDebit(id string) *models.Transaction {
	return &models.Transaction{
		ID:             id,
		UserID:         "user-1",
		Date:           time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Amount:         decimal.NewFromFloat(250.00),
		Direction:      models.DirectionDebit,
		Currency:       "INR",
		RawDescription: "UPI/p2m/swiggy order",
	}
}

func TestProjectOverrideWinsOverEnrichment(t *testing.T) {
	storage := newFakeStorage()
	storage.txns["t1"] = newDebit("t1")
	storage.enriched["t1"] = &models.EnrichedTransaction{
		CategoryCode:    "food_dining",
		SubcategoryCode: "fd_online",
		MerchantCode:    "swiggy",
		MerchantName:    "Swiggy",
		TransferType:    models.TransferTypeMerchant,
		Confidence:      models.ConfidenceRuleMatch,
	}
	storage.overrides["t1"] = &models.Override{
		TransactionID:   "t1",
		CategoryCode:    "groceries",
		SubcategoryCode: "gr_delivery",
		TxnType:         models.TxnTypeNeeds,
	}

	p := New(storage, &logging.MockLogger{})
	record, err := p.Project("t1")
	require.NoError(t, err)

	assert.Equal(t, "groceries", record.CategoryCode)
	assert.Equal(t, "gr_delivery", record.SubcategoryCode)
	assert.Equal(t, models.TxnTypeNeeds, record.TxnType)
	assert.Equal(t, models.ConfidenceOverride, record.Confidence)
	assert.Equal(t, "1.00", record.ConfidenceString())
	// Merchant identity still comes from enrichment even when the
	// classification is overridden.
	assert.Equal(t, "swiggy", record.MerchantCode)
}

func TestProjectEnrichmentConfidenceAndDimensionTxnType(t *testing.T) {
	storage := newFakeStorage()
	storage.txns["t1"] = newDebit("t1")
	storage.enriched["t1"] = &models.EnrichedTransaction{
		CategoryCode:       "food_dining",
		SubcategoryCode:    "fd_online",
		MerchantCode:       "swiggy",
		NormalizedMerchant: "swiggy",
		TransferType:       models.TransferTypeMerchant,
		Confidence:         models.ConfidenceRuleMatch,
	}
	storage.categories["food_dining"] = &models.Category{
		Code:    "food_dining",
		TxnType: models.TxnTypeWants,
	}

	p := New(storage, &logging.MockLogger{})
	record, err := p.Project("t1")
	require.NoError(t, err)

	assert.Equal(t, "food_dining", record.CategoryCode)
	assert.Equal(t, models.TxnTypeWants, record.TxnType)
	assert.Equal(t, models.ConfidenceRuleMatch, record.Confidence)
	assert.True(t, record.HasMerchant)
	assert.Equal(t, "Y", record.HasMerchantFlag())
}

func TestProjectLegacyGroupTxnType(t *testing.T) {
	storage := newFakeStorage()
	storage.txns["t1"] = newDebit("t1")
	// Category known only by its legacy code, no dimension row.
	storage.enriched["t1"] = &models.EnrichedTransaction{
		CategoryCode: "loan_emi",
		Confidence:   models.ConfidenceRuleMatch,
	}

	p := New(storage, &logging.MockLogger{})
	record, err := p.Project("t1")
	require.NoError(t, err)

	assert.Equal(t, models.TxnTypeDebt, record.TxnType)
}

func TestProjectDebitFallback(t *testing.T) {
	storage := newFakeStorage()
	storage.txns["t1"] = newDebit("t1")

	p := New(storage, &logging.MockLogger{})
	record, err := p.Project("t1")
	require.NoError(t, err)

	assert.Empty(t, record.CategoryCode)
	assert.Equal(t, models.TxnTypeWants, record.TxnType)
	assert.Equal(t, models.ConfidenceFallback, record.Confidence)
	assert.False(t, record.HasMerchant)
}

func TestProjectCreditFallbackIsIncome(t *testing.T) {
	storage := newFakeStorage()
	txn := newDebit("t1")
	txn.Direction = models.DirectionCredit
	txn.RawDescription = "NEFT salary credit"
	storage.txns["t1"] = txn

	p := New(storage, &logging.MockLogger{})
	record, err := p.Project("t1")
	require.NoError(t, err)

	assert.Empty(t, record.CategoryCode)
	assert.Equal(t, models.TxnTypeIncome, record.TxnType)
	assert.Equal(t, models.ConfidenceFallback, record.Confidence)
}

func TestProjectEmptyCategoryEnrichmentFallsThrough(t *testing.T) {
	storage := newFakeStorage()
	storage.txns["t1"] = newDebit("t1")
	// Enrichment ran but could not classify; only merchant text survives.
	storage.enriched["t1"] = &models.EnrichedTransaction{
		NormalizedMerchant: "hp petro",
		TransferType:       models.TransferTypeMerchant,
		Confidence:         models.ConfidenceFallback,
	}

	p := New(storage, &logging.MockLogger{})
	record, err := p.Project("t1")
	require.NoError(t, err)

	assert.Empty(t, record.CategoryCode)
	assert.Equal(t, models.TxnTypeWants, record.TxnType)
	assert.Equal(t, models.ConfidenceFallback, record.Confidence)
	assert.True(t, record.HasMerchant)
}

func TestHasMerchantExcludesSelfAndP2P(t *testing.T) {
	for _, transferType := range []string{models.TransferTypeSelf, models.TransferTypeP2P} {
		storage := newFakeStorage()
		storage.txns["t1"] = newDebit("t1")
		storage.enriched["t1"] = &models.EnrichedTransaction{
			NormalizedMerchant: "john doe",
			TransferType:       transferType,
			Confidence:         models.ConfidenceFallback,
		}

		p := New(storage, &logging.MockLogger{})
		record, err := p.Project("t1")
		require.NoError(t, err)
		assert.False(t, record.HasMerchant, "transfer type %s", transferType)
	}
}

func TestProjectScope(t *testing.T) {
	storage := newFakeStorage()
	storage.txns["t1"] = newDebit("t1")
	storage.txns["t2"] = newDebit("t2")

	p := New(storage, &logging.MockLogger{})
	records, err := p.ProjectScope(store.Scope{UserID: "user-1"})
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestProjectUnknownTransaction(t *testing.T) {
	p := New(newFakeStorage(), &logging.MockLogger{})
	_, err := p.Project("missing")
	assert.Error(t, err)
}
