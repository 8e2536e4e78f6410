package store

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/spendsense/internal/models"
)

func insertFact(t *testing.T, s *Store, userID, batchID, description string) *models.Transaction {
	t.Helper()
	txn := &models.Transaction{
		ID:             uuid.NewString(),
		UserID:         userID,
		BatchID:        batchID,
		Date:           time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Amount:         decimal.NewFromFloat(250),
		Direction:      models.DirectionDebit,
		Currency:       "INR",
		RawDescription: description,
	}
	parsed := &models.ParsedTransaction{
		ID:           uuid.NewString(),
		Counterparty: description,
	}
	require.NoError(t, s.CreateTransaction(txn, parsed))
	return txn
}

func TestScopeFiltering(t *testing.T) {
	s := newTestStore(t)
	insertFact(t, s, "user-1", "b1", "swiggy order")
	insertFact(t, s, "user-1", "b2", "hp petro")
	insertFact(t, s, "user-2", "b3", "zomato order")

	all, err := s.Transactions(Scope{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byUser, err := s.Transactions(Scope{UserID: "user-1"})
	require.NoError(t, err)
	assert.Len(t, byUser, 2)

	byBatch, err := s.Transactions(Scope{BatchID: "b2"})
	require.NoError(t, err)
	require.Len(t, byBatch, 1)
	assert.Equal(t, "hp petro", byBatch[0].RawDescription)

	parsed, err := s.ParsedTransactions(Scope{UserID: "user-2"})
	require.NoError(t, err)
	assert.Len(t, parsed, 1)
}

func TestUpsertEnrichedReplacesPreviousRun(t *testing.T) {
	s := newTestStore(t)
	txn := insertFact(t, s, "user-1", "b1", "swiggy order")

	parsed, err := s.ParsedForTransaction(txn.ID)
	require.NoError(t, err)
	require.NotNil(t, parsed)

	require.NoError(t, s.UpsertEnriched(&models.EnrichedTransaction{
		ParsedTransactionID: parsed.ID,
		TransactionID:       txn.ID,
		CategoryCode:        "food_dining",
		Confidence:          models.ConfidenceRuleMatch,
	}))
	require.NoError(t, s.UpsertEnriched(&models.EnrichedTransaction{
		ParsedTransactionID: parsed.ID,
		TransactionID:       txn.ID,
		CategoryCode:        "groceries",
		Confidence:          models.ConfidenceRuleMatch,
	}))

	enriched, err := s.EnrichedForTransaction(txn.ID)
	require.NoError(t, err)
	require.NotNil(t, enriched)
	assert.Equal(t, "groceries", enriched.CategoryCode)

	var count int64
	require.NoError(t, s.DB().Model(&models.EnrichedTransaction{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestDeleteTransactionCascade(t *testing.T) {
	s := newTestStore(t)
	doomed := insertFact(t, s, "user-1", "b1", "5 hp petro")
	kept := insertFact(t, s, "user-1", "b1", "hp petro")

	parsed, err := s.ParsedForTransaction(doomed.ID)
	require.NoError(t, err)
	require.NoError(t, s.UpsertEnriched(&models.EnrichedTransaction{
		ParsedTransactionID: parsed.ID,
		TransactionID:       doomed.ID,
		Confidence:          models.ConfidenceFallback,
	}))

	require.NoError(t, s.DeleteTransactionCascade([]string{doomed.ID}))

	gone, err := s.TransactionByID(doomed.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	goneParsed, err := s.ParsedForTransaction(doomed.ID)
	require.NoError(t, err)
	assert.Nil(t, goneParsed)

	goneEnriched, err := s.EnrichedForTransaction(doomed.ID)
	require.NoError(t, err)
	assert.Nil(t, goneEnriched)

	survivor, err := s.TransactionByID(kept.ID)
	require.NoError(t, err)
	assert.NotNil(t, survivor)
}

func TestSetBankCodeFillsOnlyMissing(t *testing.T) {
	s := newTestStore(t)
	txn := insertFact(t, s, "user-1", "b1", "NEFT-UTIB0001234")

	filled, err := s.SetBankCode(txn.ID, "axis_bank")
	require.NoError(t, err)
	assert.True(t, filled)

	filled, err = s.SetBankCode(txn.ID, "sbi_bank")
	require.NoError(t, err)
	assert.False(t, filled)

	loaded, err := s.TransactionByID(txn.ID)
	require.NoError(t, err)
	assert.Equal(t, "axis_bank", loaded.BankCode)
}

func TestBatchesScoping(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.CreateBatch(&models.UploadBatch{
		ID: "b1", UserID: "user-1", Filename: "AXISMB_Mar.pdf",
	}))
	require.NoError(t, s.CreateBatch(&models.UploadBatch{
		ID: "b2", UserID: "user-2", Filename: "statement.csv",
	}))

	batches, err := s.Batches(Scope{UserID: "user-1"})
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, "AXISMB_Mar.pdf", batches[0].Filename)
}
