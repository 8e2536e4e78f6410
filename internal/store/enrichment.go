package store

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fjacquet/spendsense/internal/logging"
	"fjacquet/spendsense/internal/models"
)

// Scope narrows a batch operation to one upload batch or one user. The zero
// value means all transactions.
type Scope struct {
	BatchID string
	UserID  string
}

func (sc Scope) apply(q *gorm.DB) *gorm.DB {
	if sc.BatchID != "" {
		q = q.Where("transactions.batch_id = ?", sc.BatchID)
	}
	if sc.UserID != "" {
		q = q.Where("transactions.user_id = ?", sc.UserID)
	}
	return q
}

// Transactions returns the fact rows within a scope.
func (s *Store) Transactions(scope Scope) ([]models.Transaction, error) {
	var txns []models.Transaction
	if err := scope.apply(s.db.Model(&models.Transaction{})).Find(&txns).Error; err != nil {
		return nil, fmt.Errorf("error loading transactions: %w", err)
	}
	return txns, nil
}

// TransactionByID returns one fact row, or nil if it does not exist.
func (s *Store) TransactionByID(id string) (*models.Transaction, error) {
	var txn models.Transaction
	err := s.db.Where("id = ?", id).First(&txn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error loading transaction %q: %w", id, err)
	}
	return &txn, nil
}

// ParsedForTransaction returns the parsed record for a fact, or nil.
func (s *Store) ParsedForTransaction(transactionID string) (*models.ParsedTransaction, error) {
	var parsed models.ParsedTransaction
	err := s.db.Where("transaction_id = ?", transactionID).First(&parsed).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error loading parsed transaction for %q: %w", transactionID, err)
	}
	return &parsed, nil
}

// ParsedTransactions returns the parsed records whose facts fall within a
// scope, the unit of work for an enrichment run.
func (s *Store) ParsedTransactions(scope Scope) ([]models.ParsedTransaction, error) {
	var parsed []models.ParsedTransaction
	q := s.db.Model(&models.ParsedTransaction{}).
		Joins("JOIN transactions ON transactions.id = parsed_transactions.transaction_id")
	if err := scope.apply(q).Find(&parsed).Error; err != nil {
		return nil, fmt.Errorf("error loading parsed transactions: %w", err)
	}
	return parsed, nil
}

// UpsertEnriched writes the enrichment output for a parsed record. The write
// is keyed by the parsed-record identity, so re-running enrichment replaces
// the previous row and concurrent re-enrichment is last-writer-wins.
func (s *Store) UpsertEnriched(e *models.EnrichedTransaction) error {
	e.UpdatedAt = time.Now().UTC()
	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "parsed_transaction_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"transaction_id", "category_code", "subcategory_code",
			"merchant_code", "merchant_name", "normalized_merchant",
			"transfer_type", "confidence", "matched_rule_id", "updated_at",
		}),
	}).Create(e).Error
	if err != nil {
		return fmt.Errorf("error upserting enriched transaction: %w", err)
	}
	return nil
}

// EnrichedForTransaction returns the current enrichment for a fact, or nil.
func (s *Store) EnrichedForTransaction(transactionID string) (*models.EnrichedTransaction, error) {
	var enriched models.EnrichedTransaction
	err := s.db.Where("transaction_id = ?", transactionID).First(&enriched).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error loading enriched transaction for %q: %w", transactionID, err)
	}
	return &enriched, nil
}

// DeleteTransactionCascade removes redundant fact rows together with their
// dependent parsed and enriched records. Runs in one database transaction so
// a concurrent dedup pass over the same group cannot interleave.
func (s *Store) DeleteTransactionCascade(transactionIDs []string) error {
	if len(transactionIDs) == 0 {
		return nil
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("transaction_id IN ?", transactionIDs).
			Delete(&models.EnrichedTransaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("transaction_id IN ?", transactionIDs).
			Delete(&models.ParsedTransaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", transactionIDs).
			Delete(&models.Transaction{}).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("error deleting duplicate transactions: %w", err)
	}

	s.logger.WithField(logging.FieldCount, len(transactionIDs)).
		Debug("Removed duplicate transactions")
	return nil
}

// SetBankCode backfills the bank code on a fact row only if it is currently
// empty. An already-known code is never overwritten.
func (s *Store) SetBankCode(transactionID, bankCode string) (bool, error) {
	res := s.db.Model(&models.Transaction{}).
		Where("id = ? AND (bank_code = '' OR bank_code IS NULL)", transactionID).
		Update("bank_code", bankCode)
	if res.Error != nil {
		return false, fmt.Errorf("error setting bank code on %q: %w", transactionID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Batches returns the upload batches within a scope.
func (s *Store) Batches(scope Scope) ([]models.UploadBatch, error) {
	var batches []models.UploadBatch
	q := s.db.Model(&models.UploadBatch{})
	if scope.BatchID != "" {
		q = q.Where("id = ?", scope.BatchID)
	}
	if scope.UserID != "" {
		q = q.Where("user_id = ?", scope.UserID)
	}
	if err := q.Find(&batches).Error; err != nil {
		return nil, fmt.Errorf("error loading upload batches: %w", err)
	}
	return batches, nil
}

// CreateBatch inserts an upload batch row.
func (s *Store) CreateBatch(b *models.UploadBatch) error {
	if err := s.db.Create(b).Error; err != nil {
		return fmt.Errorf("error creating upload batch: %w", err)
	}
	return nil
}

// CreateTransaction inserts a fact row with its parsed record.
func (s *Store) CreateTransaction(txn *models.Transaction, parsed *models.ParsedTransaction) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(txn).Error; err != nil {
			return err
		}
		if parsed != nil {
			parsed.TransactionID = txn.ID
			if err := tx.Create(parsed).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("error creating transaction: %w", err)
	}
	return nil
}
