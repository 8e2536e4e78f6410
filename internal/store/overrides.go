package store

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"fjacquet/spendsense/internal/logging"
	"fjacquet/spendsense/internal/models"
)

// AppendOverride records a user correction. The store is append-only: an
// override that changes nothing is still appended, and nothing is ever
// deleted, so the full correction history stays auditable. Precedence
// resolution lives in the projector, not here.
func (s *Store) AppendOverride(o *models.Override) error {
	if o.TransactionID == "" {
		return fmt.Errorf("override requires a transaction id")
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	if err := s.db.Create(o).Error; err != nil {
		return fmt.Errorf("error appending override: %w", err)
	}

	s.logger.WithFields(
		logging.Field{Key: logging.FieldTransactionID, Value: o.TransactionID},
		logging.Field{Key: logging.FieldCategory, Value: o.CategoryCode},
	).Debug("Override appended")
	return nil
}

// LatestOverride returns the most recent override for a transaction, or nil
// if none exists. Exact-timestamp ties are broken by the auto-incremented
// sequence id so "most recent" is deterministic.
func (s *Store) LatestOverride(transactionID string) (*models.Override, error) {
	var o models.Override
	err := s.db.Where("transaction_id = ?", transactionID).
		Order("created_at DESC, id DESC").
		First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error loading latest override for %q: %w", transactionID, err)
	}
	return &o, nil
}

// Overrides returns the full override history for a transaction, oldest
// first.
func (s *Store) Overrides(transactionID string) ([]models.Override, error) {
	var overrides []models.Override
	err := s.db.Where("transaction_id = ?", transactionID).
		Order("created_at ASC, id ASC").
		Find(&overrides).Error
	if err != nil {
		return nil, fmt.Errorf("error loading overrides for %q: %w", transactionID, err)
	}
	return overrides, nil
}
