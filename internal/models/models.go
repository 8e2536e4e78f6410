// Package models provides the data structures used throughout the application.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UploadBatch records one statement upload. A batch owns the transactions
// extracted from it and carries the original filename, which bank-source
// inference mines for bank keywords.
type UploadBatch struct {
	ID        string `gorm:"primaryKey;size:36"`
	UserID    string `gorm:"index;size:36;not null"`
	Filename  string `gorm:"size:255"`
	CreatedAt time.Time
}

// Transaction is the immutable fact row created at ingestion. It is never
// mutated by the engine apart from bank-source backfill of a null BankCode,
// and is deleted only when the deduplicator identifies it as a redundant
// extraction artifact.
type Transaction struct {
	ID             string `gorm:"primaryKey;size:36"`
	UserID         string `gorm:"index;size:36;not null"`
	BatchID        string `gorm:"index;size:36"`
	Date           time.Time
	Amount         decimal.Decimal `gorm:"type:numeric(18,2)"`
	Direction      string          `gorm:"size:6;not null"`
	Currency       string          `gorm:"size:3"`
	RawDescription string
	BankCode       string `gorm:"size:32"`
	CreatedAt      time.Time
}

// IsCredit reports whether the transaction moves money into the account.
func (t *Transaction) IsCredit() bool {
	return t.Direction == DirectionCredit
}

// ParsedTransaction holds the structured fields the ingestion stage extracted
// from a fact. One-to-one with a surviving Transaction; read-only to the engine.
type ParsedTransaction struct {
	ID                 string `gorm:"primaryKey;size:36"`
	TransactionID      string `gorm:"uniqueIndex;size:36;not null"`
	Counterparty       string
	Channel            string `gorm:"size:16"`
	DescriptionVariant string
}

// EnrichedTransaction is the engine output for one parsed transaction. At most
// one current row exists per parsed record; re-running enrichment replaces it.
type EnrichedTransaction struct {
	ID                  uint   `gorm:"primaryKey"`
	ParsedTransactionID string `gorm:"uniqueIndex;size:36;not null"`
	TransactionID       string `gorm:"index;size:36;not null"`
	CategoryCode        string `gorm:"size:64"`
	SubcategoryCode     string `gorm:"size:64"`
	MerchantCode        string `gorm:"size:64"`
	MerchantName        string
	NormalizedMerchant  string
	TransferType        string `gorm:"size:16"`
	Confidence          float64
	MatchedRuleID       *uint
	UpdatedAt           time.Time
}

// Override is a user-authored correction. Append-only and never deleted, for
// audit; only the most recent row per transaction is effective. The
// auto-incremented ID doubles as the tie-break when timestamps collide.
type Override struct {
	ID              uint   `gorm:"primaryKey"`
	TransactionID   string `gorm:"index;size:36;not null"`
	CategoryCode    string `gorm:"size:64"`
	SubcategoryCode string `gorm:"size:64"`
	TxnType         string `gorm:"size:16"`
	CreatedAt       time.Time
}
