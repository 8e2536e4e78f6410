// Package dedup collapses duplicate transaction facts. Bank exports and
// re-uploads routinely produce the same underlying payment more than once,
// with small textual differences (OCR digits, extra reference noise) in the
// description. Rows are grouped on a canonical identity key and every group
// keeps exactly one survivor.
package dedup

import (
	"sort"
	"strings"

	"fjacquet/spendsense/internal/logging"
	"fjacquet/spendsense/internal/models"
	"fjacquet/spendsense/internal/store"
	"fjacquet/spendsense/internal/textutils"
)

// Storage is the persistence surface the deduplicator needs.
type Storage interface {
	Transactions(scope store.Scope) ([]models.Transaction, error)
	ParsedForTransaction(transactionID string) (*models.ParsedTransaction, error)
	DeleteTransactionCascade(transactionIDs []string) error
}

// Deduper finds and removes duplicate transactions inside a scope.
type Deduper struct {
	storage Storage
	logger  logging.Logger
}

// New creates a deduplicator over the given storage.
func New(storage Storage, logger logging.Logger) *Deduper {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Deduper{storage: storage, logger: logger}
}

// Stats summarizes one dedupe pass.
type Stats struct {
	Scanned   int
	Groups    int
	Deleted   int
	Survivors []string
}

// candidate carries the fields duplicate detection compares.
type candidate struct {
	id           string
	merchantText string
}

// Run scans the scope, groups duplicates, and deletes every row except the
// chosen survivor of each group. Running it again over the same data is a
// no-op: groups of one are left alone.
func (d *Deduper) Run(scope store.Scope) (*Stats, error) {
	txns, err := d.storage.Transactions(scope)
	if err != nil {
		return nil, err
	}

	stats := &Stats{Scanned: len(txns)}
	groups := make(map[string][]candidate)
	order := make([]string, 0)

	for i := range txns {
		txn := &txns[i]
		text, err := d.merchantText(txn)
		if err != nil {
			return nil, err
		}
		key := identityKey(txn, text)
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], candidate{id: txn.ID, merchantText: text})
	}

	var doomed []string
	for _, key := range order {
		group := groups[key]
		if len(group) < 2 {
			continue
		}
		stats.Groups++

		survivor := pickSurvivor(group)
		stats.Survivors = append(stats.Survivors, survivor)
		for _, c := range group {
			if c.id != survivor {
				doomed = append(doomed, c.id)
			}
		}
		d.logger.Debug("duplicate group collapsed",
			logging.Field{Key: logging.FieldTransactionID, Value: survivor},
			logging.Field{Key: "duplicates", Value: len(group) - 1},
		)
	}

	if len(doomed) > 0 {
		if err := d.storage.DeleteTransactionCascade(doomed); err != nil {
			return nil, err
		}
	}
	stats.Deleted = len(doomed)

	d.logger.Info("dedupe pass finished",
		logging.Field{Key: "scanned", Value: stats.Scanned},
		logging.Field{Key: "groups", Value: stats.Groups},
		logging.Field{Key: "deleted", Value: stats.Deleted},
	)
	return stats, nil
}

// merchantText picks the text duplicate detection keys on: the parsed
// counterparty when the row has been parsed, the raw description otherwise.
func (d *Deduper) merchantText(txn *models.Transaction) (string, error) {
	parsed, err := d.storage.ParsedForTransaction(txn.ID)
	if err != nil {
		return "", err
	}
	if parsed != nil && parsed.Counterparty != "" {
		return parsed.Counterparty, nil
	}
	return txn.RawDescription, nil
}

// identityKey builds the grouping key. Amount uses its exact decimal string
// so 250 and 250.00 land in the same group while 250.01 does not. The
// merchant component is the canonical key, which strips OCR digit prefixes
// and reference numbers before comparing.
func identityKey(txn *models.Transaction, merchantText string) string {
	return strings.Join([]string{
		txn.UserID,
		txn.Date.Format("2006-01-02"),
		txn.Amount.String(),
		txn.Direction,
		textutils.CanonicalMerchantKey(merchantText),
	}, "\x1f")
}

// pickSurvivor keeps the row with the cleanest merchant text: shortest
// normalized form first, then lexically smallest, then smallest ID so the
// choice is stable across runs.
func pickSurvivor(group []candidate) string {
	sorted := make([]candidate, len(group))
	copy(sorted, group)
	sort.Slice(sorted, func(i, j int) bool {
		a := textutils.NormalizeMerchant(sorted[i].merchantText)
		b := textutils.NormalizeMerchant(sorted[j].merchantText)
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		if a != b {
			return a < b
		}
		return sorted[i].id < sorted[j].id
	})
	return sorted[0].id
}
