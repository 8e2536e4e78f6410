// Package projector computes the effective record: the single authoritative
// category/subcategory/type/merchant/confidence view of a transaction,
// merging raw facts, automatic enrichment, and user overrides under a fixed
// precedence order. It is a query-time view; nothing here writes.
package projector

import (
	"fmt"
	"strings"

	"fjacquet/spendsense/internal/logging"
	"fjacquet/spendsense/internal/models"
	"fjacquet/spendsense/internal/store"
)

// Storage is the read-only surface the projector consumes.
type Storage interface {
	TransactionByID(id string) (*models.Transaction, error)
	Transactions(scope store.Scope) ([]models.Transaction, error)
	ParsedForTransaction(transactionID string) (*models.ParsedTransaction, error)
	EnrichedForTransaction(transactionID string) (*models.EnrichedTransaction, error)
	LatestOverride(transactionID string) (*models.Override, error)
	CategoryByCode(code string) (*models.Category, error)
}

// Projector computes effective records on demand.
type Projector struct {
	storage Storage
	logger  logging.Logger
}

// New creates a projector over the given storage.
func New(storage Storage, logger logging.Logger) *Projector {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Projector{storage: storage, logger: logger}
}

// evidence is everything known about one transaction at projection time.
type evidence struct {
	txn      *models.Transaction
	parsed   *models.ParsedTransaction
	enriched *models.EnrichedTransaction
	override *models.Override
}

// classification is one resolver's definite answer.
type classification struct {
	category    string
	subcategory string
	confidence  float64
}

// classificationResolver returns an answer or no opinion. The cascade
// evaluates resolvers in fixed precedence order and stops at the first
// opinion, which keeps each precedence level testable on its own.
type classificationResolver func(ev *evidence) (classification, bool)

var classificationCascade = []classificationResolver{
	resolveFromOverride,
	resolveFromEnrichment,
	resolveFromDirection,
}

// resolveFromOverride applies the most recent user correction. User-confirmed
// answers carry full confidence.
func resolveFromOverride(ev *evidence) (classification, bool) {
	if ev.override == nil {
		return classification{}, false
	}
	return classification{
		category:    ev.override.CategoryCode,
		subcategory: ev.override.SubcategoryCode,
		confidence:  models.ConfidenceOverride,
	}, true
}

// resolveFromEnrichment applies the automatic classification, if any. A
// stored zero confidence means the enrichment predates confidence tracking
// and defaults to the floor.
func resolveFromEnrichment(ev *evidence) (classification, bool) {
	if ev.enriched == nil || ev.enriched.CategoryCode == "" {
		return classification{}, false
	}
	confidence := ev.enriched.Confidence
	if confidence == 0 {
		confidence = models.ConfidenceFallback
	}
	return classification{
		category:    ev.enriched.CategoryCode,
		subcategory: ev.enriched.SubcategoryCode,
		confidence:  confidence,
	}, true
}

// resolveFromDirection is the terminal fallback: no category, floor
// confidence. The income-like bucket for credits comes from the txn_type
// cascade, not from inventing a category code.
func resolveFromDirection(ev *evidence) (classification, bool) {
	return classification{confidence: models.ConfidenceFallback}, true
}

// Project computes the effective record for one transaction.
func (p *Projector) Project(transactionID string) (*models.EffectiveRecord, error) {
	txn, err := p.storage.TransactionByID(transactionID)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, fmt.Errorf("transaction %q not found", transactionID)
	}
	return p.project(txn)
}

// ProjectScope computes effective records for every transaction in a scope.
func (p *Projector) ProjectScope(scope store.Scope) ([]models.EffectiveRecord, error) {
	txns, err := p.storage.Transactions(scope)
	if err != nil {
		return nil, err
	}
	records := make([]models.EffectiveRecord, 0, len(txns))
	for i := range txns {
		record, err := p.project(&txns[i])
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, nil
}

func (p *Projector) project(txn *models.Transaction) (*models.EffectiveRecord, error) {
	ev := &evidence{txn: txn}

	var err error
	if ev.parsed, err = p.storage.ParsedForTransaction(txn.ID); err != nil {
		return nil, err
	}
	if ev.enriched, err = p.storage.EnrichedForTransaction(txn.ID); err != nil {
		return nil, err
	}
	if ev.override, err = p.storage.LatestOverride(txn.ID); err != nil {
		return nil, err
	}

	var cls classification
	for _, resolve := range classificationCascade {
		if answer, ok := resolve(ev); ok {
			cls = answer
			break
		}
	}

	record := &models.EffectiveRecord{
		TransactionID:   txn.ID,
		CategoryCode:    cls.category,
		SubcategoryCode: cls.subcategory,
		RawDescription:  txn.RawDescription,
		BankCode:        txn.BankCode,
		Confidence:      models.RoundConfidence(cls.confidence),
	}
	if ev.parsed != nil {
		record.Channel = ev.parsed.Channel
	}
	if ev.enriched != nil {
		record.MerchantCode = ev.enriched.MerchantCode
		record.MerchantName = ev.enriched.MerchantName
	}

	txnType, err := p.deriveTxnType(ev, cls.category)
	if err != nil {
		return nil, err
	}
	record.TxnType = txnType

	record.HasMerchant = hasMerchant(ev)

	return record, nil
}

// deriveTxnType walks the txn_type cascade: explicit override type, then the
// category dimension, then the legacy category-group mapping, then the
// transaction direction, then the generic wants bucket.
func (p *Projector) deriveTxnType(ev *evidence, category string) (string, error) {
	if ev.override != nil && ev.override.TxnType != "" {
		return ev.override.TxnType, nil
	}

	if category != "" {
		dim, err := p.storage.CategoryByCode(category)
		if err != nil {
			return "", err
		}
		if dim != nil && dim.TxnType != "" {
			return dim.TxnType, nil
		}
		if txnType, ok := legacyGroupTxnType(category); ok {
			return txnType, nil
		}
	}

	if ev.txn.IsCredit() {
		return models.TxnTypeIncome, nil
	}
	if ev.txn.Direction == models.DirectionDebit {
		return models.TxnTypeWants, nil
	}

	return models.TxnTypeWants, nil
}

// legacyGroupTxnType maps coarse legacy category groups, recognized by code
// prefix, onto txn_types. Covers categories imported before the dimension
// tables carried a txn_type.
func legacyGroupTxnType(category string) (string, bool) {
	prefixGroups := []struct {
		prefix  string
		txnType string
	}{
		{"income", models.TxnTypeIncome},
		{"salary", models.TxnTypeIncome},
		{"invest", models.TxnTypeAssets},
		{"loan", models.TxnTypeDebt},
		{"emi", models.TxnTypeDebt},
		{"transfer", models.TxnTypeTransfer},
		{"fee", models.TxnTypeFees},
		{"charge", models.TxnTypeFees},
		{"grocer", models.TxnTypeNeeds},
		{"utilit", models.TxnTypeNeeds},
		{"rent", models.TxnTypeNeeds},
		{"medical", models.TxnTypeNeeds},
	}

	lower := strings.ToLower(category)
	for _, g := range prefixGroups {
		if strings.HasPrefix(lower, g.prefix) {
			return g.txnType, true
		}
	}
	return "", false
}

// hasMerchant reports whether the transaction is merchant-resolved: it
// carries a non-self, non-P2P transfer type and either a resolved merchant
// identity or non-empty normalized merchant text.
func hasMerchant(ev *evidence) bool {
	if ev.enriched == nil {
		return false
	}
	switch ev.enriched.TransferType {
	case models.TransferTypeSelf, models.TransferTypeP2P:
		return false
	}
	return ev.enriched.MerchantCode != "" || ev.enriched.NormalizedMerchant != ""
}
