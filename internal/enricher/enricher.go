// Package enricher orchestrates merchant resolution and rule matching for
// each parsed transaction and writes the resulting enriched record.
package enricher

import (
	"context"
	"fmt"
	"strings"

	"fjacquet/spendsense/internal/engineerror"
	"fjacquet/spendsense/internal/logging"
	"fjacquet/spendsense/internal/matcher"
	"fjacquet/spendsense/internal/models"
	"fjacquet/spendsense/internal/resolver"
	"fjacquet/spendsense/internal/store"
)

// Storage is the persistence surface the enricher needs.
type Storage interface {
	ParsedTransactions(scope store.Scope) ([]models.ParsedTransaction, error)
	TransactionByID(id string) (*models.Transaction, error)
	Merchants() ([]models.Merchant, error)
	Aliases() ([]models.MerchantAlias, error)
	UpsertEnriched(e *models.EnrichedTransaction) error
}

// Options tune the enrichment run.
type Options struct {
	// RuleMatchConfidence is assigned when a rule or resolved merchant
	// classifies the transaction.
	RuleMatchConfidence float64
	// FallbackConfidence is the floor assigned when nothing matched.
	FallbackConfidence float64
	// OwnerNames are the account holder's own name variants, used to tag
	// self-transfers.
	OwnerNames []string
	// Workers is the worker pool size; 0 means one per CPU.
	Workers int
}

// Enricher runs the resolve+match pipeline over a scope of transactions.
type Enricher struct {
	storage  Storage
	provider *matcher.SnapshotProvider
	opts     Options
	logger   logging.Logger
}

// Stats summarizes one enrichment run.
type Stats struct {
	Processed int
	Failed    int
}

// New creates an enricher. Zero-valued confidence options fall back to the
// engine defaults.
func New(storage Storage, provider *matcher.SnapshotProvider, opts Options, logger logging.Logger) *Enricher {
	if logger == nil {
		logger = logging.GetLogger()
	}
	if opts.RuleMatchConfidence == 0 {
		opts.RuleMatchConfidence = models.ConfidenceRuleMatch
	}
	if opts.FallbackConfidence == 0 {
		opts.FallbackConfidence = models.ConfidenceFallback
	}
	return &Enricher{
		storage:  storage,
		provider: provider,
		opts:     opts,
		logger:   logger,
	}
}

// Run enriches every parsed transaction in the scope. A fresh rule-set
// snapshot and dimension snapshot are taken once at the start of the run;
// individual transactions are then independent and processed by the worker
// pool. Each transaction's write is an idempotent upsert, so re-running over
// an already-enriched scope is safe.
func (e *Enricher) Run(ctx context.Context, scope store.Scope) (Stats, error) {
	ruleSet, err := e.provider.Snapshot(scope.UserID)
	if err != nil {
		return Stats{}, fmt.Errorf("error taking rule snapshot: %w", err)
	}

	merchants, err := e.storage.Merchants()
	if err != nil {
		return Stats{}, err
	}
	aliases, err := e.storage.Aliases()
	if err != nil {
		return Stats{}, err
	}
	res := resolver.NewResolver(merchants, aliases, e.logger)

	parsed, err := e.storage.ParsedTransactions(scope)
	if err != nil {
		return Stats{}, err
	}

	results := e.processConcurrent(ctx, parsed, func(p *models.ParsedTransaction) error {
		return e.enrichOne(p, res, ruleSet)
	})

	stats := Stats{}
	for _, err := range results {
		if err != nil {
			stats.Failed++
			e.logger.WithError(err).Warn("Enrichment failed for transaction")
		} else {
			stats.Processed++
		}
	}

	e.logger.WithFields(
		logging.Field{Key: logging.FieldCount, Value: stats.Processed},
		logging.Field{Key: "failed", Value: stats.Failed},
	).Info("Enrichment run completed")

	return stats, nil
}

// enrichOne computes and writes the enriched record for a single parsed
// transaction.
func (e *Enricher) enrichOne(parsed *models.ParsedTransaction, res *resolver.Resolver, ruleSet *matcher.RuleSet) error {
	txn, err := e.storage.TransactionByID(parsed.TransactionID)
	if err != nil {
		return &engineerror.EnrichmentError{TransactionID: parsed.TransactionID, Stage: "load", Err: err}
	}
	if txn == nil {
		return &engineerror.EnrichmentError{
			TransactionID: parsed.TransactionID,
			Stage:         "load",
			Err:           fmt.Errorf("fact row missing"),
		}
	}

	counterparty := parsed.Counterparty
	if counterparty == "" {
		counterparty = txn.RawDescription
	}
	resolution := res.Resolve(counterparty)

	merchantText := ""
	if resolution.Resolved {
		merchantText = resolution.NormalizedText
	}
	match, matched := ruleSet.Match(matcher.Input{
		MerchantText: merchantText,
		Description:  txn.RawDescription,
	})

	enriched := &models.EnrichedTransaction{
		ParsedTransactionID: parsed.ID,
		TransactionID:       txn.ID,
		MerchantCode:        resolution.MerchantCode,
		MerchantName:        resolution.DisplayName,
		NormalizedMerchant:  resolution.NormalizedText,
		TransferType:        e.deriveTransferType(txn, parsed, resolution),
	}

	switch {
	case matched:
		ruleID := match.RuleID
		enriched.CategoryCode = match.CategoryCode
		enriched.SubcategoryCode = match.SubcategoryCode
		enriched.Confidence = e.opts.RuleMatchConfidence
		enriched.MatchedRuleID = &ruleID
	case resolution.Resolved && resolution.DefaultCategory != "":
		enriched.CategoryCode = resolution.DefaultCategory
		enriched.SubcategoryCode = resolution.DefaultSubcategory
		enriched.Confidence = e.opts.RuleMatchConfidence
	default:
		// Unclassified: the projector applies the direction-based default
		// at query time. Confidence stays at the floor.
		enriched.Confidence = e.opts.FallbackConfidence
	}

	if err := e.storage.UpsertEnriched(enriched); err != nil {
		return &engineerror.EnrichmentError{TransactionID: txn.ID, Stage: "write", Err: err}
	}
	return nil
}

// deriveTransferType tags the transaction as a self-transfer, peer-to-peer
// transfer, or merchant-directed payment.
func (e *Enricher) deriveTransferType(txn *models.Transaction, parsed *models.ParsedTransaction, resolution resolver.Resolution) string {
	haystack := strings.ToLower(txn.RawDescription + " " + parsed.Counterparty)

	for _, owner := range e.opts.OwnerNames {
		owner = strings.ToLower(strings.TrimSpace(owner))
		if owner != "" && strings.Contains(haystack, owner) {
			return models.TransferTypeSelf
		}
	}
	if strings.Contains(haystack, "self transfer") || strings.Contains(haystack, "own account") {
		return models.TransferTypeSelf
	}

	// UPI tags rides: P2M is merchant-directed, P2A is person-to-person.
	if strings.Contains(haystack, "p2m") {
		return models.TransferTypeMerchant
	}
	if strings.Contains(haystack, "p2a") {
		return models.TransferTypeP2P
	}

	if resolution.Resolved {
		return models.TransferTypeMerchant
	}

	// Bare bank transfers with no resolvable merchant look like person-to-person.
	for _, token := range []string{"imps", "neft", "rtgs", "upi"} {
		if strings.Contains(haystack, token) {
			return models.TransferTypeP2P
		}
	}

	return models.TransferTypeMerchant
}
