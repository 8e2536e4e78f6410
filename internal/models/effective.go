package models

import (
	"fmt"
	"math"
)

// EffectiveRecord is the single authoritative view of one transaction after
// precedence-merging facts, enrichment, and overrides. It is computed on
// demand and never persisted.
type EffectiveRecord struct {
	TransactionID   string
	CategoryCode    string
	SubcategoryCode string
	TxnType         string
	MerchantCode    string
	MerchantName    string
	HasMerchant     bool
	Channel         string
	RawDescription  string
	BankCode        string
	Confidence      float64
}

// RoundConfidence clamps a confidence value into [0,1] and rounds it to two
// decimal places, the precision the query surface reports.
func RoundConfidence(c float64) float64 {
	if c < 0 {
		c = 0
	}
	if c > 1 {
		c = 1
	}
	return math.Round(c*100) / 100
}

// ConfidenceString renders the confidence with exactly two decimals.
func (r *EffectiveRecord) ConfidenceString() string {
	return fmt.Sprintf("%.2f", RoundConfidence(r.Confidence))
}

// HasMerchantFlag renders the merchant-resolved flag as Y or N.
func (r *EffectiveRecord) HasMerchantFlag() string {
	if r.HasMerchant {
		return "Y"
	}
	return "N"
}
