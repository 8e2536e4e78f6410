// Package resolver collapses noisy OCR/PDF-extracted counterparty text into
// canonical merchant identities via the alias and keyword tables.
package resolver

import (
	"sort"
	"strings"

	"fjacquet/spendsense/internal/logging"
	"fjacquet/spendsense/internal/models"
	"fjacquet/spendsense/internal/textutils"
)

// Resolution is the outcome of resolving one raw counterparty string.
// NormalizedText is always populated, even when no canonical merchant was
// found, so description-only rule matching and dedup grouping can proceed.
type Resolution struct {
	Resolved           bool
	MerchantCode       string
	DisplayName        string
	NormalizedText     string
	Channel            string
	DefaultCategory    string
	DefaultSubcategory string
}

type keywordEntry struct {
	keyword      string
	merchantCode string
}

// Resolver holds an in-memory snapshot of the merchant dimension, loaded once
// per batch run. Resolution is read-only and safe for concurrent use.
type Resolver struct {
	aliases   map[string]models.MerchantAlias
	keywords  []keywordEntry // sorted longest first
	merchants map[string]models.Merchant
	logger    logging.Logger
}

// NewResolver builds a resolver over the given dimension snapshot. Merchant
// keywords and normalized names are indexed together and sorted by length,
// descending, so the longest matching keyword always wins and a short
// generic keyword cannot shadow a more specific brand name.
func NewResolver(merchants []models.Merchant, aliases []models.MerchantAlias, logger logging.Logger) *Resolver {
	if logger == nil {
		logger = logging.GetLogger()
	}

	r := &Resolver{
		aliases:   make(map[string]models.MerchantAlias, len(aliases)),
		merchants: make(map[string]models.Merchant, len(merchants)),
		logger:    logger,
	}

	for _, a := range aliases {
		r.aliases[textutils.NormalizeMerchant(a.Alias)] = a
	}

	for _, m := range merchants {
		r.merchants[m.Code] = m
		if m.NormalizedName != "" {
			r.keywords = append(r.keywords, keywordEntry{keyword: m.NormalizedName, merchantCode: m.Code})
		}
		for _, kw := range m.Keywords {
			normalized := textutils.NormalizeMerchant(kw)
			if normalized != "" {
				r.keywords = append(r.keywords, keywordEntry{keyword: normalized, merchantCode: m.Code})
			}
		}
	}

	sort.SliceStable(r.keywords, func(i, j int) bool {
		if len(r.keywords[i].keyword) != len(r.keywords[j].keyword) {
			return len(r.keywords[i].keyword) > len(r.keywords[j].keyword)
		}
		return r.keywords[i].keyword < r.keywords[j].keyword
	})

	return r
}

// Resolve normalizes raw counterparty text and looks it up against the alias
// table and merchant keyword sets. Both the normalized text and its
// leading-digits-stripped variant are tried, covering OCR truncation noise
// like "5 hp petro". A miss is not fatal; the caller falls through to
// description-only rule matching.
func (r *Resolver) Resolve(raw string) Resolution {
	normalized := textutils.NormalizeMerchant(raw)
	stripped := textutils.StripLeadingDigits(normalized)

	res := Resolution{NormalizedText: stripped}
	if stripped == "" {
		return res
	}

	candidates := []string{normalized}
	if stripped != normalized {
		candidates = append(candidates, stripped)
	}

	// Exact alias hits take precedence over keyword scanning.
	for _, candidate := range candidates {
		if alias, ok := r.aliases[candidate]; ok {
			return r.resolution(alias.MerchantCode, alias.DisplayName, stripped)
		}
	}

	for _, entry := range r.keywords {
		for _, candidate := range candidates {
			if strings.Contains(candidate, entry.keyword) {
				return r.resolution(entry.merchantCode, "", stripped)
			}
		}
	}

	return res
}

func (r *Resolver) resolution(merchantCode, displayName, normalized string) Resolution {
	res := Resolution{
		Resolved:       true,
		MerchantCode:   merchantCode,
		DisplayName:    displayName,
		NormalizedText: normalized,
	}
	if m, ok := r.merchants[merchantCode]; ok {
		if res.DisplayName == "" {
			res.DisplayName = m.DisplayName
		}
		res.Channel = m.Channel
		res.DefaultCategory = m.DefaultCategoryCode
		res.DefaultSubcategory = m.DefaultSubcategoryCode
	}

	r.logger.WithFields(
		logging.Field{Key: logging.FieldMerchant, Value: merchantCode},
		logging.Field{Key: "normalized", Value: normalized},
	).Debug("Resolved merchant identity")

	return res
}
