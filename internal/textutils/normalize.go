// Package textutils provides text normalization utilities for noisy
// OCR/PDF-extracted merchant and description strings.
package textutils

import (
	"regexp"
	"strings"
)

var (
	whitespaceRe    = regexp.MustCompile(`\s+`)
	punctuationRe   = regexp.MustCompile(`[^a-z0-9\s]`)
	leadingDigitsRe = regexp.MustCompile(`^\d+\s+`)
	refNumberRe     = regexp.MustCompile(`\b\d{6,}\b`)
)

// CollapseWhitespace trims the string and folds runs of whitespace into a
// single space.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// NormalizeMerchant lowercases raw counterparty text and strips the noise
// that text extraction introduces: punctuation, embedded reference numbers,
// and redundant whitespace. The result is the lookup key used against the
// alias and keyword tables.
func NormalizeMerchant(raw string) string {
	s := strings.ToLower(raw)
	s = punctuationRe.ReplaceAllString(s, " ")
	s = refNumberRe.ReplaceAllString(s, " ")
	return CollapseWhitespace(s)
}

// StripLeadingDigits removes a leading digit run followed by whitespace.
// OCR truncation commonly glues a stray row number onto the merchant text,
// turning "hp petro" into "5 hp petro".
func StripLeadingDigits(s string) string {
	return leadingDigitsRe.ReplaceAllString(s, "")
}

// CanonicalMerchantKey produces the dedup grouping key for merchant text:
// normalized and with any leading digit run stripped, so two extraction
// passes of the same row land in the same group.
func CanonicalMerchantKey(raw string) string {
	return StripLeadingDigits(NormalizeMerchant(raw))
}
