package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"fjacquet/spendsense/internal/engineerror"
	"fjacquet/spendsense/internal/logging"
	"fjacquet/spendsense/internal/models"
)

// ActiveRules returns the active merchant rules in match order: ascending
// priority, then creation time, then rule id. The secondary keys make the
// order total so equal-priority conflicts resolve the same way on every run.
// A tenant sees the global rules (empty tenant id) plus its own; the empty
// tenant sees global rules only, so an unscoped run never applies one
// tenant's private rules to another's transactions.
func (s *Store) ActiveRules(tenantID string) ([]models.MerchantRule, error) {
	var rules []models.MerchantRule
	q := s.db.Where("active = ?", true)
	if tenantID == "" {
		q = q.Where("tenant_id = ''")
	} else {
		q = q.Where("tenant_id = ? OR tenant_id = ''", tenantID)
	}
	err := q.Order("priority ASC, created_at ASC, id ASC").Find(&rules).Error
	if err != nil {
		return nil, fmt.Errorf("error loading active rules: %w", err)
	}
	return rules, nil
}

// RuleSetVersion returns a fingerprint of the current rule set. The matcher
// caches compiled patterns keyed by this value and recompiles when it
// changes. Count and newest write are queried separately so the statement
// stays portable across sqlite and postgres.
func (s *Store) RuleSetVersion() (string, error) {
	var count int64
	if err := s.db.Model(&models.MerchantRule{}).Count(&count).Error; err != nil {
		return "", fmt.Errorf("error computing rule set version: %w", err)
	}

	var newest sql.NullTime
	err := s.db.Model(&models.MerchantRule{}).
		Select("MAX(updated_at)").
		Scan(&newest).Error
	if err != nil {
		return "", fmt.Errorf("error computing rule set version: %w", err)
	}

	var stamp int64
	if newest.Valid {
		stamp = newest.Time.UnixNano()
	}
	return fmt.Sprintf("%d:%d", count, stamp), nil
}

// InsertRules validates and inserts a batch of merchant rules. Each rule is
// validated independently: a rule whose regex fails to compile or which
// references an unknown category/subcategory is rejected with a typed error
// while the rest of the batch is still inserted. Rules whose pattern
// fingerprint already exists are skipped as exact duplicates.
func (s *Store) InsertRules(rules []models.MerchantRule) (int, []error) {
	var errs []error
	inserted := 0

	for i := range rules {
		rule := &rules[i]
		if err := s.validateRule(i, rule); err != nil {
			errs = append(errs, err)
			continue
		}

		rule.Fingerprint = RuleFingerprint(rule.AppliesTo, rule.Pattern)

		var existing int64
		err := s.db.Model(&models.MerchantRule{}).
			Where("fingerprint = ? AND category_code = ? AND subcategory_code = ?",
				rule.Fingerprint, rule.CategoryCode, rule.SubcategoryCode).
			Count(&existing).Error
		if err != nil {
			errs = append(errs, fmt.Errorf("rule %d: duplicate check failed: %w", i, err))
			continue
		}
		if existing > 0 {
			s.logger.WithFields(
				logging.Field{Key: logging.FieldPriority, Value: rule.Priority},
				logging.Field{Key: "pattern", Value: rule.Pattern},
			).Debug("Skipping duplicate rule")
			continue
		}

		if err := s.db.Create(rule).Error; err != nil {
			errs = append(errs, fmt.Errorf("rule %d: insert failed: %w", i, err))
			continue
		}
		inserted++
	}

	s.logger.WithFields(
		logging.Field{Key: logging.FieldCount, Value: inserted},
		logging.Field{Key: "rejected", Value: len(errs)},
	).Info("Rule batch processed")

	return inserted, errs
}

func (s *Store) validateRule(index int, rule *models.MerchantRule) error {
	switch rule.AppliesTo {
	case models.RuleFieldMerchant, models.RuleFieldDescription:
	default:
		return &engineerror.RuleValidationError{
			Index:   index,
			Pattern: rule.Pattern,
			Field:   "applies_to",
			Reason:  fmt.Sprintf("must be %q or %q, got %q", models.RuleFieldMerchant, models.RuleFieldDescription, rule.AppliesTo),
		}
	}

	if strings.TrimSpace(rule.Pattern) == "" {
		return &engineerror.RuleValidationError{
			Index:   index,
			Pattern: rule.Pattern,
			Field:   "pattern",
			Reason:  "must not be empty",
		}
	}
	if _, err := regexp.Compile("(?i)" + rule.Pattern); err != nil {
		return &engineerror.RuleValidationError{
			Index:   index,
			Pattern: rule.Pattern,
			Field:   "pattern",
			Reason:  "regex does not compile",
			Err:     err,
		}
	}

	// Referential integrity: a dangling rule is rejected, not silently
	// stored. Lookup failures are reported as such, never as a missing code.
	var count int64
	if err := s.db.Model(&models.Category{}).Where("code = ?", rule.CategoryCode).Count(&count).Error; err != nil {
		return fmt.Errorf("rule %d: category lookup failed: %w", index, err)
	}
	if count == 0 {
		return &engineerror.UnknownDimensionError{Dimension: "category", Code: rule.CategoryCode}
	}
	if rule.SubcategoryCode != "" {
		err := s.db.Model(&models.Subcategory{}).
			Where("code = ? AND category_code = ?", rule.SubcategoryCode, rule.CategoryCode).
			Count(&count).Error
		if err != nil {
			return fmt.Errorf("rule %d: subcategory lookup failed: %w", index, err)
		}
		if count == 0 {
			return &engineerror.UnknownDimensionError{Dimension: "subcategory", Code: rule.SubcategoryCode}
		}
	}

	return nil
}

// SetRuleActive flips a rule's active flag. Already-enriched transactions are
// unaffected until a backfill re-run.
func (s *Store) SetRuleActive(ruleID uint, active bool) error {
	res := s.db.Model(&models.MerchantRule{}).Where("id = ?", ruleID).Update("active", active)
	if res.Error != nil {
		return fmt.Errorf("error updating rule %d: %w", ruleID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("rule %d not found", ruleID)
	}
	return nil
}

// RuleFingerprint returns a stable hash of a rule's target field and pattern,
// used to detect identical rules across imports.
func RuleFingerprint(appliesTo, pattern string) string {
	sum := sha256.Sum256([]byte(appliesTo + "\x00" + pattern))
	return hex.EncodeToString(sum[:])
}
