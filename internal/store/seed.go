package store

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"fjacquet/spendsense/internal/logging"
	"fjacquet/spendsense/internal/models"
	"fjacquet/spendsense/internal/textutils"
)

// FindConfigFile looks for a seed/configuration file in standard locations.
func FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,                            // Current directory
		filepath.Join("config", filename),   // ./config/ directory
		filepath.Join("database", filename), // ./database/ directory
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}

	homeDir, err := os.UserHomeDir()
	if err == nil {
		configPath := filepath.Join(homeDir, ".config", "spendsense", filename)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}
	}

	return "", os.ErrNotExist
}

// LoadRulesSeed reads a rules YAML file. A missing file is a warning and an
// empty seed, not an error.
func (s *Store) LoadRulesSeed(filename string) (*models.RulesSeed, error) {
	var seed models.RulesSeed
	if err := s.loadSeedFile(filename, &seed); err != nil {
		return nil, err
	}
	return &seed, nil
}

// LoadMerchantsSeed reads a merchants YAML file.
func (s *Store) LoadMerchantsSeed(filename string) (*models.MerchantsSeed, error) {
	var seed models.MerchantsSeed
	if err := s.loadSeedFile(filename, &seed); err != nil {
		return nil, err
	}
	return &seed, nil
}

// LoadCategoriesSeed reads a categories YAML file.
func (s *Store) LoadCategoriesSeed(filename string) (*models.CategoriesSeed, error) {
	var seed models.CategoriesSeed
	if err := s.loadSeedFile(filename, &seed); err != nil {
		return nil, err
	}
	return &seed, nil
}

func (s *Store) loadSeedFile(filename string, out interface{}) error {
	filePath, err := FindConfigFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.WithField("file", filename).Warn("Seed file not found")
			return nil
		}
		return fmt.Errorf("error resolving seed file %q: %w", filename, err)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("error reading seed file %q: %w", filePath, err)
	}

	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("error parsing seed file %q: %w", filePath, err)
	}

	s.logger.WithField("file", filePath).Debug("Loaded seed file")
	return nil
}

// ImportCategoriesSeed upserts category and subcategory dimensions from a
// seed.
func (s *Store) ImportCategoriesSeed(seed *models.CategoriesSeed) error {
	for _, c := range seed.Categories {
		cat := models.Category{
			Code:        c.Code,
			DisplayName: c.Name,
			TxnType:     c.TxnType,
		}
		if err := s.UpsertCategory(&cat); err != nil {
			return err
		}
		for _, sc := range c.Subcategories {
			sub := models.Subcategory{
				Code:         sc.Code,
				CategoryCode: c.Code,
				DisplayName:  sc.Name,
			}
			if err := s.UpsertSubcategory(&sub); err != nil {
				return err
			}
		}
	}
	s.logger.WithField(logging.FieldCount, len(seed.Categories)).Info("Imported category dimensions")
	return nil
}

// ImportMerchantsSeed upserts canonical merchants and their alias rows.
// Aliases are stored in normalized form so resolver lookups are exact.
func (s *Store) ImportMerchantsSeed(seed *models.MerchantsSeed) error {
	for _, m := range seed.Merchants {
		merchant := models.Merchant{
			Code:                   m.Code,
			DisplayName:            m.Name,
			NormalizedName:         textutils.NormalizeMerchant(m.Name),
			Keywords:               m.Keywords,
			DefaultCategoryCode:    m.Category,
			DefaultSubcategoryCode: m.Subcategory,
			Channel:                m.Channel,
		}
		if err := s.UpsertMerchant(&merchant); err != nil {
			return err
		}
		for _, alias := range m.Aliases {
			a := models.MerchantAlias{
				Alias:        textutils.NormalizeMerchant(alias),
				MerchantCode: m.Code,
				DisplayName:  m.Name,
			}
			if err := s.UpsertAlias(&a); err != nil {
				return err
			}
		}
	}
	s.logger.WithField(logging.FieldCount, len(seed.Merchants)).Info("Imported merchant dimensions")
	return nil
}

// ImportRulesSeed converts rule seeds into MerchantRule rows and inserts them
// through the validating write path. Invalid entries are reported without
// aborting the rest of the batch.
func (s *Store) ImportRulesSeed(seed *models.RulesSeed, source string) (int, []error) {
	rules := make([]models.MerchantRule, 0, len(seed.Rules))
	for _, r := range seed.Rules {
		active := true
		if r.Active != nil {
			active = *r.Active
		}
		ruleSource := r.Source
		if ruleSource == "" {
			ruleSource = source
		}
		rules = append(rules, models.MerchantRule{
			Priority:        r.Priority,
			AppliesTo:       r.AppliesTo,
			Pattern:         r.Pattern,
			CategoryCode:    r.Category,
			SubcategoryCode: r.Subcategory,
			Active:          active,
			Source:          ruleSource,
		})
	}
	return s.InsertRules(rules)
}
