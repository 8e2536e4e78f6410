package store

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fjacquet/spendsense/internal/models"
)

// CategoryByCode returns the category dimension row for a code, or nil if it
// does not exist.
func (s *Store) CategoryByCode(code string) (*models.Category, error) {
	var cat models.Category
	err := s.db.Where("code = ?", code).First(&cat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error loading category %q: %w", code, err)
	}
	return &cat, nil
}

// SubcategoryByCode returns the subcategory dimension row for a code, or nil.
func (s *Store) SubcategoryByCode(code string) (*models.Subcategory, error) {
	var sub models.Subcategory
	err := s.db.Where("code = ?", code).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error loading subcategory %q: %w", code, err)
	}
	return &sub, nil
}

// Merchants returns all canonical merchants.
func (s *Store) Merchants() ([]models.Merchant, error) {
	var merchants []models.Merchant
	if err := s.db.Find(&merchants).Error; err != nil {
		return nil, fmt.Errorf("error loading merchants: %w", err)
	}
	return merchants, nil
}

// MerchantByCode returns one canonical merchant, or nil if unknown.
func (s *Store) MerchantByCode(code string) (*models.Merchant, error) {
	var m models.Merchant
	err := s.db.Where("code = ?", code).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error loading merchant %q: %w", code, err)
	}
	return &m, nil
}

// Aliases returns the full alias table. The resolver holds it in memory for
// the duration of a batch run.
func (s *Store) Aliases() ([]models.MerchantAlias, error) {
	var aliases []models.MerchantAlias
	if err := s.db.Find(&aliases).Error; err != nil {
		return nil, fmt.Errorf("error loading merchant aliases: %w", err)
	}
	return aliases, nil
}

// UpsertCategory inserts or updates a category dimension row.
func (s *Store) UpsertCategory(cat *models.Category) error {
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"display_name", "txn_type"}),
	}).Create(cat).Error
	if err != nil {
		return fmt.Errorf("error upserting category %q: %w", cat.Code, err)
	}
	return nil
}

// UpsertSubcategory inserts or updates a subcategory dimension row.
func (s *Store) UpsertSubcategory(sub *models.Subcategory) error {
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"category_code", "display_name"}),
	}).Create(sub).Error
	if err != nil {
		return fmt.Errorf("error upserting subcategory %q: %w", sub.Code, err)
	}
	return nil
}

// UpsertMerchant inserts or updates a canonical merchant.
func (s *Store) UpsertMerchant(m *models.Merchant) error {
	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"display_name", "normalized_name", "keywords",
			"default_category_code", "default_subcategory_code", "channel",
		}),
	}).Create(m).Error
	if err != nil {
		return fmt.Errorf("error upserting merchant %q: %w", m.Code, err)
	}
	return nil
}

// UpsertAlias inserts or updates an alias mapping.
func (s *Store) UpsertAlias(a *models.MerchantAlias) error {
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "alias"}},
		DoUpdates: clause.AssignmentColumns([]string{"merchant_code", "display_name"}),
	}).Create(a).Error
	if err != nil {
		return fmt.Errorf("error upserting alias %q: %w", a.Alias, err)
	}
	return nil
}
