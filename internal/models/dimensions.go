package models

import "time"

// Category is a top-level classification dimension. TxnType is the coarse
// semantic bucket the category rolls up into.
type Category struct {
	Code        string `gorm:"primaryKey;size:64"`
	DisplayName string `gorm:"size:128"`
	TxnType     string `gorm:"size:16"`
}

// Subcategory refines a Category.
type Subcategory struct {
	Code         string `gorm:"primaryKey;size:64"`
	CategoryCode string `gorm:"index;size:64;not null"`
	DisplayName  string `gorm:"size:128"`
}

// Merchant is the canonical identity noisy raw merchant strings resolve to.
type Merchant struct {
	Code                   string   `gorm:"primaryKey;size:64"`
	DisplayName            string   `gorm:"size:128"`
	NormalizedName         string   `gorm:"index;size:128"`
	Keywords               []string `gorm:"serializer:json"`
	DefaultCategoryCode    string   `gorm:"size:64"`
	DefaultSubcategoryCode string   `gorm:"size:64"`
	Channel                string   `gorm:"size:16"`
}

// MerchantAlias maps one normalized raw text fragment to a canonical merchant.
// Many aliases may map to the same merchant.
type MerchantAlias struct {
	ID           uint   `gorm:"primaryKey"`
	Alias        string `gorm:"uniqueIndex;size:128;not null"`
	MerchantCode string `gorm:"index;size:64;not null"`
	DisplayName  string `gorm:"size:128"`
}

// MerchantRule is one user-editable pattern→outcome tuple. Lower Priority
// values are evaluated first and win on first match. Rules are data, not code:
// editing them changes future matches only.
type MerchantRule struct {
	ID              uint   `gorm:"primaryKey"`
	Priority        int    `gorm:"index;not null"`
	AppliesTo       string `gorm:"size:16;not null"`
	Pattern         string `gorm:"not null"`
	CategoryCode    string `gorm:"size:64;not null"`
	SubcategoryCode string `gorm:"size:64"`
	Active          bool   `gorm:"index"`
	Source          string `gorm:"size:32"`
	TenantID        string `gorm:"size:36"`
	Fingerprint     string `gorm:"index;size:64"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
