package models

// RuleSeed is one merchant rule as declared in the rules YAML seed file.
type RuleSeed struct {
	Priority    int    `yaml:"priority"`
	AppliesTo   string `yaml:"applies_to"`
	Pattern     string `yaml:"pattern"`
	Category    string `yaml:"category"`
	Subcategory string `yaml:"subcategory"`
	Active      *bool  `yaml:"active"`
	Source      string `yaml:"source"`
}

// RulesSeed is the structure of the rules YAML file.
type RulesSeed struct {
	Rules []RuleSeed `yaml:"rules"`
}

// MerchantSeed is one canonical merchant plus its aliases in the merchants
// YAML seed file.
type MerchantSeed struct {
	Code        string   `yaml:"code"`
	Name        string   `yaml:"name"`
	Channel     string   `yaml:"channel"`
	Category    string   `yaml:"category"`
	Subcategory string   `yaml:"subcategory"`
	Keywords    []string `yaml:"keywords"`
	Aliases     []string `yaml:"aliases"`
}

// MerchantsSeed is the structure of the merchants YAML file.
type MerchantsSeed struct {
	Merchants []MerchantSeed `yaml:"merchants"`
}

// SubcategorySeed is one subcategory under a category seed.
type SubcategorySeed struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

// CategorySeed is one category with its subcategories in the categories
// YAML seed file.
type CategorySeed struct {
	Code          string            `yaml:"code"`
	Name          string            `yaml:"name"`
	TxnType       string            `yaml:"txn_type"`
	Subcategories []SubcategorySeed `yaml:"subcategories"`
}

// CategoriesSeed is the structure of the categories YAML file.
type CategoriesSeed struct {
	Categories []CategorySeed `yaml:"categories"`
}
