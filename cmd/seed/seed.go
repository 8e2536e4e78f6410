// Package seed handles dimension and rule seed imports
package seed

import (
	"fjacquet/spendsense/cmd/common"
	"fjacquet/spendsense/cmd/root"

	"github.com/spf13/cobra"
)

// Cmd represents the seed command
var Cmd = &cobra.Command{
	Use:   "seed",
	Short: "Import category, merchant, and rule seed files",
	Long: `Import the YAML seed files configured under seeds.* into the dimension
tables. Categories are imported first so merchant defaults and rules can
reference them. Imports are idempotent; re-running updates existing rows.`,
	Run: seedFunc,
}

func seedFunc(cmd *cobra.Command, args []string) {
	s := common.OpenStore()

	categories, err := s.LoadCategoriesSeed(root.Cfg.Seeds.CategoriesFile)
	if err != nil {
		root.Log.Fatalf("Error loading categories seed: %v", err)
	}
	if err := s.ImportCategoriesSeed(categories); err != nil {
		root.Log.Fatalf("Error importing categories: %v", err)
	}

	merchants, err := s.LoadMerchantsSeed(root.Cfg.Seeds.MerchantsFile)
	if err != nil {
		root.Log.Fatalf("Error loading merchants seed: %v", err)
	}
	if err := s.ImportMerchantsSeed(merchants); err != nil {
		root.Log.Fatalf("Error importing merchants: %v", err)
	}

	rules, err := s.LoadRulesSeed(root.Cfg.Seeds.RulesFile)
	if err != nil {
		root.Log.Fatalf("Error loading rules seed: %v", err)
	}
	inserted, errs := s.ImportRulesSeed(rules, "seed")
	for _, ruleErr := range errs {
		root.Log.Warnf("Rule rejected: %v", ruleErr)
	}

	root.Log.Infof("Seed import completed: %d rules inserted, %d rejected", inserted, len(errs))
}
