// Package enrich handles the enrichment pipeline command
package enrich

import (
	"context"

	"github.com/spf13/cobra"

	"fjacquet/spendsense/cmd/common"
	"fjacquet/spendsense/cmd/root"
	"fjacquet/spendsense/internal/enricher"
	"fjacquet/spendsense/internal/matcher"
)

// Cmd represents the enrich command
var Cmd = &cobra.Command{
	Use:   "enrich",
	Short: "Resolve merchants and apply rules to transactions",
	Long: `Run the enrichment pipeline over the selected scope: resolve each
transaction's merchant identity, apply the active rules, and write the
enriched records. Re-running replaces previous enrichment output.`,
	Run: enrichFunc,
}

func enrichFunc(cmd *cobra.Command, args []string) {
	s := common.OpenStore()

	provider := matcher.NewSnapshotProvider(s, root.Logger())
	e := enricher.New(s, provider, enricher.Options{
		RuleMatchConfidence: root.Cfg.Engine.RuleMatchConfidence,
		FallbackConfidence:  root.Cfg.Engine.FallbackConfidence,
		OwnerNames:          root.Cfg.Engine.OwnerNames,
		Workers:             root.Cfg.Engine.Workers,
	}, root.Logger())

	stats, err := e.Run(context.Background(), common.Scope())
	if err != nil {
		root.Log.Fatalf("Error running enrichment: %v", err)
	}
	root.Log.Infof("Enrichment completed: %d processed, %d failed", stats.Processed, stats.Failed)
}
