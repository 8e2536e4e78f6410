// Package dedupe handles the duplicate-collapse command
package dedupe

import (
	"github.com/spf13/cobra"

	"fjacquet/spendsense/cmd/common"
	"fjacquet/spendsense/cmd/root"
	"fjacquet/spendsense/internal/dedup"
)

// Cmd represents the dedupe command
var Cmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Collapse duplicate transaction extractions",
	Long: `Find groups of transactions that are the same underlying payment and keep
one survivor per group. Dependent parsed and enriched records of the removed
rows are deleted with them.`,
	Run: dedupeFunc,
}

func dedupeFunc(cmd *cobra.Command, args []string) {
	s := common.OpenStore()

	d := dedup.New(s, root.Logger())
	stats, err := d.Run(common.Scope())
	if err != nil {
		root.Log.Fatalf("Error running dedupe: %v", err)
	}
	root.Log.Infof("Dedupe completed: %d scanned, %d groups, %d removed",
		stats.Scanned, stats.Groups, stats.Deleted)
}
