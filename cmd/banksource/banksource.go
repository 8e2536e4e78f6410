// Package banksource handles the bank-source inference command
package banksource

import (
	"github.com/spf13/cobra"

	"fjacquet/spendsense/cmd/common"
	"fjacquet/spendsense/cmd/root"
	"fjacquet/spendsense/internal/banksource"
)

// Cmd represents the banksource command
var Cmd = &cobra.Command{
	Use:   "banksource",
	Short: "Infer the source bank for transactions missing one",
	Long: `Backfill missing bank codes from upload filenames and IFSC codes embedded
in transaction descriptions. Codes already present are never changed.`,
	Run: banksourceFunc,
}

func banksourceFunc(cmd *cobra.Command, args []string) {
	s := common.OpenStore()

	inf := banksource.New(s, root.Logger())
	stats, err := inf.Run(common.Scope())
	if err != nil {
		root.Log.Fatalf("Error running bank source inference: %v", err)
	}
	root.Log.Infof("Bank source inference completed: %d scanned, %d filled, %d unresolved",
		stats.Scanned, stats.Filled, stats.Unresolved)
}
