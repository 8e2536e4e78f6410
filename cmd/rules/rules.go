// Package rules handles merchant rule inspection and management commands
package rules

import (
	"fmt"
	"os"
	"text/tabwriter"

	"fjacquet/spendsense/cmd/common"
	"fjacquet/spendsense/cmd/root"

	"github.com/spf13/cobra"
)

var ruleID uint

// Cmd represents the rules command
var Cmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect and manage merchant rules",
	Run:   listFunc,
}

var enableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Activate a rule by id",
	Run:   func(cmd *cobra.Command, args []string) { setActive(true) },
}

var disableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Deactivate a rule by id",
	Run:   func(cmd *cobra.Command, args []string) { setActive(false) },
}

func init() {
	enableCmd.Flags().UintVar(&ruleID, "id", 0, "Rule id")
	disableCmd.Flags().UintVar(&ruleID, "id", 0, "Rule id")
	Cmd.AddCommand(enableCmd)
	Cmd.AddCommand(disableCmd)
}

func listFunc(cmd *cobra.Command, args []string) {
	s := common.OpenStore()

	rules, err := s.ActiveRules(root.SharedFlags.User)
	if err != nil {
		root.Log.Fatalf("Error loading rules: %v", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRIORITY\tAPPLIES TO\tPATTERN\tCATEGORY\tSUBCATEGORY\tSOURCE")
	for _, r := range rules {
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Priority, r.AppliesTo, r.Pattern, r.CategoryCode, r.SubcategoryCode, r.Source)
	}
	if err := w.Flush(); err != nil {
		root.Log.Fatalf("Error writing rule listing: %v", err)
	}
}

func setActive(active bool) {
	if ruleID == 0 {
		root.Log.Fatal("--id is required")
	}
	s := common.OpenStore()
	if err := s.SetRuleActive(ruleID, active); err != nil {
		root.Log.Fatalf("Error updating rule: %v", err)
	}
	root.Log.Infof("Rule %d active=%t", ruleID, active)
}
