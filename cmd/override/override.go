// Package override handles user correction commands
package override

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fjacquet/spendsense/cmd/common"
	"fjacquet/spendsense/cmd/root"
	"fjacquet/spendsense/internal/models"
)

var (
	transactionID string
	category      string
	subcategory   string
	txnType       string
)

// Cmd represents the override command
var Cmd = &cobra.Command{
	Use:   "override",
	Short: "Record a manual correction for a transaction",
	Long: `Append a user correction for one transaction. Corrections are append-only;
the most recent one wins when the effective record is computed, and the full
history is kept for audit.`,
	Run: overrideFunc,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the correction history for a transaction",
	Run:   historyFunc,
}

func init() {
	Cmd.Flags().StringVarP(&transactionID, "transaction", "t", "", "Transaction id")
	Cmd.Flags().StringVarP(&category, "category", "c", "", "Category code")
	Cmd.Flags().StringVarP(&subcategory, "subcategory", "s", "", "Subcategory code")
	Cmd.Flags().StringVar(&txnType, "type", "", "Transaction type (income, wants, needs, debt, assets, transfer, fees)")

	historyCmd.Flags().StringVarP(&transactionID, "transaction", "t", "", "Transaction id")
	Cmd.AddCommand(historyCmd)
}

func overrideFunc(cmd *cobra.Command, args []string) {
	if transactionID == "" {
		root.Log.Fatal("--transaction is required")
	}
	if category == "" && txnType == "" {
		root.Log.Fatal("nothing to override: provide --category and/or --type")
	}

	s := common.OpenStore()

	txn, err := s.TransactionByID(transactionID)
	if err != nil {
		root.Log.Fatalf("Error loading transaction: %v", err)
	}
	if txn == nil {
		root.Log.Fatalf("Transaction %s not found", transactionID)
	}

	if category != "" {
		cat, err := s.CategoryByCode(category)
		if err != nil {
			root.Log.Fatalf("Error loading category: %v", err)
		}
		if cat == nil {
			root.Log.Fatalf("Unknown category %q", category)
		}
	}

	err = s.AppendOverride(&models.Override{
		TransactionID:   transactionID,
		CategoryCode:    category,
		SubcategoryCode: subcategory,
		TxnType:         txnType,
	})
	if err != nil {
		root.Log.Fatalf("Error recording override: %v", err)
	}
	root.Log.Infof("Override recorded for transaction %s", transactionID)
}

func historyFunc(cmd *cobra.Command, args []string) {
	if transactionID == "" {
		root.Log.Fatal("--transaction is required")
	}

	s := common.OpenStore()
	overrides, err := s.Overrides(transactionID)
	if err != nil {
		root.Log.Fatalf("Error loading overrides: %v", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tCATEGORY\tSUBCATEGORY\tTYPE")
	for _, o := range overrides {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			o.CreatedAt.Format("2006-01-02 15:04:05"), o.CategoryCode, o.SubcategoryCode, o.TxnType)
	}
	if err := w.Flush(); err != nil {
		root.Log.Fatalf("Error writing override history: %v", err)
	}
}
