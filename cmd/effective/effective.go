// Package effective handles the effective-record export command
package effective

import (
	"os"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"

	"fjacquet/spendsense/cmd/common"
	"fjacquet/spendsense/cmd/root"
	"fjacquet/spendsense/internal/models"
	"fjacquet/spendsense/internal/projector"
)

var outputFile string

// Cmd represents the effective command
var Cmd = &cobra.Command{
	Use:   "effective",
	Short: "Export the effective records for a scope as CSV",
	Long: `Compute the effective record for every transaction in the scope, merging
enrichment output with user overrides under the engine's precedence order,
and write the result as CSV.`,
	Run: effectiveFunc,
}

func init() {
	Cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output CSV file (stdout if omitted)")
}

// effectiveRow is one exported CSV line.
type effectiveRow struct {
	TransactionID string `csv:"transaction_id"`
	Category      string `csv:"category"`
	Subcategory   string `csv:"subcategory"`
	TxnType       string `csv:"txn_type"`
	MerchantCode  string `csv:"merchant_code"`
	MerchantName  string `csv:"merchant_name"`
	HasMerchant   string `csv:"has_merchant"`
	Channel       string `csv:"channel"`
	BankCode      string `csv:"bank_code"`
	Confidence    string `csv:"confidence"`
	Description   string `csv:"description"`
}

func effectiveFunc(cmd *cobra.Command, args []string) {
	s := common.OpenStore()

	p := projector.New(s, root.Logger())
	records, err := p.ProjectScope(common.Scope())
	if err != nil {
		root.Log.Fatalf("Error computing effective records: %v", err)
	}

	rows := make([]*effectiveRow, 0, len(records))
	for i := range records {
		rows = append(rows, toRow(&records[i]))
	}

	out := os.Stdout
	if outputFile != "" {
		file, err := os.OpenFile(outputFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, models.PermissionReportFile)
		if err != nil {
			root.Log.Fatalf("Error creating output file: %v", err)
		}
		defer file.Close()
		out = file
	}

	if err := gocsv.Marshal(rows, out); err != nil {
		root.Log.Fatalf("Error writing CSV: %v", err)
	}
	root.Log.Infof("Exported %d effective records", len(rows))
}

func toRow(r *models.EffectiveRecord) *effectiveRow {
	return &effectiveRow{
		TransactionID: r.TransactionID,
		Category:      r.CategoryCode,
		Subcategory:   r.SubcategoryCode,
		TxnType:       r.TxnType,
		MerchantCode:  r.MerchantCode,
		MerchantName:  r.MerchantName,
		HasMerchant:   r.HasMerchantFlag(),
		Channel:       r.Channel,
		BankCode:      r.BankCode,
		Confidence:    r.ConfidenceString(),
		Description:   r.RawDescription,
	}
}
