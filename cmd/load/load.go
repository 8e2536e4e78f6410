// Package load handles importing transaction facts from CSV exports
package load

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"fjacquet/spendsense/cmd/common"
	"fjacquet/spendsense/cmd/root"
	"fjacquet/spendsense/internal/models"
)

var inputFile string

// Cmd represents the load command
var Cmd = &cobra.Command{
	Use:   "load",
	Short: "Load transaction facts from a CSV file",
	Long: `Load a CSV of raw transactions into the fact table as a new upload batch.
Expected columns: date, amount, direction, currency, description, and
optionally counterparty and channel.`,
	Run: loadFunc,
}

func init() {
	Cmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input CSV file")
}

// transactionRow is one line of the input CSV.
type transactionRow struct {
	Date         string `csv:"date"`
	Amount       string `csv:"amount"`
	Direction    string `csv:"direction"`
	Currency     string `csv:"currency"`
	Description  string `csv:"description"`
	Counterparty string `csv:"counterparty"`
	Channel      string `csv:"channel"`
}

func loadFunc(cmd *cobra.Command, args []string) {
	if inputFile == "" {
		root.Log.Fatal("--input is required")
	}
	if root.SharedFlags.User == "" {
		root.Log.Fatal("--user is required")
	}

	file, err := os.Open(inputFile)
	if err != nil {
		root.Log.Fatalf("Error opening input file: %v", err)
	}
	defer file.Close()

	var rows []*transactionRow
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		root.Log.Fatalf("Error parsing input file: %v", err)
	}

	s := common.OpenStore()

	batch := &models.UploadBatch{
		ID:       uuid.NewString(),
		UserID:   root.SharedFlags.User,
		Filename: filepath.Base(inputFile),
	}
	if err := s.CreateBatch(batch); err != nil {
		root.Log.Fatalf("Error creating upload batch: %v", err)
	}

	loaded := 0
	for i, row := range rows {
		txn, parsed, err := rowToModels(batch, row)
		if err != nil {
			root.Log.Warnf("Skipping row %d: %v", i+1, err)
			continue
		}
		if err := s.CreateTransaction(txn, parsed); err != nil {
			root.Log.Fatalf("Error inserting row %d: %v", i+1, err)
		}
		loaded++
	}

	root.Log.Infof("Loaded %d of %d transactions into batch %s", loaded, len(rows), batch.ID)
}

func rowToModels(batch *models.UploadBatch, row *transactionRow) (*models.Transaction, *models.ParsedTransaction, error) {
	date, err := time.Parse("2006-01-02", row.Date)
	if err != nil {
		return nil, nil, err
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(row.Amount))
	if err != nil {
		return nil, nil, err
	}

	direction := strings.ToLower(strings.TrimSpace(row.Direction))
	switch direction {
	case models.DirectionDebit, models.DirectionCredit:
	default:
		return nil, nil, errInvalidDirection(direction)
	}

	txn := &models.Transaction{
		ID:             uuid.NewString(),
		UserID:         batch.UserID,
		BatchID:        batch.ID,
		Date:           date,
		Amount:         amount,
		Direction:      direction,
		Currency:       strings.ToUpper(strings.TrimSpace(row.Currency)),
		RawDescription: row.Description,
	}
	parsed := &models.ParsedTransaction{
		ID:           uuid.NewString(),
		Counterparty: row.Counterparty,
		Channel:      strings.ToLower(strings.TrimSpace(row.Channel)),
	}
	return txn, parsed, nil
}

type errInvalidDirection string

func (e errInvalidDirection) Error() string {
	return "direction must be debit or credit, got " + string(e)
}
