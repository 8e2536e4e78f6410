// Package banksource infers which bank a batch of transactions came from.
// Statement exports rarely say so explicitly, but the upload filename and the
// transaction descriptions leak the answer through app-specific keywords and
// IFSC code prefixes. Inference only ever fills a missing bank code; a code
// already on a row is never touched.
package banksource

import (
	"regexp"
	"strings"

	"fjacquet/spendsense/internal/logging"
	"fjacquet/spendsense/internal/models"
	"fjacquet/spendsense/internal/store"
)

// Bank codes the engine recognizes.
const (
	BankAxis    = "axis_bank"
	BankHDFC    = "hdfc_bank"
	BankICICI   = "icici_bank"
	BankSBI     = "sbi_bank"
	BankKotak   = "kotak_bank"
	BankCanara  = "canara_bank"
	BankFederal = "federal_bank"
)

// filenameKeywords maps tokens that bank apps embed in exported statement
// filenames to bank codes. Matched case-insensitively as substrings.
var filenameKeywords = []struct {
	keyword string
	code    string
}{
	{"axismb", BankAxis},
	{"axisbank", BankAxis},
	{"hdfcmb", BankHDFC},
	{"hdfcbank", BankHDFC},
	{"imobile", BankICICI},
	{"icici", BankICICI},
	{"yonosbi", BankSBI},
	{"sbi", BankSBI},
	{"kotak", BankKotak},
	{"canara", BankCanara},
	{"fedmobile", BankFederal},
	{"federal", BankFederal},
}

// ifscPrefixes maps the four-letter bank portion of an IFSC code to a bank
// code. IFSC codes show up verbatim in NEFT/IMPS/RTGS descriptions.
var ifscPrefixes = map[string]string{
	"UTIB": BankAxis,
	"HDFC": BankHDFC,
	"ICIC": BankICICI,
	"SBIN": BankSBI,
	"KKBK": BankKotak,
	"CNRB": BankCanara,
	"FDRL": BankFederal,
}

// An IFSC code is 4 letters, a zero, then 6 alphanumerics.
var ifscPattern = regexp.MustCompile(`\b([A-Z]{4})0[A-Z0-9]{6}\b`)

// Storage is the persistence surface inference needs.
type Storage interface {
	Batches(scope store.Scope) ([]models.UploadBatch, error)
	Transactions(scope store.Scope) ([]models.Transaction, error)
	SetBankCode(transactionID, bankCode string) (bool, error)
}

// Inferrer backfills missing bank codes for a scope.
type Inferrer struct {
	storage Storage
	logger  logging.Logger
}

// New creates a bank-source inferrer over the given storage.
func New(storage Storage, logger logging.Logger) *Inferrer {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Inferrer{storage: storage, logger: logger}
}

// Stats summarizes one inference pass.
type Stats struct {
	Scanned    int
	Filled     int
	Unresolved int
}

// Run backfills bank codes in two passes. Pass one resolves each batch from
// its upload filename. Pass two resolves the remaining batches from their
// members' descriptions: one statement export comes from one bank, so a
// single IFSC hit anywhere in a batch settles the whole batch. The resolved
// code is applied to every row of the batch still missing one; rows with no
// signal from either pass stay null.
func (inf *Inferrer) Run(scope store.Scope) (*Stats, error) {
	batches, err := inf.storage.Batches(scope)
	if err != nil {
		return nil, err
	}
	batchCodes := make(map[string]string, len(batches))
	for _, batch := range batches {
		if code, ok := FromFilename(batch.Filename); ok {
			batchCodes[batch.ID] = code
		}
	}

	txns, err := inf.storage.Transactions(scope)
	if err != nil {
		return nil, err
	}

	for i := range txns {
		txn := &txns[i]
		if txn.BatchID == "" {
			continue
		}
		if _, ok := batchCodes[txn.BatchID]; ok {
			continue
		}
		if code, ok := FromDescription(txn.RawDescription); ok {
			batchCodes[txn.BatchID] = code
		}
	}

	stats := &Stats{Scanned: len(txns)}
	for i := range txns {
		txn := &txns[i]
		if txn.BankCode != "" {
			continue
		}

		code, ok := batchCodes[txn.BatchID]
		if !ok {
			// Rows outside any batch only have their own description.
			code, ok = FromDescription(txn.RawDescription)
		}
		if !ok {
			stats.Unresolved++
			continue
		}

		filled, err := inf.storage.SetBankCode(txn.ID, code)
		if err != nil {
			return nil, err
		}
		if filled {
			stats.Filled++
			inf.logger.Debug("bank code inferred",
				logging.Field{Key: logging.FieldTransactionID, Value: txn.ID},
				logging.Field{Key: logging.FieldBankCode, Value: code},
			)
		}
	}

	inf.logger.Info("bank source inference finished",
		logging.Field{Key: "scanned", Value: stats.Scanned},
		logging.Field{Key: "filled", Value: stats.Filled},
		logging.Field{Key: "unresolved", Value: stats.Unresolved},
	)
	return stats, nil
}

// FromFilename resolves a bank code from an upload filename. The first
// keyword hit wins; keywords are ordered so app-specific tokens beat the
// generic bank-name substrings they contain.
func FromFilename(filename string) (string, bool) {
	lower := strings.ToLower(filename)
	for _, entry := range filenameKeywords {
		if strings.Contains(lower, entry.keyword) {
			return entry.code, true
		}
	}
	return "", false
}

// FromDescription resolves a bank code from a transaction description by
// finding an embedded IFSC code with a known bank prefix.
func FromDescription(description string) (string, bool) {
	for _, match := range ifscPattern.FindAllStringSubmatch(strings.ToUpper(description), -1) {
		if code, ok := ifscPrefixes[match[1]]; ok {
			return code, true
		}
	}
	return "", false
}
