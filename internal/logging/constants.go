package logging

// Standardized field names for structured logging. Using the same keys across
// the engine keeps batch-run logs filterable by transaction, batch, or rule.
const (
	FieldTransactionID = "transaction_id"
	FieldBatchID       = "batch_id"
	FieldUserID        = "user_id"
	FieldRuleID        = "rule_id"
	FieldPriority      = "priority"
	FieldCategory      = "category"
	FieldSubcategory   = "subcategory"
	FieldMerchant      = "merchant"
	FieldBankCode      = "bank_code"
	FieldConfidence    = "confidence"
	FieldOperation     = "operation"
	FieldStatus        = "status"
	FieldReason        = "reason"
	FieldCount         = "count"
	FieldDuration      = "duration_ms"
)
