package models

// Transaction directions
const (
	DirectionDebit  = "debit"
	DirectionCredit = "credit"
)

// Coarse semantic buckets; every effective record carries exactly one
const (
	TxnTypeIncome   = "income"
	TxnTypeWants    = "wants"
	TxnTypeNeeds    = "needs"
	TxnTypeDebt     = "debt"
	TxnTypeAssets   = "assets"
	TxnTypeTransfer = "transfer"
	TxnTypeFees     = "fees"
)

// Transfer-type tags derived during enrichment
const (
	TransferTypeSelf     = "self"
	TransferTypeP2P      = "p2p"
	TransferTypeMerchant = "merchant"
)

// Fields a merchant rule can target (applies_to)
const (
	RuleFieldMerchant    = "merchant"
	RuleFieldDescription = "description"
)

// Merchant channels
const (
	ChannelOnline  = "online"
	ChannelOffline = "offline"
)

// Confidence levels for user-confirmed and automatic classification
const (
	ConfidenceOverride  = 1.0
	ConfidenceRuleMatch = 0.9
	ConfidenceFallback  = 0.5
)

// File permissions
const (
	PermissionConfigFile = 0600
	PermissionReportFile = 0644
	PermissionDirectory  = 0750
)
