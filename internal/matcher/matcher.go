package matcher

import "fjacquet/spendsense/internal/models"

// Input carries the two separately-targetable text fields of one transaction.
// MerchantText is the normalized text of a resolved merchant and may be
// empty; Description is always the raw description.
type Input struct {
	MerchantText string
	Description  string
}

// fieldAccessors maps a rule's applies_to tag to the input field it tests.
// A closed set; the validating write path rejects anything else.
var fieldAccessors = map[string]func(Input) string{
	models.RuleFieldMerchant:    func(in Input) string { return in.MerchantText },
	models.RuleFieldDescription: func(in Input) string { return in.Description },
}

// Match is the outcome of a successful rule match.
type Match struct {
	RuleID          uint
	Priority        int
	CategoryCode    string
	SubcategoryCode string
}

// Match runs the input through the snapshot in priority order and returns the
// first rule whose pattern matches its declared field. The boolean is false
// when no rule matches; the pipeline then applies its direction-based
// fallback. Matching never mutates the snapshot, so one snapshot can serve
// any number of concurrent workers.
func (rs *RuleSet) Match(in Input) (Match, bool) {
	for _, cr := range rs.rules {
		accessor, ok := fieldAccessors[cr.rule.AppliesTo]
		if !ok {
			continue
		}
		text := accessor(in)
		if text == "" {
			continue
		}
		if cr.re.MatchString(text) {
			return Match{
				RuleID:          cr.rule.ID,
				Priority:        cr.rule.Priority,
				CategoryCode:    cr.rule.CategoryCode,
				SubcategoryCode: cr.rule.SubcategoryCode,
			}, true
		}
	}
	return Match{}, false
}
