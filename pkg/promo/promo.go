package promo

import (
	"strings"

	"github.com/minhlong-dev/industro-backend/pkg/enums"
)

// Rule describes what a promo code grants at checkout.
type Rule struct {
	Code      string
	Kind      enums.DiscountKind
	Percent   int64
	AmountVND int64
}

// Table is the set of promo codes the storefront honors. Lookup is
// case-insensitive and ignores surrounding whitespace.
type Table map[string]Rule

// Lookup resolves a raw promo code input against the table.
func (t Table) Lookup(code string) (Rule, bool) {
	normalized := Normalize(code)
	if normalized == "" {
		return Rule{}, false
	}
	rule, ok := t[normalized]
	return rule, ok
}

// Normalize trims and uppercases a promo code for matching.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// DefaultTable returns the built-in promo catalog.
func DefaultTable() Table {
	return Table{
		"GIAM10": {
			Code:    "GIAM10",
			Kind:    enums.DiscountKindPercentage,
			Percent: 10,
		},
		"GIAM50K": {
			Code:      "GIAM50K",
			Kind:      enums.DiscountKindFixed,
			AmountVND: 50000,
		},
		"FREESHIP": {
			Code: "FREESHIP",
			Kind: enums.DiscountKindFreeShipping,
		},
	}
}
