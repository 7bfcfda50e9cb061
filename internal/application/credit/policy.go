package credit

import (
	"github.com/amanuelrf/reliance-mobile/internal/domain"

	"github.com/shopspring/decimal"
)

// Terms is what the policy grants for one decision.
type Terms struct {
	ApprovedAmount int64 `json:"approved_amount"`
	ValidityDays   int   `json:"validity_days"`
}

type policyRule struct {
	share        decimal.Decimal
	validityDays int
}

var policyTable = map[domain.CreditStatus]policyRule{
	domain.StatusApproved:         {share: decimal.NewFromInt(1), validityDays: 90},
	domain.StatusReviewRequired:   {share: decimal.NewFromFloat(0.5), validityDays: 30},
	domain.StatusDenied:           {share: decimal.Zero, validityDays: 7},
	domain.StatusInsufficientData: {share: decimal.Zero, validityDays: 7},
}

// Decide maps a canonical status and requested amount to approved terms.
// Amounts truncate toward zero; negative requests are treated as zero.
func Decide(status domain.CreditStatus, requested decimal.Decimal) Terms {
	rule, ok := policyTable[status]
	if !ok {
		rule = policyTable[domain.StatusInsufficientData]
	}
	if requested.IsNegative() {
		requested = decimal.Zero
	}
	return Terms{
		ApprovedAmount: requested.Mul(rule.share).Truncate(0).IntPart(),
		ValidityDays:   rule.validityDays,
	}
}
