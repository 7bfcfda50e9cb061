package domain

import "strings"

// CreditStatus is the canonical outcome of a credit check, independent of bureau vocabulary.
type CreditStatus string

const (
	StatusApproved         CreditStatus = "APPROVED"
	StatusReviewRequired   CreditStatus = "REVIEW_REQUIRED"
	StatusDenied           CreditStatus = "DENIED"
	StatusInsufficientData CreditStatus = "INSUFFICIENT_DATA"
)

// CreditStatuses lists every canonical status (matches the credit_check_status enum).
var CreditStatuses = []CreditStatus{StatusApproved, StatusReviewRequired, StatusDenied, StatusInsufficientData}

// NormalizeStatus maps an upstream status token onto a canonical status.
// "Review Required", "review-required" and " REVIEW__REQUIRED " all map to REVIEW_REQUIRED.
// Anything unknown, including the empty string, is INSUFFICIENT_DATA.
func NormalizeStatus(raw string) CreditStatus {
	token := strings.Join(strings.FieldsFunc(strings.ToUpper(strings.TrimSpace(raw)), isStatusSeparator), "_")
	for _, s := range CreditStatuses {
		if token == string(s) {
			return s
		}
	}
	return StatusInsufficientData
}

func isStatusSeparator(r rune) bool {
	return r == ' ' || r == '-' || r == '_' || r == '\t'
}

// Valid reports whether s is one of the canonical statuses.
func (s CreditStatus) Valid() bool {
	for _, c := range CreditStatuses {
		if s == c {
			return true
		}
	}
	return false
}

// CreditSource identifies which bureau produced a decision (credit_check_source enum).
type CreditSource string

const (
	SourceFactorsNetwork CreditSource = "FactorsNetwork"
	SourceTransCredit    CreditSource = "TransCredit"
	SourceAnsonia        CreditSource = "Ansonia"
)

// ParseCreditSource resolves a source tag. Empty input falls back to FactorsNetwork.
func ParseCreditSource(s string) (CreditSource, bool) {
	switch CreditSource(strings.TrimSpace(s)) {
	case "", SourceFactorsNetwork:
		return SourceFactorsNetwork, true
	case SourceTransCredit:
		return SourceTransCredit, true
	case SourceAnsonia:
		return SourceAnsonia, true
	}
	return "", false
}
