package constants

const (
	ViewCredit         = "view_credit"
	RunCreditCheck     = "run_credit_check"
	RetractCreditCheck = "retract_credit_check"
	ViewCompanies      = "view_companies"
	ManageCompanies    = "manage_companies"
)
