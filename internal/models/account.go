package models

import "strings"

// AccountType classifies an account for summary purposes. Credit card
// activity reads as charges/payments, bank account activity as
// expenses/income.
type AccountType string

const (
	AccountTypeCreditCard AccountType = "credit-card"
	AccountTypeBank       AccountType = "bank-account"
	AccountTypeUnknown    AccountType = "unknown"
)

// ParseAccountType normalizes free-form account type text as found in
// bank exports or user configuration ("Credit Card", "checking", ...).
func ParseAccountType(s string) AccountType {
	lower := strings.ToLower(strings.TrimSpace(s))
	switch {
	case lower == "":
		return AccountTypeUnknown
	case strings.Contains(lower, "credit"):
		return AccountTypeCreditCard
	case strings.Contains(lower, "bank"),
		strings.Contains(lower, "checking"),
		strings.Contains(lower, "saving"),
		strings.Contains(lower, "debit"):
		return AccountTypeBank
	default:
		return AccountTypeUnknown
	}
}

// IsCreditCard returns true for credit card accounts.
func (t AccountType) IsCreditCard() bool {
	return t == AccountTypeCreditCard
}

// Account identifies the grouping key for transactions: a label such as
// "Chase - freedom_2024" plus its type and institution.
type Account struct {
	Label       string
	Type        AccountType
	Institution string
}
