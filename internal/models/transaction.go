// Package models defines the canonical transaction and account records
// shared by the CSV parser, the import pipeline and the storage layer.
package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single normalized ledger entry. It is created by the
// import pipeline when a CSV row is parsed and never mutated after it has
// been stored.
type Transaction struct {
	Date         time.Time // posting date
	Description  string
	Amount       decimal.Decimal // signed; negative for outflows
	AccountLabel string
	AccountType  AccountType
	Institution  string
	Category     string // bank-provided category, carried through untouched
	Type         string // bank-provided type tag (Sale, Payment, ...)
	Memo         string
	SourceFile   string
	ImportedAt   time.Time
}

// Fingerprint derives the uniqueness key used for duplicate detection:
// a SHA-256 over date, description, amount and account label. The amount
// is normalized to two decimal places so "4.5" and "4.50" hash the same.
func (t Transaction) Fingerprint() string {
	raw := strings.Join([]string{
		t.Date.Format("2006-01-02"),
		t.Description,
		t.Amount.StringFixed(2),
		t.AccountLabel,
	}, "|")
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Validate checks the fields the storage layer requires.
func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return fmt.Errorf("transaction has no posting date")
	}
	if strings.TrimSpace(t.Description) == "" {
		return fmt.Errorf("transaction has no description")
	}
	if strings.TrimSpace(t.AccountLabel) == "" {
		return fmt.Errorf("transaction has no account label")
	}
	return nil
}

// Account returns the account grouping key for this transaction.
func (t Transaction) Account() Account {
	return Account{
		Label:       t.AccountLabel,
		Type:        t.AccountType,
		Institution: t.Institution,
	}
}

// IsEmpty reports whether the transaction carries no data at all, which
// happens when a CSV row is entirely blank.
func (t Transaction) IsEmpty() bool {
	return t.Date.IsZero() && t.Description == "" && t.Amount.IsZero()
}
