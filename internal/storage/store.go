// Package storage owns the on-disk SQLite store of accounts and imported
// transactions. All failures surface as importerror.StorageError; there is
// no retry logic, this is a local single-user file-backed store.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fjacquet/ledger-import/internal/dateutils"
	"fjacquet/ledger-import/internal/importerror"
	"fjacquet/ledger-import/internal/models"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

var log = logrus.New()

// SetLogger allows setting a configured logger.
func SetLogger(logger *logrus.Logger) {
	if logger != nil {
		log = logger
	}
}

// Store is the durable persistence and query surface over transactions.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if necessary) the database at dbPath and brings the
// schema up to date.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
		return nil, &importerror.StorageError{Op: "create db directory", Err: err}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, &importerror.StorageError{Op: "open database", Err: err}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &importerror.StorageError{Op: "ping database", Err: err}
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, &importerror.StorageError{Op: "migrate database", Err: err}
	}

	log.WithField("path", dbPath).Debug("Database opened")
	return &Store{db: db, path: dbPath}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// UpsertAccount returns the id of the account with the given label,
// creating it if it does not exist yet.
func (s *Store) UpsertAccount(ctx context.Context, account models.Account) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT account_id FROM accounts WHERE label = ?`, account.Label).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, &importerror.StorageError{Op: "lookup account", Err: err}
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (label, account_type, institution) VALUES (?, ?, ?)`,
		account.Label, string(account.Type), account.Institution)
	if err != nil {
		return 0, &importerror.StorageError{Op: "insert account", Err: err}
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, &importerror.StorageError{Op: "insert account", Err: err}
	}

	log.WithFields(logrus.Fields{
		"label": account.Label,
		"type":  account.Type,
	}).Info("Created account")
	return id, nil
}

// Exists reports whether a transaction with the given fingerprint is
// already stored. Exact match only, no tolerance window.
func (s *Store) Exists(ctx context.Context, fingerprint string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM transactions WHERE fingerprint = ? LIMIT 1`, fingerprint).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, &importerror.StorageError{Op: "lookup fingerprint", Err: err}
	}
	return true, nil
}

// InsertTransaction appends a new record. Inserting a fingerprint that is
// already stored fails with a StorageError wrapping ErrDuplicate.
func (s *Store) InsertTransaction(ctx context.Context, accountID int64, tx models.Transaction) error {
	if err := tx.Validate(); err != nil {
		return &importerror.StorageError{Op: "insert transaction", Err: err}
	}

	fingerprint := tx.Fingerprint()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions
		   (account_id, posting_date, description, amount_cents,
		    original_category, txn_type, memo, source_file, fingerprint)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		accountID,
		dateutils.ToISO(tx.Date),
		tx.Description,
		toCents(tx.Amount),
		tx.Category,
		tx.Type,
		tx.Memo,
		tx.SourceFile,
		fingerprint)
	if err != nil {
		if isUniqueViolation(err) {
			return &importerror.StorageError{
				Op:  "insert transaction",
				Err: fmt.Errorf("%w: fingerprint %s", importerror.ErrDuplicate, fingerprint),
			}
		}
		return &importerror.StorageError{Op: "insert transaction", Err: err}
	}
	return nil
}

// AccountSummary aggregates one account's stored activity. Inflow and
// Outflow are both non-negative; how they read depends on the account
// type (charges/payments for credit cards, expenses/income for bank
// accounts).
type AccountSummary struct {
	Label       string
	Type        models.AccountType
	Institution string
	Count       int
	Outflow     decimal.Decimal
	Inflow      decimal.Decimal
	Net         decimal.Decimal
}

// TypeSummary aggregates stored activity across all accounts of one type.
type TypeSummary struct {
	Type  models.AccountType
	Count int
	Total decimal.Decimal
}

// Summaries returns per-account aggregate totals. Read-only.
func (s *Store) Summaries(ctx context.Context) ([]AccountSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.label, a.account_type, a.institution,
		       COUNT(t.transaction_id),
		       COALESCE(SUM(CASE WHEN t.amount_cents < 0 THEN -t.amount_cents ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN t.amount_cents > 0 THEN t.amount_cents ELSE 0 END), 0),
		       COALESCE(SUM(t.amount_cents), 0)
		FROM accounts a
		LEFT JOIN transactions t ON t.account_id = a.account_id
		GROUP BY a.account_id
		ORDER BY a.label`)
	if err != nil {
		return nil, &importerror.StorageError{Op: "query summaries", Err: err}
	}
	defer rows.Close()

	var summaries []AccountSummary
	for rows.Next() {
		var sm AccountSummary
		var accountType string
		var outflow, inflow, net int64
		if err := rows.Scan(&sm.Label, &accountType, &sm.Institution,
			&sm.Count, &outflow, &inflow, &net); err != nil {
			return nil, &importerror.StorageError{Op: "scan summary", Err: err}
		}
		sm.Type = models.AccountType(accountType)
		sm.Outflow = fromCents(outflow)
		sm.Inflow = fromCents(inflow)
		sm.Net = fromCents(net)
		summaries = append(summaries, sm)
	}
	if err := rows.Err(); err != nil {
		return nil, &importerror.StorageError{Op: "query summaries", Err: err}
	}
	return summaries, nil
}

// TypeTotals returns aggregate sum and count grouped by account type.
func (s *Store) TypeTotals(ctx context.Context) ([]TypeSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.account_type, COUNT(t.transaction_id), COALESCE(SUM(t.amount_cents), 0)
		FROM accounts a
		JOIN transactions t ON t.account_id = a.account_id
		GROUP BY a.account_type
		ORDER BY a.account_type`)
	if err != nil {
		return nil, &importerror.StorageError{Op: "query type totals", Err: err}
	}
	defer rows.Close()

	var totals []TypeSummary
	for rows.Next() {
		var ts TypeSummary
		var accountType string
		var total int64
		if err := rows.Scan(&accountType, &ts.Count, &total); err != nil {
			return nil, &importerror.StorageError{Op: "scan type total", Err: err}
		}
		ts.Type = models.AccountType(accountType)
		ts.Total = fromCents(total)
		totals = append(totals, ts)
	}
	if err := rows.Err(); err != nil {
		return nil, &importerror.StorageError{Op: "query type totals", Err: err}
	}
	return totals, nil
}

// StoredTransaction is a transaction read back from the store, joined
// with its account.
type StoredTransaction struct {
	Date         time.Time
	Description  string
	Amount       decimal.Decimal
	AccountLabel string
	AccountType  models.AccountType
	Institution  string
	Category     string
	SourceFile   string
}

// ListTransactions returns up to limit stored transactions, most recent
// posting date first.
func (s *Store) ListTransactions(ctx context.Context, limit int) ([]StoredTransaction, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.posting_date, t.description, t.amount_cents,
		       a.label, a.account_type, a.institution,
		       t.original_category, t.source_file
		FROM transactions t
		JOIN accounts a ON t.account_id = a.account_id
		ORDER BY t.posting_date DESC, t.transaction_id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, &importerror.StorageError{Op: "query transactions", Err: err}
	}
	defer rows.Close()

	var txs []StoredTransaction
	for rows.Next() {
		var tx StoredTransaction
		var dateStr, accountType string
		var cents int64
		if err := rows.Scan(&dateStr, &tx.Description, &cents,
			&tx.AccountLabel, &accountType, &tx.Institution,
			&tx.Category, &tx.SourceFile); err != nil {
			return nil, &importerror.StorageError{Op: "scan transaction", Err: err}
		}
		date, err := time.Parse(dateutils.DateLayoutISO, dateStr)
		if err != nil {
			return nil, &importerror.StorageError{Op: "scan transaction", Err: err}
		}
		tx.Date = date
		tx.AccountType = models.AccountType(accountType)
		tx.Amount = fromCents(cents)
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, &importerror.StorageError{Op: "query transactions", Err: err}
	}
	return txs, nil
}

// toCents stores amounts as integer cents so SQL aggregation stays exact.
func toCents(amount decimal.Decimal) int64 {
	return amount.Round(2).Shift(2).IntPart()
}

func fromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
