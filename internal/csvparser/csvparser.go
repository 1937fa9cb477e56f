// Package csvparser turns bank CSV exports into normalized transactions.
// Column layout comes from a formats.Spec, so the same parser serves any
// institution whose export is header-addressed CSV.
package csvparser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"fjacquet/ledger-import/internal/dateutils"
	"fjacquet/ledger-import/internal/formats"
	"fjacquet/ledger-import/internal/importerror"
	"fjacquet/ledger-import/internal/models"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

// SetLogger allows setting a configured logger.
func SetLogger(logger *logrus.Logger) {
	if logger != nil {
		log = logger
	}
}

// RowError records a row that failed to parse. The line number counts the
// header as line 1.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// Parse reads CSV rows and maps them to transactions using the given
// format spec. Malformed rows are returned as RowErrors rather than
// aborting the whole file; fully blank rows are dropped silently.
func Parse(r io.Reader, spec formats.Spec) ([]models.Transaction, []RowError, error) {
	if err := spec.Validate(); err != nil {
		return nil, nil, err
	}

	if spec.Comma() != ',' {
		normalized, err := normalizeDelimiter(r, spec.Comma())
		if err != nil {
			return nil, nil, fmt.Errorf("error reading CSV: %w", err)
		}
		r = normalized
	}

	rows, err := gocsv.CSVToMaps(r)
	if err != nil {
		return nil, nil, fmt.Errorf("error reading CSV: %w", err)
	}

	var transactions []models.Transaction
	var rowErrs []RowError
	for i, row := range rows {
		line := i + 2 // header is line 1

		if isBlank(row) {
			continue
		}

		tx, err := convertRow(row, spec)
		if err != nil {
			log.WithError(err).WithField("line", line).Warn("Skipping unparseable row")
			rowErrs = append(rowErrs, RowError{Line: line, Err: err})
			continue
		}
		transactions = append(transactions, tx)
	}

	log.WithFields(logrus.Fields{
		"format": spec.Name,
		"rows":   len(rows),
		"parsed": len(transactions),
		"failed": len(rowErrs),
	}).Debug("Parsed CSV rows")
	return transactions, rowErrs, nil
}

// ParseFile parses the CSV file at path using the given format spec.
func ParseFile(path string, spec formats.Spec) ([]models.Transaction, []RowError, error) {
	log.WithFields(logrus.Fields{
		"file":   path,
		"format": spec.Name,
	}).Info("Parsing CSV file")

	file, err := os.Open(path) // #nosec G304 -- CLI tool requires user-provided file paths
	if err != nil {
		return nil, nil, fmt.Errorf("error opening CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.WithError(err).Warn("Failed to close file")
		}
	}()

	return Parse(file, spec)
}

// ValidateFormat checks that the file's header row contains the columns
// the format spec requires.
func ValidateFormat(path string, spec formats.Spec) (bool, error) {
	file, err := os.Open(path) // #nosec G304 -- CLI tool requires user-provided file paths
	if err != nil {
		return false, fmt.Errorf("error opening file for validation: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.WithError(err).Warn("Failed to close file")
		}
	}()

	cr := csv.NewReader(file)
	cr.Comma = spec.Comma()
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return false, nil
	}

	seen := make(map[string]bool, len(header))
	for _, h := range header {
		seen[normalizeHeader(h)] = true
	}
	for _, required := range []string{spec.Columns.Date, spec.Columns.Description, spec.Columns.Amount} {
		if !seen[normalizeHeader(required)] {
			return false, nil
		}
	}
	return true, nil
}

func convertRow(row map[string]string, spec formats.Spec) (models.Transaction, error) {
	dateStr := lookup(row, spec.Columns.Date)
	date, err := dateutils.Parse(dateStr, spec.Layouts()...)
	if err != nil {
		return models.Transaction{}, &importerror.ParseError{
			Format: spec.Name, Field: "date", Value: dateStr, Err: err,
		}
	}

	amountStr := lookup(row, spec.Columns.Amount)
	amount, err := parseAmount(amountStr)
	if err != nil {
		return models.Transaction{}, &importerror.ParseError{
			Format: spec.Name, Field: "amount", Value: amountStr, Err: err,
		}
	}

	description := strings.TrimSpace(lookup(row, spec.Columns.Description))
	if description == "" {
		return models.Transaction{}, &importerror.ParseError{
			Format: spec.Name, Field: "description", Value: "", Err: fmt.Errorf("empty description"),
		}
	}

	return models.Transaction{
		Date:         date,
		Description:  description,
		Amount:       amount,
		AccountLabel: strings.TrimSpace(lookup(row, spec.Columns.Account)),
		AccountType:  spec.AccountType,
		Institution:  spec.Institution,
		Category:     strings.TrimSpace(lookup(row, spec.Columns.Category)),
		Type:         strings.TrimSpace(lookup(row, spec.Columns.Type)),
		Memo:         strings.TrimSpace(lookup(row, spec.Columns.Memo)),
	}, nil
}

// parseAmount normalizes bank amount notation before handing it to
// decimal: currency symbols, thousands separators, and accounting-style
// parenthesized negatives.
func parseAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(s)
	negative := false
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		negative = true
		cleaned = strings.TrimSuffix(strings.TrimPrefix(cleaned, "("), ")")
	}
	cleaned = strings.NewReplacer("$", "", ",", "", " ", "").Replace(cleaned)
	if cleaned == "" {
		return decimal.Decimal{}, fmt.Errorf("empty amount")
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if negative {
		amount = amount.Neg()
	}
	return amount, nil
}

// lookup resolves a column case-insensitively so "description" matches a
// "Description" header.
func lookup(row map[string]string, column string) string {
	if column == "" {
		return ""
	}
	if v, ok := row[column]; ok {
		return v
	}
	want := normalizeHeader(column)
	for k, v := range row {
		if normalizeHeader(k) == want {
			return v
		}
	}
	return ""
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

func isBlank(row map[string]string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// normalizeDelimiter rewrites a CSV with a non-comma delimiter as plain
// comma CSV, which is what gocsv's map reader expects.
func normalizeDelimiter(r io.Reader, comma rune) (io.Reader, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.WriteAll(records); err != nil {
		return nil, err
	}
	return &buf, nil
}
