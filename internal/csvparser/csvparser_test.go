package csvparser

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fjacquet/ledger-import/internal/formats"
	"fjacquet/ledger-import/internal/importerror"
	"fjacquet/ledger-import/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chaseCSV = `Transaction Date,Post Date,Description,Category,Type,Amount,Memo
01/05/2024,01/06/2024,Coffee Shop,Food & Drink,Sale,-4.50,
01/06/2024,01/07/2024,Payment Thank You,,Payment,250.00,
01/08/2024,01/09/2024,Grocery Store,Groceries,Sale,"-1,024.99",weekly run
`

func TestParseChase(t *testing.T) {
	txs, rowErrs, err := Parse(strings.NewReader(chaseCSV), formats.Chase())
	require.NoError(t, err)
	assert.Empty(t, rowErrs)
	require.Len(t, txs, 3)

	first := txs[0]
	assert.Equal(t, "Coffee Shop", first.Description)
	assert.Equal(t, "-4.5", first.Amount.String())
	assert.Equal(t, "2024-01-05", first.Date.Format("2006-01-02"))
	assert.Equal(t, "Food & Drink", first.Category)
	assert.Equal(t, "Sale", first.Type)
	assert.Equal(t, models.AccountTypeCreditCard, first.AccountType)
	assert.Equal(t, "Chase", first.Institution)

	// Thousands separator stripped.
	assert.Equal(t, "-1024.99", txs[2].Amount.String())
	assert.Equal(t, "weekly run", txs[2].Memo)
}

func TestParseSkipsMalformedRows(t *testing.T) {
	content := `Transaction Date,Post Date,Description,Category,Type,Amount,Memo
01/05/2024,01/06/2024,Coffee Shop,Food & Drink,Sale,-4.50,
01/06/2024,01/07/2024,Broken Amount,,Sale,abc,
99/99/9999,,Broken Date,,Sale,-1.00,
01/08/2024,01/09/2024,Grocery Store,Groceries,Sale,-12.00,
`
	txs, rowErrs, err := Parse(strings.NewReader(content), formats.Chase())
	require.NoError(t, err)
	require.Len(t, txs, 2)
	require.Len(t, rowErrs, 2)

	assert.Equal(t, 3, rowErrs[0].Line)
	assert.Equal(t, 4, rowErrs[1].Line)

	var parseErr *importerror.ParseError
	require.True(t, errors.As(rowErrs[0].Err, &parseErr))
	assert.Equal(t, "amount", parseErr.Field)
	assert.Equal(t, "abc", parseErr.Value)

	require.True(t, errors.As(rowErrs[1].Err, &parseErr))
	assert.Equal(t, "date", parseErr.Field)
}

func TestParseSkipsBlankRows(t *testing.T) {
	content := `Transaction Date,Post Date,Description,Category,Type,Amount,Memo
01/05/2024,01/06/2024,Coffee Shop,Food & Drink,Sale,-4.50,
,,,,,,
`
	txs, rowErrs, err := Parse(strings.NewReader(content), formats.Chase())
	require.NoError(t, err)
	assert.Empty(t, rowErrs)
	assert.Len(t, txs, 1)
}

func TestParseAmountNotation(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"-4.50", "-4.5"},
		{"$250.00", "250"},
		{"(4.50)", "-4.5"},
		{"($1,024.99)", "-1024.99"},
		{"2000.00", "2000"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseAmount(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}

	_, err := parseAmount("")
	assert.Error(t, err)
	_, err = parseAmount("abc")
	assert.Error(t, err)
}

func TestParseAccountColumn(t *testing.T) {
	spec := formats.Spec{
		Name:        "generic",
		DateLayouts: []string{"2006-01-02"},
		Columns: formats.Columns{
			Date:        "Date",
			Description: "Description",
			Amount:      "Amount",
			Account:     "Account",
		},
		AccountType: models.AccountTypeBank,
	}
	content := `Date,Description,Amount,Account
2024-01-05,Coffee Shop,-4.50,CC1
2024-01-06,Salary,2000.00,BANK1
`
	txs, rowErrs, err := Parse(strings.NewReader(content), spec)
	require.NoError(t, err)
	assert.Empty(t, rowErrs)
	require.Len(t, txs, 2)
	assert.Equal(t, "CC1", txs[0].AccountLabel)
	assert.Equal(t, "BANK1", txs[1].AccountLabel)
}

func TestParseSemicolonDelimiter(t *testing.T) {
	spec := formats.Spec{
		Name:        "euro",
		Delimiter:   ";",
		DateLayouts: []string{"02.01.2006"},
		Columns: formats.Columns{
			Date:        "Datum",
			Description: "Buchungstext",
			Amount:      "Betrag",
		},
		AccountType: models.AccountTypeBank,
	}
	content := "Datum;Buchungstext;Betrag\n05.01.2024;Kaffee;-4.50\n"

	txs, rowErrs, err := Parse(strings.NewReader(content), spec)
	require.NoError(t, err)
	assert.Empty(t, rowErrs)
	require.Len(t, txs, 1)
	assert.Equal(t, "Kaffee", txs[0].Description)
}

func TestParseHeaderCaseInsensitive(t *testing.T) {
	content := `transaction date,description,amount
01/05/2024,Coffee Shop,-4.50
`
	txs, rowErrs, err := Parse(strings.NewReader(content), formats.Chase())
	require.NoError(t, err)
	assert.Empty(t, rowErrs)
	require.Len(t, txs, 1)
}

func TestValidateFormat(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "valid.csv")
	require.NoError(t, os.WriteFile(valid, []byte(chaseCSV), 0644))
	ok, err := ValidateFormat(valid, formats.Chase())
	require.NoError(t, err)
	assert.True(t, ok)

	invalid := filepath.Join(dir, "invalid.csv")
	require.NoError(t, os.WriteFile(invalid, []byte("Foo,Bar\n1,2\n"), 0644))
	ok, err = ValidateFormat(invalid, formats.Chase())
	require.NoError(t, err)
	assert.False(t, ok)

	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, []byte(""), 0644))
	ok, err = ValidateFormat(empty, formats.Chase())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParseFileMissing(t *testing.T) {
	_, _, err := ParseFile(filepath.Join(t.TempDir(), "missing.csv"), formats.Chase())
	assert.Error(t, err)
}
