package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/ledger-import/internal/formats"
	"fjacquet/ledger-import/internal/models"
	"fjacquet/ledger-import/internal/storage"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chaseCSV = `Transaction Date,Post Date,Description,Category,Type,Amount,Memo
01/05/2024,01/06/2024,Coffee Shop,Food & Drink,Sale,-4.50,
01/06/2024,01/07/2024,Payment Thank You,,Payment,250.00,
`

func newTestImporter(t *testing.T) (*Importer, *storage.Store) {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return New(store, formats.NewRegistry(), log), store
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestImportFile(t *testing.T) {
	im, store := newTestImporter(t)
	path := writeFile(t, t.TempDir(), "freedom_2024.csv", chaseCSV)

	result, err := im.ImportFile(context.Background(), path, "chase", "")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 0, result.Duplicates)
	assert.Equal(t, 0, result.Failed)

	txs, err := store.ListTransactions(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "Chase - freedom_2024", txs[0].AccountLabel)
	assert.Equal(t, "freedom_2024.csv", txs[0].SourceFile)
}

func TestImportFileTwiceIsIdempotent(t *testing.T) {
	im, store := newTestImporter(t)
	path := writeFile(t, t.TempDir(), "freedom_2024.csv", chaseCSV)
	ctx := context.Background()

	_, err := im.ImportFile(ctx, path, "chase", "")
	require.NoError(t, err)

	result, err := im.ImportFile(ctx, path, "chase", "")
	require.NoError(t, err)
	assert.Equal(t, 0, result.Imported)
	assert.Equal(t, 2, result.Duplicates)

	txs, err := store.ListTransactions(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, txs, 2)
}

func TestImportFileDuplicateRows(t *testing.T) {
	// The third row repeats the first and must be skipped as a duplicate.
	content := `Date,Description,Amount,Account
2024-01-05,Coffee Shop,-4.50,CC1
2024-01-06,Salary,2000.00,BANK1
2024-01-05,Coffee Shop,-4.50,CC1
`
	im, store := newTestImporter(t)
	require.NoError(t, im.registry.Register(formats.Spec{
		Name:        "generic",
		DateLayouts: []string{"2006-01-02"},
		Columns: formats.Columns{
			Date:        "Date",
			Description: "Description",
			Amount:      "Amount",
			Account:     "Account",
		},
		AccountType: models.AccountTypeBank,
	}))
	path := writeFile(t, t.TempDir(), "mixed.csv", content)

	result, err := im.ImportFile(context.Background(), path, "generic", "")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, result.Duplicates)
	assert.Equal(t, 0, result.Failed)

	txs, err := store.ListTransactions(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "BANK1", txs[0].AccountLabel)
	assert.Equal(t, "CC1", txs[1].AccountLabel)
}

func TestImportFileCountsParseFailures(t *testing.T) {
	content := `Transaction Date,Post Date,Description,Category,Type,Amount,Memo
01/05/2024,01/06/2024,Coffee Shop,Food & Drink,Sale,-4.50,
01/06/2024,01/07/2024,Broken,,Sale,abc,
`
	im, store := newTestImporter(t)
	path := writeFile(t, t.TempDir(), "partial.csv", content)

	result, err := im.ImportFile(context.Background(), path, "chase", "")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 0, result.Duplicates)

	txs, err := store.ListTransactions(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}

func TestImportFileExplicitAccountLabel(t *testing.T) {
	im, store := newTestImporter(t)
	path := writeFile(t, t.TempDir(), "export.csv", chaseCSV)

	_, err := im.ImportFile(context.Background(), path, "chase", "Chase Freedom")
	require.NoError(t, err)

	summaries, err := store.Summaries(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "Chase Freedom", summaries[0].Label)
	assert.Equal(t, models.AccountTypeCreditCard, summaries[0].Type)
}

func TestImportFileUnknownFormat(t *testing.T) {
	im, _ := newTestImporter(t)
	path := writeFile(t, t.TempDir(), "export.csv", chaseCSV)

	_, err := im.ImportFile(context.Background(), path, "nosuchbank", "")
	assert.Error(t, err)
}

func TestImportFileMissing(t *testing.T) {
	im, _ := newTestImporter(t)

	_, err := im.ImportFile(context.Background(), filepath.Join(t.TempDir(), "missing.csv"), "chase", "")
	assert.Error(t, err)
}

func TestImportFileWrongLayout(t *testing.T) {
	im, _ := newTestImporter(t)
	path := writeFile(t, t.TempDir(), "wrong.csv", "Foo,Bar\n1,2\n")

	_, err := im.ImportFile(context.Background(), path, "chase", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "column layout")
}

func TestImportDir(t *testing.T) {
	im, store := newTestImporter(t)
	dir := t.TempDir()
	writeFile(t, dir, "a.csv", chaseCSV)
	writeFile(t, dir, "b.csv", `Transaction Date,Post Date,Description,Category,Type,Amount,Memo
02/01/2024,02/02/2024,Book Store,Shopping,Sale,-19.99,
`)
	writeFile(t, dir, "notes.txt", "not a csv")

	results, err := im.ImportDir(context.Background(), dir, "chase")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 2, results[0].Imported)
	assert.Equal(t, 1, results[1].Imported)

	// One account per file, derived from the file stem.
	summaries, err := store.Summaries(context.Background())
	require.NoError(t, err)
	assert.Len(t, summaries, 2)
}

func TestImportDirEmpty(t *testing.T) {
	im, _ := newTestImporter(t)

	results, err := im.ImportDir(context.Background(), t.TempDir(), "chase")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestImportDirMissing(t *testing.T) {
	im, _ := newTestImporter(t)

	_, err := im.ImportDir(context.Background(), filepath.Join(t.TempDir(), "nope"), "chase")
	assert.Error(t, err)
}

func TestImportDirMovesProcessedFiles(t *testing.T) {
	im, _ := newTestImporter(t)
	im.SetMoveProcessed(true)
	dir := t.TempDir()
	writeFile(t, dir, "a.csv", chaseCSV)

	_, err := im.ImportDir(context.Background(), dir, "chase")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "a.csv"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "processed", "a.csv"))
	assert.NoError(t, err)
}
