// Package pipeline drives the import of bank CSV files into the store:
// parse, fingerprint, duplicate check, insert. One pass per file, no
// checkpointing.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"fjacquet/ledger-import/internal/csvparser"
	"fjacquet/ledger-import/internal/formats"
	"fjacquet/ledger-import/internal/importerror"
	"fjacquet/ledger-import/internal/storage"

	"github.com/sirupsen/logrus"
)

// processedDir is where imported files are moved when MoveProcessed is on.
const processedDir = "processed"

// Result reports the outcome of importing one file.
type Result struct {
	File       string
	Imported   int
	Duplicates int
	Failed     int
}

func (r Result) String() string {
	return fmt.Sprintf("%s: %d imported, %d duplicates skipped, %d rows failed",
		filepath.Base(r.File), r.Imported, r.Duplicates, r.Failed)
}

// Importer turns CSV files into stored transactions.
type Importer struct {
	store         *storage.Store
	registry      *formats.Registry
	log           *logrus.Logger
	moveProcessed bool
}

// New creates an Importer over the given store and format registry.
func New(store *storage.Store, registry *formats.Registry, log *logrus.Logger) *Importer {
	if log == nil {
		log = logrus.New()
	}
	return &Importer{store: store, registry: registry, log: log}
}

// SetMoveProcessed makes ImportDir move successfully imported files into
// a processed/ subdirectory.
func (im *Importer) SetMoveProcessed(move bool) {
	im.moveProcessed = move
}

// ImportFile imports one CSV file. Rows that fail to parse are counted
// and skipped; already stored rows are counted as duplicates. Storage
// failures other than the duplicate constraint abort the run.
func (im *Importer) ImportFile(ctx context.Context, path, formatName, accountLabel string) (Result, error) {
	result := Result{File: path}

	spec, err := im.registry.Get(formatName)
	if err != nil {
		return result, err
	}

	if _, err := os.Stat(path); err != nil {
		return result, fmt.Errorf("input file not readable: %w", err)
	}

	valid, err := csvparser.ValidateFormat(path, spec)
	if err != nil {
		return result, err
	}
	if !valid {
		return result, fmt.Errorf("%s does not match the %q column layout", path, spec.Name)
	}

	transactions, rowErrs, err := csvparser.ParseFile(path, spec)
	if err != nil {
		return result, err
	}
	result.Failed = len(rowErrs)

	if accountLabel == "" {
		accountLabel = deriveAccountLabel(path, spec)
	}

	// Specs with an account column can spread one file over several
	// accounts; everything else falls back to the per-file label.
	accountIDs := make(map[string]int64)
	importedAt := time.Now()
	for i := range transactions {
		tx := transactions[i]
		if tx.AccountLabel == "" {
			tx.AccountLabel = accountLabel
		}
		tx.SourceFile = filepath.Base(path)
		tx.ImportedAt = importedAt

		accountID, ok := accountIDs[tx.AccountLabel]
		if !ok {
			accountID, err = im.store.UpsertAccount(ctx, spec.Account(tx.AccountLabel))
			if err != nil {
				return result, err
			}
			accountIDs[tx.AccountLabel] = accountID
		}

		exists, err := im.store.Exists(ctx, tx.Fingerprint())
		if err != nil {
			return result, err
		}
		if exists {
			result.Duplicates++
			im.log.WithFields(logrus.Fields{
				"date":        tx.Date.Format("2006-01-02"),
				"description": tx.Description,
			}).Debug("Skipping duplicate transaction")
			continue
		}

		if err := im.store.InsertTransaction(ctx, accountID, tx); err != nil {
			// The store also enforces fingerprint uniqueness; treat a
			// constraint hit the same as the pre-check.
			if importerror.IsDuplicate(err) {
				result.Duplicates++
				continue
			}
			return result, err
		}
		result.Imported++
	}

	im.log.WithFields(logrus.Fields{
		"file":       filepath.Base(path),
		"account":    accountLabel,
		"imported":   result.Imported,
		"duplicates": result.Duplicates,
		"failed":     result.Failed,
	}).Info("Import complete")
	return result, nil
}

// ImportDir imports every *.csv file in dir. The account label for each
// file is derived from its name. A directory with no CSV files is not an
// error; a missing directory is.
func (im *Importer) ImportDir(ctx context.Context, dir, formatName string) ([]Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading input dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)

	if len(files) == 0 {
		im.log.WithField("dir", dir).Warn("No CSV files found in input directory")
		return nil, nil
	}

	var results []Result
	for _, file := range files {
		result, err := im.ImportFile(ctx, file, formatName, "")
		if err != nil {
			return results, fmt.Errorf("importing %s: %w", filepath.Base(file), err)
		}
		results = append(results, result)

		if im.moveProcessed {
			if err := markProcessed(dir, filepath.Base(file)); err != nil {
				return results, err
			}
		}
	}
	return results, nil
}

// deriveAccountLabel builds a label like "Chase - freedom_2024" from the
// institution and the file stem.
func deriveAccountLabel(path string, spec formats.Spec) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if spec.Institution == "" {
		return stem
	}
	return spec.Institution + " - " + stem
}

// markProcessed moves a file from dir into dir/processed/.
func markProcessed(dir, fileName string) error {
	dstDir := filepath.Join(dir, processedDir)
	if err := os.MkdirAll(dstDir, 0750); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}
	src := filepath.Join(dir, fileName)
	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
