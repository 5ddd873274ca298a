package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"dompet/internal/logger"
	"dompet/internal/services"
	"dompet/internal/uuid"
)

// fileResult is the outcome of importing one statement file.
type fileResult struct {
	Name   string
	Result services.ImportResult
	Err    error
}

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Import OFX/QFX statements into an account",
		Long: `Import bank or credit card statements exported as OFX or QFX. Lines
already imported into the account are skipped, so overlapping statements are safe.

Examples:
  # Import a single statement
  dompet import --user <id> --account <id> ~/Downloads/bca_march.ofx

  # Import every QFX file in a directory
  dompet import --user <id> --account <id> ~/Downloads/*.qfx`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImport,
	}

	cmd.Flags().String("account", "", "account ID to import into")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	userID, err := requireUser()
	if err != nil {
		return err
	}

	accountID, _ := cmd.Flags().GetString("account")
	if !uuid.IsValid(accountID) {
		return fmt.Errorf("invalid account ID %q", accountID)
	}

	files, err := expandFiles(args)
	if err != nil {
		return err
	}

	db, cfg, closeDB, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB()

	svc := services.NewImportService(db, cfg.CurrencyScale)
	results := importFiles(cmd.Context(), svc, userID, accountID, files, cmd.ErrOrStderr())
	renderImport(cmd.OutOrStdout(), results, newPrinter())

	for _, r := range results {
		if r.Err != nil {
			return errors.New("some statements could not be imported")
		}
	}
	return nil
}

// expandFiles resolves glob patterns. A pattern matching nothing is kept when
// it names an existing file.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err != nil {
				logger.Get().Warnw("no files found matching pattern", "pattern", pattern)
				continue
			}
			matches = []string{pattern}
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}

	if len(files) == 0 {
		return nil, errors.New("no files found to import")
	}
	return files, nil
}

// importFiles imports each file in order and keeps going past failures.
// Progress is drawn on progress.
func importFiles(ctx context.Context, svc services.ImportServicer, userID, accountID string, files []string, progress io.Writer) []fileResult {
	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(progress),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Importing statements"),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(progress)
		}),
	)

	results := make([]fileResult, 0, len(files))
	for _, path := range files {
		if ctx.Err() != nil {
			results = append(results, fileResult{Name: filepath.Base(path), Err: ctx.Err()})
			continue
		}

		r := fileResult{Name: filepath.Base(path)}
		res, err := importFile(ctx, svc, userID, accountID, path)
		if err != nil {
			logger.Get().Errorw("failed to import statement", "file", path, "error", err)
			r.Err = err
		} else {
			r.Result = *res
		}
		results = append(results, r)
		_ = bar.Add(1)
	}
	return results
}

func importFile(ctx context.Context, svc services.ImportServicer, userID, accountID, path string) (*services.ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return svc.ImportStatement(ctx, userID, accountID, f)
}
