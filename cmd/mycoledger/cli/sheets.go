package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mycoledger/mycoledger/internal/integration/sheets"
)

// SheetsImporter runs one import of the legacy spreadsheet.
type SheetsImporter interface {
	Run(ctx context.Context) (sheets.Result, error)
}

// ImportOptions defines available flags for the import-sheets command.
type ImportOptions struct {
	JSONOutput bool
	// Strict fails the command when any row was skipped.
	Strict bool
	Stdout io.Writer
	Stderr io.Writer
}

// ImportCommand runs the importer and prints the outcome. It returns the
// process exit code.
func ImportCommand(ctx context.Context, importer SheetsImporter, opts ImportOptions) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if importer == nil {
		_, _ = fmt.Fprintln(opts.Stderr, "import-sheets: importer not configured")
		return 1
	}
	res, err := importer.Run(ctx)
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "import-sheets: %v\n", err)
		return 1
	}
	if opts.JSONOutput {
		if err := json.NewEncoder(opts.Stdout).Encode(res); err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "import-sheets: encode json: %v\n", err)
			return 1
		}
	} else {
		_, _ = fmt.Fprintf(opts.Stdout, "imported %d sales and %d cost records (%d rows skipped)\n", res.Sales, res.Costs, res.Skipped)
	}
	if opts.Strict && res.Skipped > 0 {
		return 10
	}
	return 0
}
