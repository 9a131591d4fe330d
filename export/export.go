// Package export writes a finished comparison report to a
// destination. Export failures never invalidate the report itself.
package export

import (
	"fmt"

	"github.com/quackverse/tokenscope/types"
)

// Exporter writes one report to a destination path and returns the
// path actually written.
type Exporter interface {
	// Write persists the report. Failures are EXPORT_ERROR.
	Write(report *types.ComparisonReport, dest string) (string, error)

	// Format returns the exporter's format name.
	Format() string
}

// ForFormat returns the exporter for the configured output format.
func ForFormat(format string) (Exporter, error) {
	switch format {
	case "json":
		return &JSONExporter{}, nil
	case "csv":
		return &CSVExporter{}, nil
	case "xlsx":
		return &XLSXExporter{}, nil
	default:
		return nil, types.NewError(types.ErrInvalidConfig,
			fmt.Sprintf("unknown output format %q", format))
	}
}

func exportError(format string, cause error) *types.Error {
	return types.NewError(types.ErrExport,
		fmt.Sprintf("%s export failed", format)).WithCause(cause)
}
