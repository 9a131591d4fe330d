package export

import (
	"encoding/json"
	"os"

	"github.com/quackverse/tokenscope/types"
)

// JSONExporter writes the full report as indented JSON.
type JSONExporter struct{}

func (e *JSONExporter) Format() string { return "json" }

func (e *JSONExporter) Write(report *types.ComparisonReport, dest string) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", exportError(e.Format(), err)
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", exportError(e.Format(), err)
	}
	return dest, nil
}
