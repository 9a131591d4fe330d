package export

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/quackverse/tokenscope/types"
)

// CSVExporter writes the per-adapter summary and pairwise scores as a
// flat CSV file. Token-level detail is left to the JSON and XLSX
// writers.
type CSVExporter struct{}

func (e *CSVExporter) Format() string { return "csv" }

func (e *CSVExporter) Write(report *types.ComparisonReport, dest string) (string, error) {
	f, err := os.Create(dest)
	if err != nil {
		return "", exportError(e.Format(), err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	rows := [][]string{
		{"section", "adapter_a", "adapter_b", "status", "token_count", "avg_token_length",
			"distinct_token_ratio", "boundary_alignment_score", "token_count_delta",
			"reconstruction_edit_distance", "elapsed_ms", "message"},
	}

	for _, name := range report.Order {
		res := report.Results[name]
		row := []string{"result", name, "", res.Status(),
			fmt.Sprintf("%d", res.TokenCount), "", "", "", "", "",
			fmt.Sprintf("%.3f", res.ElapsedMS), res.StatusMessage()}
		if m, ok := report.Metrics[name]; ok {
			row[5] = fmt.Sprintf("%.4f", m.AvgTokenLength)
			row[6] = fmt.Sprintf("%.4f", m.DistinctTokenRatio)
			if m.ReconstructionDistance != nil {
				row[9] = fmt.Sprintf("%.4f", *m.ReconstructionDistance)
			}
		}
		rows = append(rows, row)
	}

	for _, p := range report.Pairwise {
		recon := "unavailable"
		if p.ReconstructionEditDistance != nil {
			recon = fmt.Sprintf("%.4f", *p.ReconstructionEditDistance)
		}
		rows = append(rows, []string{"pairwise", p.AdapterA, p.AdapterB, "",
			"", "", "", fmt.Sprintf("%.4f", p.BoundaryAlignmentScore),
			fmt.Sprintf("%d", p.TokenCountDelta), recon, "", ""})
	}

	if err := w.WriteAll(rows); err != nil {
		return "", exportError(e.Format(), err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", exportError(e.Format(), err)
	}
	return dest, nil
}
