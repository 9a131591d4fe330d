package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/quackverse/tokenscope/types"
)

// XLSXExporter writes a multi-sheet workbook: Summary, Tokens
// (display-capped preview), Pairwise, and, when present, Frequency
// and Costs.
type XLSXExporter struct{}

func (e *XLSXExporter) Format() string { return "xlsx" }

func (e *XLSXExporter) Write(report *types.ComparisonReport, dest string) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := e.writeSummary(f, report); err != nil {
		return "", exportError(e.Format(), err)
	}
	if err := e.writeTokens(f, report); err != nil {
		return "", exportError(e.Format(), err)
	}
	if err := e.writePairwise(f, report); err != nil {
		return "", exportError(e.Format(), err)
	}
	if len(report.Frequencies) > 0 {
		if err := e.writeFrequencies(f, report); err != nil {
			return "", exportError(e.Format(), err)
		}
	}
	if len(report.Costs) > 0 {
		if err := e.writeCosts(f, report); err != nil {
			return "", exportError(e.Format(), err)
		}
	}

	if err := f.SaveAs(dest); err != nil {
		return "", exportError(e.Format(), err)
	}
	return dest, nil
}

func (e *XLSXExporter) writeSummary(f *excelize.File, report *types.ComparisonReport) error {
	const sheet = "Summary"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"run_id", report.RunID},
		{"input_digest", report.InputDigest},
		{"commentary_unavailable", report.CommentaryUnavailable},
	}
	if report.Commentary != "" {
		rows = append(rows, []interface{}{"commentary", report.Commentary})
	}
	if report.CommentaryFailureCause != "" {
		rows = append(rows, []interface{}{"commentary_failure_cause", report.CommentaryFailureCause})
	}
	rows = append(rows, []interface{}{})
	rows = append(rows, []interface{}{"adapter", "status", "token_count", "avg_token_length",
		"distinct_token_ratio", "reconstruction_distance", "elapsed_ms", "message"})

	for _, name := range report.Order {
		res := report.Results[name]
		row := []interface{}{name, res.Status(), res.TokenCount, nil, nil, nil, res.ElapsedMS, res.StatusMessage()}
		if m, ok := report.Metrics[name]; ok {
			row[3] = m.AvgTokenLength
			row[4] = m.DistinctTokenRatio
			if m.ReconstructionDistance != nil {
				row[5] = *m.ReconstructionDistance
			}
		}
		rows = append(rows, row)
	}

	rows = append(rows, []interface{}{})
	rows = append(rows, []interface{}{"ranking (most compact first)"})
	for i, name := range report.Ranking {
		rows = append(rows, []interface{}{i + 1, name})
	}

	return writeRows(f, sheet, rows)
}

func (e *XLSXExporter) writeTokens(f *excelize.File, report *types.ComparisonReport) error {
	const sheet = "Tokens"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	rows := [][]interface{}{{"adapter", "index", "id", "text", "span_start", "span_end"}}
	for _, name := range report.Order {
		for _, tok := range report.DisplayTokens(name) {
			row := []interface{}{name, tok.Index, tok.ID, tok.Text, nil, nil}
			if tok.ByteSpan != nil {
				row[4] = tok.ByteSpan.Start
				row[5] = tok.ByteSpan.End
			}
			rows = append(rows, row)
		}
	}
	return writeRows(f, sheet, rows)
}

func (e *XLSXExporter) writePairwise(f *excelize.File, report *types.ComparisonReport) error {
	const sheet = "Pairwise"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	rows := [][]interface{}{{"adapter_a", "adapter_b", "boundary_alignment_score",
		"token_count_delta", "reconstruction_edit_distance"}}
	for _, p := range report.Pairwise {
		recon := interface{}("unavailable")
		if p.ReconstructionEditDistance != nil {
			recon = *p.ReconstructionEditDistance
		}
		rows = append(rows, []interface{}{p.AdapterA, p.AdapterB,
			p.BoundaryAlignmentScore, p.TokenCountDelta, recon})
	}
	return writeRows(f, sheet, rows)
}

func (e *XLSXExporter) writeFrequencies(f *excelize.File, report *types.ComparisonReport) error {
	const sheet = "Frequency"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	rows := [][]interface{}{{"adapter", "rank", "token", "count"}}
	for _, name := range report.Order {
		for _, freq := range report.Frequencies[name] {
			rows = append(rows, []interface{}{name, freq.Rank, freq.Text, freq.Count})
		}
	}
	return writeRows(f, sheet, rows)
}

func (e *XLSXExporter) writeCosts(f *excelize.File, report *types.ComparisonReport) error {
	const sheet = "Costs"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	rows := [][]interface{}{{"adapter", "model", "input_tokens", "output_tokens",
		"input_cost_usd", "output_cost_usd", "total_cost_usd"}}
	for _, c := range report.Costs {
		rows = append(rows, []interface{}{c.AdapterName, c.Model, c.InputTokens,
			c.OutputTokens, c.InputCost, c.OutputCost, c.TotalCost})
	}
	return writeRows(f, sheet, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	return nil
}
