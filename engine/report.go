package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quackverse/tokenscope/types"
)

// CommentaryOutcome carries the optional LLM review result into
// assembly. The zero value means commentary was not requested.
type CommentaryOutcome struct {
	Requested bool
	Text      string
	Cause     string
}

// AssembleOptions tunes report assembly.
type AssembleOptions struct {
	// MaxTokensToDisplay caps human-readable previews; the full token
	// sequences remain in the results regardless.
	MaxTokensToDisplay int

	// TopFrequencies is the number of frequency rows kept per adapter;
	// 0 disables frequency tables.
	TopFrequencies int

	// CostModel prices token counts against a model's rates; empty
	// disables cost estimates.
	CostModel string

	// AssumedOutputTokens is added to cost estimates as completion
	// tokens.
	AssumedOutputTokens int
}

// Assembler orders, truncates, and ranks results into an immutable
// report.
type Assembler struct {
	logger *zap.Logger
}

// NewAssembler creates a report assembler.
func NewAssembler(logger *zap.Logger) *Assembler {
	return &Assembler{logger: logger}
}

// InputDigest is the hex SHA-256 of the input document, identifying
// the input without retaining it.
func InputDigest(input string) string {
	digest := sha256.Sum256([]byte(input))
	return hex.EncodeToString(digest[:])
}

// Assemble builds the final report. Results follow the caller-supplied
// tokenizer order regardless of completion order; the ranking sorts
// successful adapters by ascending token count with lexical
// tie-breaking. Nothing mutates the report after Assemble returns.
func (a *Assembler) Assemble(
	input string,
	order []string,
	results map[string]*types.TokenizationResult,
	adapterMetrics map[string]types.AdapterMetrics,
	pairwise []types.PairwiseComparison,
	commentary CommentaryOutcome,
	opts AssembleOptions,
) *types.ComparisonReport {
	report := &types.ComparisonReport{
		RunID:              uuid.NewString(),
		InputDigest:        InputDigest(input),
		Results:            results,
		Order:              append([]string(nil), order...),
		Metrics:            adapterMetrics,
		Pairwise:           pairwise,
		Ranking:            ranking(order, results),
		MaxTokensToDisplay: opts.MaxTokensToDisplay,
	}

	if opts.TopFrequencies > 0 {
		report.Frequencies = make(map[string][]types.TokenFrequency)
		for _, name := range order {
			if res, ok := results[name]; ok && res.OK() {
				report.Frequencies[name] = TopTokenFrequencies(res, opts.TopFrequencies)
			}
		}
	}

	if opts.CostModel != "" {
		report.Costs = EstimateCosts(order, results, opts.CostModel, opts.AssumedOutputTokens)
	}

	if commentary.Requested {
		if commentary.Cause == "" {
			report.Commentary = commentary.Text
		} else {
			report.CommentaryUnavailable = true
			report.CommentaryFailureCause = commentary.Cause
		}
	}

	a.logger.Debug("report assembled",
		zap.String("run_id", report.RunID),
		zap.Int("results", len(report.Results)),
		zap.Int("pairwise", len(report.Pairwise)),
		zap.Strings("ranking", report.Ranking),
	)
	return report
}

// ranking sorts successful adapters by ascending token count (more
// compact tokenizer first), ties broken by adapter name in lexical
// order. Advisory only.
func ranking(order []string, results map[string]*types.TokenizationResult) []string {
	ranked := make([]string, 0, len(order))
	for _, name := range order {
		if res, ok := results[name]; ok && res.OK() {
			ranked = append(ranked, name)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		ci := results[ranked[i]].TokenCount
		cj := results[ranked[j]].TokenCount
		if ci != cj {
			return ci < cj
		}
		return ranked[i] < ranked[j]
	})
	return ranked
}
