package engine

import (
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/quackverse/tokenscope/tokenizer"
	"github.com/quackverse/tokenscope/types"
)

// Calculator computes per-adapter and pairwise metrics from raw
// tokenization results.
type Calculator struct {
	logger *zap.Logger
}

// NewCalculator creates a metrics calculator.
func NewCalculator(logger *zap.Logger) *Calculator {
	return &Calculator{logger: logger}
}

// Compute derives per-adapter metrics for every successful result and
// pairwise comparisons for each unordered pair of adapters that both
// produced a result. Errored adapters are excluded from both. The
// caller-supplied order determines pair enumeration, keeping the
// output deterministic.
func (c *Calculator) Compute(input string, order []string, adapters map[string]tokenizer.Adapter, results map[string]*types.TokenizationResult) (map[string]types.AdapterMetrics, []types.PairwiseComparison) {
	perAdapter := make(map[string]types.AdapterMetrics)
	boundaries := make(map[string]map[int]struct{})

	for _, name := range order {
		res, ok := results[name]
		if !ok || !res.OK() {
			continue
		}
		perAdapter[name] = c.adapterMetrics(input, adapters[name], res)
		boundaries[name] = boundarySet(res)
	}

	var pairwise []types.PairwiseComparison
	for i := 0; i < len(order); i++ {
		for j := i + 1; j < len(order); j++ {
			a, b := order[i], order[j]
			ma, okA := perAdapter[a]
			mb, okB := perAdapter[b]
			if !okA || !okB {
				continue
			}
			pairwise = append(pairwise, pairComparison(a, b, ma, mb, boundaries[a], boundaries[b]))
		}
	}
	return perAdapter, pairwise
}

// adapterMetrics computes the per-adapter scores, including the
// reconstruction distance when the backend supports detokenize.
func (c *Calculator) adapterMetrics(input string, a tokenizer.Adapter, res *types.TokenizationResult) types.AdapterMetrics {
	m := types.AdapterMetrics{TokenCount: res.TokenCount}

	if res.TokenCount > 0 {
		distinct := make(map[string]struct{}, res.TokenCount)
		totalRunes := 0
		for _, tok := range res.Tokens {
			distinct[tok.Text] = struct{}{}
			totalRunes += utf8.RuneCountInString(tok.Text)
		}
		m.AvgTokenLength = float64(totalRunes) / float64(res.TokenCount)
		m.DistinctTokenRatio = float64(len(distinct)) / float64(res.TokenCount)
	}

	if a == nil {
		return m
	}
	reconstructed, err := a.Detokenize(res.Tokens)
	if err != nil {
		if types.GetErrorCode(err) != types.ErrUnsupportedOperation {
			c.logger.Warn("detokenize failed",
				zap.String("adapter", res.AdapterName),
				zap.Error(err),
			)
		}
		return m
	}
	dist := levenshteinRatio(input, reconstructed)
	m.ReconstructionDistance = &dist
	m.ReconstructionOK = true
	return m
}

// pairComparison scores one unordered adapter pair.
func pairComparison(a, b string, ma, mb types.AdapterMetrics, boundA, boundB map[int]struct{}) types.PairwiseComparison {
	p := types.PairwiseComparison{
		AdapterA:               a,
		AdapterB:               b,
		BoundaryAlignmentScore: jaccard(boundA, boundB),
		TokenCountDelta:        absInt(ma.TokenCount - mb.TokenCount),
	}
	if ma.ReconstructionDistance != nil && mb.ReconstructionDistance != nil {
		// Worst infidelity in the pair; 0 when both reconstruct
		// exactly.
		worst := *ma.ReconstructionDistance
		if *mb.ReconstructionDistance > worst {
			worst = *mb.ReconstructionDistance
		}
		p.ReconstructionEditDistance = &worst
	} else {
		p.ReconstructionUnavailable = true
	}
	return p
}

// boundarySet collects the byte offsets at which tokens begin. Spans
// are used when the backend supplied them; otherwise offsets are
// accumulated from the token texts, which keeps both conventions in
// byte space.
func boundarySet(res *types.TokenizationResult) map[int]struct{} {
	set := make(map[int]struct{}, res.TokenCount)
	spanned := res.TokenCount > 0
	for _, tok := range res.Tokens {
		if tok.ByteSpan == nil {
			spanned = false
			break
		}
	}
	if spanned {
		for _, tok := range res.Tokens {
			set[tok.ByteSpan.Start] = struct{}{}
		}
		return set
	}
	off := 0
	for _, tok := range res.Tokens {
		set[off] = struct{}{}
		off += len(tok.Text)
	}
	return set
}

// jaccard computes |intersection| / |union| of two offset sets. An
// empty union scores 1.0 by definition, so two empty tokenizations
// align perfectly and no division by zero occurs.
func jaccard(a, b map[int]struct{}) float64 {
	union := len(a)
	inter := 0
	for off := range b {
		if _, ok := a[off]; ok {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		return 1.0
	}
	return float64(inter) / float64(union)
}

// levenshteinRatio is the normalized Levenshtein distance between two
// strings, scaled by the longer rune length: 0 = identical,
// 1 = maximally different. Two empty strings are identical.
func levenshteinRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 0
	}
	dist := levenshtein(ra, rb)
	longer := len(ra)
	if len(rb) > longer {
		longer = len(rb)
	}
	return float64(dist) / float64(longer)
}

// levenshtein computes edit distance with the two-row DP formulation.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = minInt(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func minInt(vals ...int) int {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
