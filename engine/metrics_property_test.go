package engine

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/quackverse/tokenscope/config"
	"github.com/quackverse/tokenscope/tokenizer"
	"github.com/quackverse/tokenscope/types"
)

func TestProperty_LevenshteinRatioBounds(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		a := rapid.String().Draw(t, "a")
		b := rapid.String().Draw(t, "b")

		ratio := levenshteinRatio(a, b)
		if ratio < 0 || ratio > 1 {
			t.Fatalf("ratio %f out of [0, 1] for %q vs %q", ratio, a, b)
		}
		if sym := levenshteinRatio(b, a); sym != ratio {
			t.Fatalf("asymmetric: %f vs %f", ratio, sym)
		}
		if self := levenshteinRatio(a, a); self != 0 {
			t.Fatalf("self distance %f for %q", self, a)
		}
	})
}

func TestProperty_JaccardBounds(t *testing.T) {
	t.Parallel()

	gen := rapid.MapOf(rapid.IntRange(0, 64), rapid.Just(struct{}{}))
	rapid.Check(t, func(t *rapid.T) {
		a := gen.Draw(t, "a")
		b := gen.Draw(t, "b")

		score := jaccard(a, b)
		if score < 0 || score > 1 {
			t.Fatalf("score %f out of [0, 1]", score)
		}
		if sym := jaccard(b, a); sym != score {
			t.Fatalf("asymmetric: %f vs %f", score, sym)
		}
		if self := jaccard(a, a); self != 1 {
			t.Fatalf("self similarity %f", self)
		}
	})
}

// Any tokenization compared against itself aligns perfectly and has
// zero token count delta.
func TestProperty_SelfComparisonIsPerfect(t *testing.T) {
	t.Parallel()

	r := tokenizer.NewRegistry(config.DefaultConfig(), zap.NewNop())
	adapters, err := r.Resolve([]string{tokenizer.NameMockWhitespace}, false)
	if err != nil {
		t.Fatal(err)
	}
	a := adapters[0]

	rapid.Check(t, func(t *rapid.T) {
		input := rapid.String().Draw(t, "input")

		res, err := a.Tokenize(context.Background(), input)
		if err != nil {
			t.Fatalf("tokenize failed: %v", err)
		}

		bound := boundarySet(res)
		if score := jaccard(bound, bound); score != 1 {
			t.Fatalf("self alignment %f for %q", score, input)
		}
	})
}

// The ranking contains exactly the successful adapters, sorted by
// ascending token count with lexical tie-breaks.
func TestProperty_RankingPermutesSuccessfulAdapters(t *testing.T) {
	t.Parallel()

	asm := NewAssembler(zap.NewNop())

	nameGen := rapid.StringMatching(`[a-z]{1,8}`)
	rapid.Check(t, func(t *rapid.T) {
		names := rapid.SliceOfNDistinct(nameGen, 1, 6, rapid.ID[string]).Draw(t, "names")

		results := make(map[string]*types.TokenizationResult, len(names))
		succeeded := make(map[string]int, len(names))
		for _, name := range names {
			if rapid.Bool().Draw(t, "fail_"+name) {
				results[name] = failedResult(name)
				continue
			}
			count := rapid.IntRange(0, 10).Draw(t, "count_"+name)
			texts := make([]string, count)
			for i := range texts {
				texts[i] = "t"
			}
			results[name] = resultWithTexts(name, texts...)
			succeeded[name] = count
		}

		report := asm.Assemble("input", names, results, nil, nil, CommentaryOutcome{}, AssembleOptions{})
		if len(report.Ranking) != len(succeeded) {
			t.Fatalf("ranking has %d entries, want %d", len(report.Ranking), len(succeeded))
		}
		seen := make(map[string]bool, len(report.Ranking))
		for i, name := range report.Ranking {
			count, ok := succeeded[name]
			if !ok {
				t.Fatalf("ranking includes failed adapter %s", name)
			}
			if seen[name] {
				t.Fatalf("ranking repeats adapter %s", name)
			}
			seen[name] = true
			if i == 0 {
				continue
			}
			prev := succeeded[report.Ranking[i-1]]
			if prev > count || (prev == count && report.Ranking[i-1] > name) {
				t.Fatalf("ranking out of order at %d: %v", i, report.Ranking)
			}
		}
	})
}

// Token counts are non-negative and the pairwise delta equals the
// absolute count difference.
func TestProperty_PairwiseDeltaConsistent(t *testing.T) {
	t.Parallel()

	r := tokenizer.NewRegistry(config.DefaultConfig(), zap.NewNop())
	names := []string{tokenizer.NameMockWhitespace, tokenizer.NameMockChar}
	adapters, err := r.Resolve(names, false)
	if err != nil {
		t.Fatal(err)
	}
	calc := NewCalculator(zap.NewNop())

	rapid.Check(t, func(t *rapid.T) {
		input := rapid.String().Draw(t, "input")

		byName := make(map[string]tokenizer.Adapter, len(adapters))
		results := make(map[string]*types.TokenizationResult, len(adapters))
		for _, a := range adapters {
			res, err := a.Tokenize(context.Background(), input)
			if err != nil {
				t.Fatalf("tokenize failed: %v", err)
			}
			byName[a.Name()] = a
			results[a.Name()] = res
		}

		metrics, pairwise := calc.Compute(input, names, byName, results)
		for name, m := range metrics {
			if m.TokenCount < 0 {
				t.Fatalf("negative token count for %s", name)
			}
		}
		for _, p := range pairwise {
			want := absInt(metrics[p.AdapterA].TokenCount - metrics[p.AdapterB].TokenCount)
			if p.TokenCountDelta != want {
				t.Fatalf("delta %d, want %d", p.TokenCountDelta, want)
			}
			if p.BoundaryAlignmentScore < 0 || p.BoundaryAlignmentScore > 1 {
				t.Fatalf("alignment %f out of [0, 1]", p.BoundaryAlignmentScore)
			}
		}
	})
}
