package engine

import (
	"sort"

	"github.com/quackverse/tokenscope/types"
)

// TopTokenFrequencies builds the adapter's token frequency table: the
// n most frequent token texts by occurrence count, ties broken
// lexically, ranked from 1.
func TopTokenFrequencies(res *types.TokenizationResult, n int) []types.TokenFrequency {
	if res == nil || res.TokenCount == 0 || n <= 0 {
		return nil
	}

	counts := make(map[string]int, res.TokenCount)
	for _, tok := range res.Tokens {
		counts[tok.Text]++
	}

	rows := make([]types.TokenFrequency, 0, len(counts))
	for text, count := range counts {
		rows = append(rows, types.TokenFrequency{Text: text, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Text < rows[j].Text
	})

	if len(rows) > n {
		rows = rows[:n]
	}
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}
