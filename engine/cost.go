package engine

import (
	"sort"

	"github.com/quackverse/tokenscope/types"
)

// ModelPricing holds a model's published USD rates per 1K tokens.
type ModelPricing struct {
	InputPer1K  float64
	OutputPer1K float64
}

// modelPricing is a static table of commonly compared models. Rates
// drift; they are indicative, not billing-grade.
var modelPricing = map[string]ModelPricing{
	"gpt-4o":                   {InputPer1K: 0.0025, OutputPer1K: 0.01},
	"gpt-4o-mini":              {InputPer1K: 0.00015, OutputPer1K: 0.0006},
	"gpt-4-turbo":              {InputPer1K: 0.01, OutputPer1K: 0.03},
	"gpt-3.5-turbo":            {InputPer1K: 0.0005, OutputPer1K: 0.0015},
	"claude-3-5-sonnet-latest": {InputPer1K: 0.003, OutputPer1K: 0.015},
	"claude-3-5-haiku-latest":  {InputPer1K: 0.0008, OutputPer1K: 0.004},
}

// PricedModels lists the models with pricing data, lexically sorted.
func PricedModels() []string {
	names := make([]string, 0, len(modelPricing))
	for name := range modelPricing {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EstimateCosts prices each successful adapter's token count against
// the named model. Unknown models yield no estimates.
func EstimateCosts(order []string, results map[string]*types.TokenizationResult, model string, outputTokens int) []types.CostEstimate {
	pricing, ok := modelPricing[model]
	if !ok {
		return nil
	}
	if outputTokens < 0 {
		outputTokens = 0
	}

	estimates := make([]types.CostEstimate, 0, len(order))
	for _, name := range order {
		res, ok := results[name]
		if !ok || !res.OK() {
			continue
		}
		estimates = append(estimates, estimate(name, model, pricing, res.TokenCount, outputTokens))
	}
	return estimates
}

// CompareModelCosts prices one token count across every priced model,
// for the "which model is this document cheapest on" view.
func CompareModelCosts(adapterName string, inputTokens, outputTokens int) []types.CostEstimate {
	if outputTokens < 0 {
		outputTokens = 0
	}
	estimates := make([]types.CostEstimate, 0, len(modelPricing))
	for _, model := range PricedModels() {
		estimates = append(estimates, estimate(adapterName, model, modelPricing[model], inputTokens, outputTokens))
	}
	return estimates
}

func estimate(adapter, model string, pricing ModelPricing, inputTokens, outputTokens int) types.CostEstimate {
	inCost := float64(inputTokens) / 1000.0 * pricing.InputPer1K
	outCost := float64(outputTokens) / 1000.0 * pricing.OutputPer1K
	return types.CostEstimate{
		AdapterName:  adapter,
		Model:        model,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		InputCost:    inCost,
		OutputCost:   outCost,
		TotalCost:    inCost + outCost,
	}
}
