package observability

import (
	"strconv"
	"strings"

	"github.com/Conceptual-Machines/storybook-api/internal/llm"
)

// Pricing constants
const (
	tokensPerMillion    = 1_000_000.0
	costFormatPrecision = 6

	geminiFlashInputPrice  = 0.30
	geminiFlashOutputPrice = 2.50

	geminiFlashLiteInputPrice  = 0.10
	geminiFlashLiteOutputPrice = 0.40

	geminiProInputPrice  = 1.25
	geminiProOutputPrice = 10.00

	gpt4oMiniInputPrice  = 0.15
	gpt4oMiniOutputPrice = 0.60
)

// ModelPricing contains pricing information per 1M tokens
type ModelPricing struct {
	InputPricePer1M  float64
	OutputPricePer1M float64
}

// PricingTable is keyed by model name prefix; the longest matching prefix wins
var PricingTable = map[string]ModelPricing{
	"gemini-2.5-flash":      {InputPricePer1M: geminiFlashInputPrice, OutputPricePer1M: geminiFlashOutputPrice},
	"gemini-2.5-flash-lite": {InputPricePer1M: geminiFlashLiteInputPrice, OutputPricePer1M: geminiFlashLiteOutputPrice},
	"gemini-2.5-pro":        {InputPricePer1M: geminiProInputPrice, OutputPricePer1M: geminiProOutputPrice},
	"gpt-4o-mini":           {InputPricePer1M: gpt4oMiniInputPrice, OutputPricePer1M: gpt4oMiniOutputPrice},
}

// CalculateCost calculates the cost in USD of one model call.
// Unknown models fall back to gemini-2.5-flash pricing.
func CalculateCost(modelName string, usage llm.Usage) float64 {
	pricing := lookupPricing(modelName)
	inputCost := float64(usage.InputTokens) / tokensPerMillion * pricing.InputPricePer1M
	outputCost := float64(usage.OutputTokens) / tokensPerMillion * pricing.OutputPricePer1M
	return inputCost + outputCost
}

func lookupPricing(modelName string) ModelPricing {
	best := ""
	for prefix := range PricingTable {
		if strings.HasPrefix(modelName, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		return PricingTable["gemini-2.5-flash"]
	}
	return PricingTable[best]
}

// FormatCost formats a cost value as a USD string
func FormatCost(cost float64) string {
	return "$" + strconv.FormatFloat(cost, 'f', costFormatPrecision, 64)
}
