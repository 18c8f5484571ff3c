package llm

// OpenAI gpt-4o pricing (per million tokens)
const (
	openaiInputPricePerMillion  = 2.50
	openaiOutputPricePerMillion = 10.00
)

// Gemini 2.5 Flash pricing (per million tokens)
const (
	geminiInputPricePerMillion  = 0.30 // $0.30 per 1M input tokens (text/image/video)
	geminiOutputPricePerMillion = 2.50 // $2.50 per 1M output tokens (including thinking)
)

func calculateCost(inputTokens, outputTokens int64, inputPrice, outputPrice float64) float64 {
	inputCost := float64(inputTokens) / 1_000_000 * inputPrice
	outputCost := float64(outputTokens) / 1_000_000 * outputPrice
	return inputCost + outputCost
}
