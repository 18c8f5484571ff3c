package listing

// Draft is a generated listing. All fields are free text; Price is passed
// through exactly as the model returned it.
type Draft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       string `json:"price"`
}

// Usage contains token usage and cost information for one completion.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
	CostUSD      float64
}

// Completion is the complete reply of a completion provider.
type Completion struct {
	Text  string // Textual content of the reply, empty if the provider returned none
	Model string // Model that produced the reply
	Usage Usage
}
