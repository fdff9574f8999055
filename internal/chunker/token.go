package chunker

import "strings"

// EstimateTokens gives a rough token count from the word count. Exact
// tokenization is not required for chunking.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	tokens := tokensForWords(len(strings.Fields(text)))
	if tokens < 1 && len(text) > 0 {
		tokens = 1
	}
	return tokens
}

// tokensForWords applies the ~1.33 tokens-per-word heuristic for English text.
func tokensForWords(words int) int {
	return int(float64(words) * 1.33)
}
