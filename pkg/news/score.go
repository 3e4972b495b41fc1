package news

import "strings"

// Keyword tiers for relevance scoring. High-tier matches add 0.15 each,
// medium-tier 0.08, capped at 1.0.
var (
	highKeywords = []string{
		"openai", "anthropic", "google", "deepseek", "alibaba", "meta",
		"gpt", "gemini", "claude", "qwen", "llama",
		"benchmark", "gpqa", "mmlu", "swe-bench", "arc-agi",
	}

	mediumKeywords = []string{
		"artificial intelligence", "machine learning", "ai model",
		"released", "launched", "achieved", "breakthrough", "regulation",
		"chips", "semiconductor", "nvidia", "export controls",
	}

	usKeywords = []string{
		"united states", "american", "openai", "google", "anthropic",
		"meta", "microsoft", "u.s.", "usa",
	}

	cnKeywords = []string{
		"china", "chinese", "deepseek", "alibaba", "baidu",
		"tencent", "bytedance", "qwen", "huawei",
	}
)

// relevance scores text 0.0-1.0 by tiered keyword matching.
func relevance(text string) float64 {
	lower := strings.ToLower(text)

	score := 0.0
	for _, kw := range highKeywords {
		if strings.Contains(lower, kw) {
			score += 0.15
		}
	}
	for _, kw := range mediumKeywords {
		if strings.Contains(lower, kw) {
			score += 0.08
		}
	}
	if score > 1.0 {
		return 1.0
	}
	return score
}

// classifyCountry tags text as US, CN, or Both.
func classifyCountry(text string) string {
	lower := strings.ToLower(text)

	hasUS := containsAny(lower, usKeywords)
	hasCN := containsAny(lower, cnKeywords)

	switch {
	case hasUS && hasCN:
		return "Both"
	case hasCN:
		return "CN"
	default:
		return "US"
	}
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
