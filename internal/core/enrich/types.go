package enrich

import "lplens/internal/platform/eino"

// Record is the market segmentation produced by the LLM for one
// extracted landing page.
type Record struct {
	ProductInfo      ProductInfo      `json:"product_info"`
	Pricing          Pricing          `json:"pricing"`
	Demographics     Demographics     `json:"demographics"`
	ValueProposition ValueProposition `json:"value_proposition"`
	MarketAnalysis   MarketAnalysis   `json:"market_analysis"`
	Persona          Persona          `json:"persona"`
	Classification   Classification   `json:"classification"`
	Recommendations  Recommendations  `json:"recommendations"`
}

type ProductInfo struct {
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Features []string `json:"features"`
}

type Pricing struct {
	Regular      string `json:"regular"`
	Campaign     string `json:"campaign"`
	DiscountRate int    `json:"discount_rate"`
	Strategy     string `json:"strategy"`
}

type Demographics struct {
	Gender      string `json:"gender"`
	AgeRange    string `json:"age_range"`
	IncomeLevel string `json:"income_level"`
}

type ValueProposition struct {
	Primary   string   `json:"primary"`
	Secondary []string `json:"secondary"`
}

type MarketAnalysis struct {
	MarketType       string   `json:"market_type"`
	CompetitionLevel string   `json:"competition_level"`
	Differentiators  []string `json:"differentiators"`
}

type Persona struct {
	Description string   `json:"description"`
	PainPoints  []string `json:"pain_points"`
	Motivations []string `json:"motivations"`
}

type Classification struct {
	MarketType   string `json:"market_type"`
	ActionReason string `json:"action_reason"`
}

type Recommendations struct {
	AdMedia             []string `json:"ad_media"`
	CreativeSuggestions []string `json:"creative_suggestions"`
}

// DebugInfo carries everything about how the enrichment call was made.
// It comes back alongside the record so callers can log or surface it;
// the service itself keeps no per-call state.
type DebugInfo struct {
	Prompt     string          `json:"prompt"`
	Model      string          `json:"model"`
	TokenUsage eino.TokenUsage `json:"token_usage"`
	DurationMS int64           `json:"duration_ms"`
	RawReply   string          `json:"raw_reply,omitempty"`
}
