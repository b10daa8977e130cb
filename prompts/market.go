package prompts

import (
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

// Following prompt design principles:
// 1. Specify the model's thinking order
// 2. Use markdown for structure
// 3. Assign clear roles
// 4. Use "Important" and "ALWAYS" for critical instructions
// 5. Be explicit about expected outputs

// MarketAnalysisSchema is the JSON shape the enrichment call must return.
// It is embedded verbatim in the system message so the model cannot drift.
const MarketAnalysisSchema = `{
  "product_info": {"name": "string", "category": "string", "features": ["string"]},
  "pricing": {"regular": "string", "campaign": "string", "discount_rate": 0, "strategy": "string"},
  "demographics": {"gender": "string", "age_range": "string", "income_level": "string"},
  "value_proposition": {"primary": "string", "secondary": ["string"]},
  "market_analysis": {"market_type": "string", "competition_level": "string", "differentiators": ["string"]},
  "persona": {"description": "string", "pain_points": ["string"], "motivations": ["string"]},
  "classification": {"market_type": "existing_market|new_market|resegmented_market", "action_reason": "habit|search|impulse|relationship"},
  "recommendations": {"ad_media": ["string"], "creative_suggestions": ["string"]}
}`

// MarketAnalysisTemplate builds the chat template for landing-page
// market segmentation. Variables: {record_json}, {page_markdown}.
func MarketAnalysisTemplate() prompt.ChatTemplate {
	return prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(`# Your Role
You are a direct-response marketing analyst specializing in Japanese e-commerce landing pages.

# Your Task
Given the structured record extracted from a landing page plus its text, produce a market segmentation analysis.

# Critical Requirements
1. **Output Format**: Return ONLY a valid JSON object matching the schema below - no markdown fences, no commentary
2. **Schema Compliance**: Every key must be present; use null or empty arrays when the page gives no signal, NEVER guess specifics
3. **Language**: Free-text values in Japanese, enum values exactly as listed
4. **Grounding**: Base every judgement on the supplied record and page text only

# Output Schema
`+MarketAnalysisSchema+`

# Processing Instructions
1. **First**: Read the extracted record (product, prices, features, trust markers)
2. **Then**: Infer the target demographic, value proposition, and market position
3. **Finally**: Classify the market type and purchase-action reason, and recommend ad media

**ALWAYS**: Return ONLY the JSON object.`),

		schema.UserMessage(`**Extracted Record (JSON)**:
{record_json}

**Landing Page Text (Markdown)**:
{page_markdown}

Analyze this landing page and return the JSON object only.`),
	)
}
