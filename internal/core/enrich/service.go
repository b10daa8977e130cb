package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"lplens/internal/core/extract"
	"lplens/internal/logger"
	"lplens/internal/platform/eino"
	"lplens/prompts"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

// Service is the boundary to the LLM. Analyze is a pure call: record in,
// enriched record plus debug info out, nothing retained between calls.
type Service struct {
	log      *logger.Logger
	llm      *eino.Service
	template prompt.ChatTemplate
}

func NewService(llm *eino.Service) *Service {
	return &Service{
		log:      logger.New("EnrichService"),
		llm:      llm,
		template: prompts.MarketAnalysisTemplate(),
	}
}

// Analyze asks the model for a market segmentation of the record.
// DebugInfo is returned even when parsing the reply fails, so callers
// can see what prompt produced the broken output.
func (s *Service) Analyze(ctx context.Context, rec *extract.Result, pageMarkdown string) (*Record, *DebugInfo, error) {
	recordJSON, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("marshal record: %w", err)
	}

	const maxMarkdown = 12000
	if len(pageMarkdown) > maxMarkdown {
		pageMarkdown = pageMarkdown[:maxMarkdown] + "\n...[truncated]"
	}

	messages, err := s.template.Format(ctx, map[string]any{
		"record_json":   string(recordJSON),
		"page_markdown": pageMarkdown,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("format template: %w", err)
	}

	debug := &DebugInfo{
		Prompt: joinMessages(messages),
		Model:  s.llm.Model(),
	}

	start := time.Now()
	response, usage, err := s.llm.GenerateWithTokenUsage(ctx, messages)
	debug.DurationMS = time.Since(start).Milliseconds()
	if usage != nil {
		debug.TokenUsage = *usage
	}
	if err != nil {
		return nil, debug, fmt.Errorf("llm generation: %w", err)
	}
	debug.RawReply = response.Content

	record, err := parseRecord(response.Content)
	if err != nil {
		s.log.LogWarnf("enrichment reply unparseable for %s: %v", rec.URL, err)
		return nil, debug, err
	}

	s.log.LogSuccessf("enrichment ok url=%s tokens=%d in %dms", rec.URL, debug.TokenUsage.TotalTokens, debug.DurationMS)
	return record, debug, nil
}

// parseRecord strips markdown fences the model sometimes adds despite
// instructions, then decodes the JSON body.
func parseRecord(content string) (*Record, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var record Record
	if err := json.Unmarshal([]byte(content), &record); err != nil {
		return nil, fmt.Errorf("invalid JSON reply: %w", err)
	}
	return &record, nil
}

func joinMessages(messages []*schema.Message) string {
	var b strings.Builder
	for i, m := range messages {
		if i > 0 {
			b.WriteString("\n---\n")
		}
		b.WriteString(m.Content)
	}
	return b.String()
}
