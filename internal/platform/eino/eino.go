package eino

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	gemini "github.com/cloudwego/eino-ext/components/model/gemini"
	"google.golang.org/genai"
)

// Config selects the LLM provider and model.
type Config struct {
	Provider string `json:"provider"`
	APIKey   string `json:"api_key"`
	Model    string `json:"model"`
}

// Service wraps an Eino chat model plus the raw Gemini client, which is
// needed for accurate token accounting.
type Service struct {
	config       Config
	chatModel    model.BaseChatModel
	geminiClient *genai.Client
}

// TokenUsage reports prompt and completion token counts for one call.
type TokenUsage struct {
	InputTokens  int32 `json:"input_tokens"`
	OutputTokens int32 `json:"output_tokens"`
	TotalTokens  int32 `json:"total_tokens"`
}

func NewService(config Config) (*Service, error) {
	s := &Service{config: config}
	switch strings.ToLower(config.Provider) {
	case "gemini":
		if err := s.initGemini(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported provider: %s. Supported: gemini", config.Provider)
	}
	return s, nil
}

// NewServiceWithModel builds a Service around a pre-configured chat
// model. Used by tests to avoid touching the network.
func NewServiceWithModel(config Config, chatModel model.BaseChatModel) *Service {
	return &Service{config: config, chatModel: chatModel}
}

func (s *Service) initGemini() error {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: s.config.APIKey,
	})
	if err != nil {
		return fmt.Errorf("failed to create Gemini client: %w", err)
	}
	s.geminiClient = client

	chatModel, err := gemini.NewChatModel(context.Background(), &gemini.Config{
		Client: client,
		Model:  s.config.Model,
	})
	if err != nil {
		return fmt.Errorf("failed to create Gemini chat model: %w", err)
	}
	s.chatModel = chatModel
	return nil
}

// Generate runs the chat model over formatted messages.
func (s *Service) Generate(ctx context.Context, messages []*schema.Message) (*schema.Message, error) {
	if s.chatModel == nil {
		return nil, fmt.Errorf("chat model not initialized")
	}
	return s.chatModel.Generate(ctx, messages)
}

// GenerateWithTokenUsage calls Gemini directly so the response carries
// UsageMetadata, falling back to character estimation when it does not.
func (s *Service) GenerateWithTokenUsage(ctx context.Context, messages []*schema.Message) (*schema.Message, *TokenUsage, error) {
	if s.geminiClient == nil {
		// No raw client (custom chat model): generate via Eino and estimate.
		resp, err := s.Generate(ctx, messages)
		if err != nil {
			return nil, nil, err
		}
		usage := &TokenUsage{
			InputTokens:  s.CountTokensInText(messagesToText(messages)),
			OutputTokens: s.CountTokensInText(resp.Content),
		}
		usage.TotalTokens = usage.InputTokens + usage.OutputTokens
		return resp, usage, nil
	}

	var contents []*genai.Content
	for _, msg := range messages {
		contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
	}

	response, err := s.geminiClient.Models.GenerateContent(ctx, s.config.Model, contents, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("gemini api generation failed: %w", err)
	}

	usage := &TokenUsage{}
	if response.UsageMetadata != nil {
		usage.InputTokens = response.UsageMetadata.PromptTokenCount
		usage.OutputTokens = response.UsageMetadata.CandidatesTokenCount
		usage.TotalTokens = response.UsageMetadata.TotalTokenCount
	}

	responseContent := ""
	if len(response.Candidates) > 0 && response.Candidates[0].Content != nil && len(response.Candidates[0].Content.Parts) > 0 {
		responseContent = response.Candidates[0].Content.Parts[0].Text
	}

	if usage.TotalTokens == 0 {
		usage.InputTokens = s.CountTokensInText(messagesToText(messages))
		usage.OutputTokens = s.CountTokensInText(responseContent)
		usage.TotalTokens = usage.InputTokens + usage.OutputTokens
	}

	return &schema.Message{Content: responseContent}, usage, nil
}

// CountPromptTokens uses Gemini's CountTokens API for exact counts.
func (s *Service) CountPromptTokens(ctx context.Context, messages []*schema.Message) (int32, error) {
	if s.geminiClient == nil {
		return 0, fmt.Errorf("gemini client not initialized")
	}
	var contents []*genai.Content
	for _, msg := range messages {
		contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
	}
	countResp, err := s.geminiClient.Models.CountTokens(ctx, s.config.Model, contents, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count tokens with Gemini API: %w", err)
	}
	return countResp.TotalTokens, nil
}

// CountTokensInText estimates at the documented ~4 characters per token.
func (s *Service) CountTokensInText(text string) int32 {
	return int32(len(text) / 4)
}

func (s *Service) Model() string { return s.config.Model }

func messagesToText(messages []*schema.Message) string {
	var text strings.Builder
	for _, msg := range messages {
		text.WriteString(msg.Content)
		text.WriteString("\n")
	}
	return text.String()
}
