package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/SUSINDRAREDDY/Job-Agent/internal/config"
)

// GeminiClient calls one configured Gemini model.
type GeminiClient struct {
	client  *genai.Client
	cfg     config.LLMModelConfig
	limiter *rate.Limiter
	logger  *zap.Logger
}

var _ Client = (*GeminiClient)(nil)

// NewGeminiClient creates a client for a single model. The limiter is shared
// across all model clients so the combined call rate stays bounded.
func NewGeminiClient(ctx context.Context, cfg config.LLMModelConfig, limiter *rate.Limiter, logger *zap.Logger) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("no API key configured for model %q (set JOBAGENT_GEMINI_API_KEY)", cfg.Model)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client for %q: %w", cfg.Model, err)
	}
	return &GeminiClient{
		client:  client,
		cfg:     cfg,
		limiter: limiter,
		logger:  logger.Named("gemini").With(zap.String("model", cfg.Model)),
	}, nil
}

func (c *GeminiClient) GenerateResponse(ctx context.Context, req Request) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("waiting for rate limiter: %w", err)
	}

	if c.cfg.APITimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.APITimeout)
		defer cancel()
	}

	genCfg := &genai.GenerateContentConfig{}
	if req.System != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if c.cfg.Temperature > 0 {
		genCfg.Temperature = genai.Ptr(c.cfg.Temperature)
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.cfg.MaxTokens
	}
	if maxTokens > 0 {
		genCfg.MaxOutputTokens = int32(maxTokens)
	}

	c.logger.Debug("Sending generation request", zap.Int("prompt_len", len(req.Prompt)))
	result, err := c.client.Models.GenerateContent(ctx, c.cfg.Model, genai.Text(req.Prompt), genCfg)
	if err != nil {
		return "", fmt.Errorf("generate content for model %q: %w", c.cfg.Model, err)
	}

	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("model %q returned an empty response", c.cfg.Model)
	}
	return text, nil
}
