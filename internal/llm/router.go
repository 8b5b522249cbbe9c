package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/SUSINDRAREDDY/Job-Agent/internal/config"
)

// Router dispatches requests to the client configured for the requested tier.
type Router struct {
	logger  *zap.Logger
	clients map[Tier]Client
}

var _ Client = (*Router)(nil)

// NewRouter creates a router with one client per tier.
func NewRouter(logger *zap.Logger, fast, powerful Client) (*Router, error) {
	if fast == nil {
		return nil, fmt.Errorf("fast tier client cannot be nil")
	}
	if powerful == nil {
		return nil, fmt.Errorf("powerful tier client cannot be nil")
	}
	return &Router{
		logger: logger.Named("llm_router"),
		clients: map[Tier]Client{
			TierFast:     fast,
			TierPowerful: powerful,
		},
	}, nil
}

// GenerateResponse routes by req.Tier, defaulting to the powerful tier.
func (r *Router) GenerateResponse(ctx context.Context, req Request) (string, error) {
	tier := req.Tier
	if tier == "" {
		tier = TierPowerful
	}
	client, ok := r.clients[tier]
	if !ok {
		return "", fmt.Errorf("no LLM client configured for tier: %s", tier)
	}
	r.logger.Debug("Routing LLM request", zap.String("tier", string(tier)))
	return client.GenerateResponse(ctx, req)
}

// NewClient builds the tiered client from configuration: one Gemini client
// per configured model, wired into a router by the default tier assignments,
// all sharing one rate limiter.
func NewClient(ctx context.Context, cfg config.AgentConfig, logger *zap.Logger) (Client, error) {
	routerCfg := cfg.LLM
	if len(routerCfg.Models) == 0 {
		return nil, fmt.Errorf("no LLM models configured under agent.llm.models")
	}

	limiter := rate.NewLimiter(rate.Limit(routerCfg.RequestsPerMinute/60.0), 1)

	clients := make(map[string]Client, len(routerCfg.Models))
	for name, modelCfg := range routerCfg.Models {
		if modelCfg.Provider != config.ProviderGemini {
			return nil, fmt.Errorf("unknown LLM provider %q for model %q", modelCfg.Provider, name)
		}
		client, err := NewGeminiClient(ctx, modelCfg, limiter, logger)
		if err != nil {
			return nil, fmt.Errorf("creating LLM client for model %q: %w", name, err)
		}
		clients[name] = client
		logger.Info("Instantiated LLM client",
			zap.String("name", name), zap.String("model", modelCfg.Model))
	}

	fast, ok := clients[routerCfg.DefaultFastModel]
	if !ok {
		return nil, fmt.Errorf("default fast model %q not found in configured models", routerCfg.DefaultFastModel)
	}
	powerful, ok := clients[routerCfg.DefaultPowerfulModel]
	if !ok {
		return nil, fmt.Errorf("default powerful model %q not found in configured models", routerCfg.DefaultPowerfulModel)
	}
	return NewRouter(logger, fast, powerful)
}
