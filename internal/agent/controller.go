// Package agent implements the decision process: a controller that parses
// the user's request, a navigator loop that searches and extracts listings,
// and an applicant loop that fills application forms through the form
// injector. The model decides; the executor acts; failures flow back as
// feedback text.
package agent

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/SUSINDRAREDDY/Job-Agent/internal/config"
	"github.com/SUSINDRAREDDY/Job-Agent/internal/llm"
	"github.com/SUSINDRAREDDY/Job-Agent/internal/profile"
)

// Intent is the classified user request.
type Intent struct {
	Kind  string `json:"kind"` // "search" or "apply"
	Query string `json:"query"`
}

// Controller runs a full job-search session against one board.
type Controller struct {
	llm     llm.Client
	surface Surface
	profile profile.Profile
	cfg     config.AgentConfig
	exec    *Executor
	logger  *zap.Logger
}

// NewController wires the decision process to a browser surface.
func NewController(llmClient llm.Client, surface Surface, prof profile.Profile, cfg config.AgentConfig, extractDir string, logger *zap.Logger) *Controller {
	return &Controller{
		llm:     llmClient,
		surface: surface,
		profile: prof,
		cfg:     cfg,
		exec:    NewExecutor(surface, extractDir, logger),
		logger:  logger.Named("controller"),
	}
}

// ParseIntent classifies the request on the fast tier. Model failure is not
// fatal: the request degrades to a plain search with the raw query.
func (c *Controller) ParseIntent(ctx context.Context, query string) Intent {
	reply, err := c.llm.GenerateResponse(ctx, llm.Request{
		Tier:   llm.TierFast,
		System: intentSystem,
		Prompt: query,
	})
	if err == nil {
		var intent Intent
		if start, end := indexBraces(reply); start != -1 {
			if jsonErr := codec.Unmarshal([]byte(reply[start:end+1]), &intent); jsonErr == nil &&
				(intent.Kind == "search" || intent.Kind == "apply") {
				if intent.Query == "" {
					intent.Query = query
				}
				return intent
			}
		}
	} else {
		c.logger.Warn("Intent classification failed, defaulting to search", zap.Error(err))
	}
	return Intent{Kind: "search", Query: query}
}

// Run drives the whole session: navigate to the board, search and extract,
// and, when the request asks for it, fill the application.
func (c *Controller) Run(ctx context.Context, query, boardURL string, apply bool) (string, error) {
	intent := c.ParseIntent(ctx, query)
	if apply {
		intent.Kind = "apply"
	}
	c.logger.Info("Session starting",
		zap.String("kind", intent.Kind),
		zap.String("query", intent.Query),
		zap.String("board", boardURL))

	if err := c.surface.Navigate(ctx, boardURL); err != nil {
		return "", fmt.Errorf("opening board: %w", err)
	}

	navigator := &stepLoop{
		name:     "navigator",
		system:   navigatorSystem,
		llm:      c.llm,
		exec:     c.exec,
		maxSteps: c.cfg.MaxSteps,
		logger:   c.logger,
	}
	goal := fmt.Sprintf("Find job listings matching: %s", intent.Query)
	if intent.Kind == "apply" {
		goal = fmt.Sprintf("Find a job matching %q and open its application form", intent.Query)
	}
	navSummary, err := navigator.run(ctx, goal, "")
	if err != nil {
		return "", err
	}
	if intent.Kind != "apply" {
		return navSummary, nil
	}

	applicant := &stepLoop{
		name:     "applicant",
		system:   applicantSystem,
		llm:      c.llm,
		exec:     c.exec,
		maxSteps: c.cfg.MaxSteps,
		logger:   c.logger,
		guard:    c.submitGuard(),
	}
	extra := "APPLICANT PROFILE:\n" + c.profile.Render()
	appSummary, err := applicant.run(ctx, "Complete the application form for the opened job", extra)
	if err != nil {
		return "", err
	}
	return navSummary + "\n" + appSummary, nil
}

// submitGuard stops the applicant loop at the final submit click unless the
// run was started with the confirm flag.
func (c *Controller) submitGuard() func(Action) (string, bool) {
	return func(a Action) (string, bool) {
		if a.Submit && !c.cfg.ConfirmSubmit {
			return "application filled; stopped before final submit (run with --apply-confirm to submit)", true
		}
		return "", false
	}
}

func indexBraces(s string) (int, int) {
	start := -1
	for i, r := range s {
		if r == '{' {
			start = i
			break
		}
	}
	if start == -1 {
		return -1, -1
	}
	for i := len(s) - 1; i > start; i-- {
		if s[i] == '}' {
			return start, i
		}
	}
	return -1, -1
}
