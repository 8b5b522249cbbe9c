// Package llm provides a tiered client for the agent's decision process:
// a fast model for cheap page summaries and intent parsing, a powerful model
// for planning. All calls go through a shared rate limiter.
package llm

import "context"

// Tier selects the capability class for a generation request.
type Tier string

const (
	TierFast     Tier = "fast"
	TierPowerful Tier = "powerful"
)

// Request is a single generation call.
type Request struct {
	Tier      Tier
	System    string
	Prompt    string
	MaxTokens int
}

// Client generates a text response for a request.
type Client interface {
	GenerateResponse(ctx context.Context, req Request) (string, error)
}
