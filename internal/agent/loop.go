package agent

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/SUSINDRAREDDY/Job-Agent/internal/llm"
)

// historyWindow bounds how many recent steps each prompt carries.
const historyWindow = 8

// stepLoop is the shared observe/decide/act cycle behind the navigator and
// the applicant. Each iteration re-enumerates the page, asks the model for
// one action, executes it, and feeds the outcome back.
type stepLoop struct {
	name     string
	system   string
	llm      llm.Client
	exec     *Executor
	maxSteps int
	logger   *zap.Logger

	// guard, when set, can stop the loop before an action executes. It
	// returns a summary and true to stop.
	guard func(Action) (string, bool)
}

func (l *stepLoop) run(ctx context.Context, goal, extra string) (string, error) {
	var history []string

	for step := 1; step <= l.maxSteps; step++ {
		outline, err := l.exec.surface.Outline(ctx)
		if err != nil {
			return "", fmt.Errorf("%s: enumerating page: %w", l.name, err)
		}
		url, err := l.exec.surface.Location(ctx)
		if err != nil {
			return "", err
		}
		title, err := l.exec.surface.Title(ctx)
		if err != nil {
			return "", err
		}

		reply, err := l.llm.GenerateResponse(ctx, llm.Request{
			Tier:   llm.TierPowerful,
			System: l.system,
			Prompt: stepPrompt(goal, extra, url, title, outline, history),
		})
		if err != nil {
			return "", fmt.Errorf("%s: model call failed: %w", l.name, err)
		}

		action, err := ParseAction(reply)
		if err != nil {
			// Malformed replies are feedback, not fatal; the model gets one
			// more look, and the step still counts against the budget.
			l.logger.Warn("Unparseable model reply", zap.String("loop", l.name), zap.Error(err))
			history = appendHistory(history, fmt.Sprintf("step %d: your reply was not a valid action: %v", step, err))
			continue
		}

		l.logger.Info("Agent step",
			zap.String("loop", l.name),
			zap.Int("step", step),
			zap.String("op", action.Op),
			zap.String("reason", action.Reason))

		if action.Op == "done" {
			summary := action.Summary
			if summary == "" {
				summary = action.Reason
			}
			l.exec.surface.ShowStatus(ctx, "Done: "+summary, "success")
			return summary, nil
		}
		if l.guard != nil {
			if summary, stop := l.guard(action); stop {
				l.exec.surface.ShowStatus(ctx, summary, "warn")
				return summary, nil
			}
		}

		l.exec.surface.ShowStatus(ctx, describeAction(action), "info")
		feedback, err := l.exec.Execute(ctx, action)
		if err != nil {
			// Execution failures (stale handles, unmatched options, ...) are
			// the model's to recover from.
			feedback = "ERROR: " + err.Error()
			l.exec.surface.ShowStatus(ctx, feedback, "error")
		}
		history = appendHistory(history, fmt.Sprintf("step %d: %s -> %s", step, describeAction(action), feedback))
	}

	return "", fmt.Errorf("%s: step budget of %d exhausted before the goal was reached", l.name, l.maxSteps)
}

func appendHistory(history []string, entry string) []string {
	history = append(history, entry)
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	return history
}

func describeAction(a Action) string {
	switch a.Op {
	case "click":
		return "click " + a.Handle
	case "fill":
		return fmt.Sprintf("fill %s = %q", a.Handle, a.Value)
	case "navigate":
		return "navigate " + a.URL
	case "press":
		return "press " + a.Key
	case "sequence":
		return fmt.Sprintf("sequence of %d steps", len(a.Lines))
	default:
		return a.Op
	}
}
