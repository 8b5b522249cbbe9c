package agent

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/SUSINDRAREDDY/Job-Agent/internal/browser"
	"github.com/SUSINDRAREDDY/Job-Agent/internal/browser/dom"
	"github.com/SUSINDRAREDDY/Job-Agent/internal/jobs"
)

// Surface is the slice of a browser session the decision loops drive. Tests
// substitute a scripted fake.
type Surface interface {
	Navigate(ctx context.Context, url string) error
	Location(ctx context.Context) (string, error)
	Title(ctx context.Context) (string, error)
	HTML(ctx context.Context) (string, error)
	Outline(ctx context.Context) (string, error)
	Inspect(ctx context.Context, h dom.Handle) (dom.Snapshot, error)
	Fill(ctx context.Context, h dom.Handle, value any) (dom.FillResult, error)
	Click(ctx context.Context, h dom.Handle) (browser.ClickReport, error)
	ClickAt(ctx context.Context, x, y float64) (browser.ClickReport, error)
	TypeText(ctx context.Context, text string) error
	PressKey(ctx context.Context, spec string) error
	Scroll(ctx context.Context, direction string) error
	Screenshot(ctx context.Context) ([]byte, error)
	ShowStatus(ctx context.Context, message, level string)
}

var _ Surface = (*browser.Session)(nil)

// Executor turns parsed actions into surface calls and renders the outcome
// as feedback text for the next decision step. Failures of the dom taxonomy
// come back as feedback, not as hard errors: the loop is expected to adapt.
type Executor struct {
	surface    Surface
	extractDir string
	extraction *jobs.Session
	logger     *zap.Logger
}

// NewExecutor wires an executor to a surface. extractDir is where extract
// actions accumulate their session file.
func NewExecutor(surface Surface, extractDir string, logger *zap.Logger) *Executor {
	return &Executor{
		surface:    surface,
		extractDir: extractDir,
		logger:     logger.Named("executor"),
	}
}

// Execute performs a single action and describes the result.
func (e *Executor) Execute(ctx context.Context, action Action) (string, error) {
	e.logger.Debug("Executing action", zap.String("op", action.Op), zap.String("handle", action.Handle))

	switch action.Op {
	case "navigate":
		if action.URL == "" {
			return "", fmt.Errorf("navigate needs a url")
		}
		if err := e.surface.Navigate(ctx, action.URL); err != nil {
			return "", err
		}
		return "navigated to " + action.URL, nil

	case "click":
		report, err := e.surface.Click(ctx, dom.Handle(action.Handle))
		if err != nil {
			return "", err
		}
		return report.String(), nil

	case "click_at":
		report, err := e.surface.ClickAt(ctx, action.X, action.Y)
		if err != nil {
			return "", err
		}
		return report.String(), nil

	case "fill":
		res, err := e.surface.Fill(ctx, dom.Handle(action.Handle), action.Value)
		if err != nil {
			return "", err
		}
		return res.Message, nil

	case "type":
		if err := e.surface.TypeText(ctx, action.Value); err != nil {
			return "", err
		}
		return fmt.Sprintf("typed %d characters", len(action.Value)), nil

	case "press":
		if err := e.surface.PressKey(ctx, action.Key); err != nil {
			return "", err
		}
		return "pressed " + action.Key, nil

	case "scroll":
		dir := action.Direction
		if dir == "" {
			dir = "down"
		}
		if err := e.surface.Scroll(ctx, dir); err != nil {
			return "", err
		}
		return "scrolled " + dir, nil

	case "wait":
		secs := action.Seconds
		if secs <= 0 || secs > 30 {
			secs = 1
		}
		select {
		case <-time.After(time.Duration(secs * float64(time.Second))):
		case <-ctx.Done():
			return "", ctx.Err()
		}
		return fmt.Sprintf("waited %.1fs", secs), nil

	case "screenshot":
		return e.screenshot(ctx)

	case "extract":
		return e.extract(ctx)

	case "sequence":
		return e.sequence(ctx, action.Lines)

	default:
		return "", fmt.Errorf("unknown action op %q", action.Op)
	}
}

// screenshot captures the viewport and saves it alongside the extraction
// artifacts.
func (e *Executor) screenshot(ctx context.Context) (string, error) {
	shot, err := e.surface.Screenshot(ctx)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(e.extractDir, 0755); err != nil {
		return "", fmt.Errorf("creating screenshot dir: %w", err)
	}
	path := filepath.Join(e.extractDir, fmt.Sprintf("screenshot_%s.jpg", time.Now().Format("20060102_150405")))
	if err := os.WriteFile(path, shot, 0644); err != nil {
		return "", fmt.Errorf("writing screenshot: %w", err)
	}
	return "saved screenshot to " + path, nil
}

// extract parses the current page for job cards and merges them into the
// run's extraction session.
func (e *Executor) extract(ctx context.Context) (string, error) {
	src, err := e.surface.HTML(ctx)
	if err != nil {
		return "", err
	}
	cards, pagination, err := jobs.ParseCards(src)
	if err != nil {
		return "", err
	}
	if len(cards) == 0 {
		return "no job cards recognized on this page", nil
	}

	if e.extraction == nil {
		e.extraction, err = jobs.NewSession(e.extractDir, e.logger)
		if err != nil {
			return "", err
		}
	}
	added, total, err := e.extraction.Add(cards)
	if err != nil {
		return "", err
	}

	msg := fmt.Sprintf("extracted %d new jobs (%d total) into %s", added, total, e.extraction.Path())
	if pagination.HasNext {
		msg += "; a next results page is available"
		if pagination.NextURL != "" {
			msg += " at " + pagination.NextURL
		}
	}
	return msg, nil
}

// sequence runs a batch of DSL lines, reporting per-line outcomes. A failing
// line stops the batch; the decision loop sees how far it got.
func (e *Executor) sequence(ctx context.Context, lines []string) (string, error) {
	if len(lines) == 0 {
		return "", fmt.Errorf("sequence has no lines")
	}

	var results []string
	for i, line := range lines {
		sub, err := ParseSequenceLine(line)
		if err != nil {
			results = append(results, fmt.Sprintf("%d. %s -> ERROR: %v", i+1, line, err))
			break
		}
		feedback, err := e.Execute(ctx, sub)
		if err != nil {
			results = append(results, fmt.Sprintf("%d. %s -> ERROR: %v", i+1, line, err))
			break
		}
		results = append(results, fmt.Sprintf("%d. %s -> %s", i+1, line, feedback))
	}
	return strings.Join(results, "\n"), nil
}
