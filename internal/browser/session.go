package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/SUSINDRAREDDY/Job-Agent/internal/browser/dom"
	"github.com/SUSINDRAREDDY/Job-Agent/internal/config"
)

// Session drives a single browser tab. It owns the tab's dom.Registry: every
// navigation resets the handle namespace and reinstalls the page-side table.
type Session struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc
	cfg    config.BrowserConfig
	logger *zap.Logger

	reg       *dom.Registry
	inspector *dom.Inspector
	injector  *dom.Injector

	onClose   func()
	closeOnce sync.Once
}

var _ dom.Evaluator = (*Session)(nil)

func newSession(id string, tabCtx context.Context, cancel context.CancelFunc, cfg config.BrowserConfig, logger *zap.Logger) *Session {
	s := &Session{
		id:     id,
		ctx:    tabCtx,
		cancel: cancel,
		cfg:    cfg,
		logger: logger.Named("session").With(zap.String("session_id", id)),
	}
	s.reg = dom.NewRegistry(s)
	s.inspector = dom.NewInspector(s.reg)
	s.injector = dom.NewInjector(s.reg)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// run executes chromedp actions on the tab's context while honoring the
// caller's cancellation.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	done := make(chan error, 1)
	go func() { done <- chromedp.Run(s.ctx, actions...) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// buildInvocation turns a function-expression script and its arguments into a
// single evaluatable call: `(fn)(arg1, arg2)`. Arguments travel as JSON.
func buildInvocation(script dom.Script, args ...any) (string, error) {
	encoded := make([]string, len(args))
	for i, arg := range args {
		buf, err := json.Marshal(arg)
		if err != nil {
			return "", fmt.Errorf("encoding script argument %d: %w", i, err)
		}
		encoded[i] = string(buf)
	}
	return fmt.Sprintf("(%s)(%s)", string(script), strings.Join(encoded, ", ")), nil
}

// CallScript implements dom.Evaluator over CDP. The expression is evaluated
// with promise awaiting so scripts may be async.
func (s *Session) CallScript(ctx context.Context, script dom.Script, args ...any) (json.RawMessage, error) {
	expr, err := buildInvocation(script, args...)
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	err = s.run(ctx, chromedp.Evaluate(expr, &raw, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
		return p.WithReturnByValue(true).WithAwaitPromise(true).WithSilent(true)
	}))
	if err != nil {
		return nil, fmt.Errorf("evaluating page script: %w", err)
	}
	return raw, nil
}

// Navigate loads url, waits for the document to become ready, and resets the
// handle namespace: handles never survive navigation.
func (s *Session) Navigate(ctx context.Context, url string) error {
	navCtx := ctx
	if s.cfg.NavigationTimeout > 0 {
		var cancel context.CancelFunc
		navCtx, cancel = context.WithTimeout(ctx, s.cfg.NavigationTimeout)
		defer cancel()
	}

	s.logger.Info("Navigating", zap.String("url", url))
	if err := s.run(navCtx, chromedp.Navigate(url), chromedp.WaitReady("body")); err != nil {
		return fmt.Errorf("navigating to %q: %w", url, err)
	}
	if s.cfg.PostNavWait > 0 {
		if err := s.run(navCtx, chromedp.Sleep(s.cfg.PostNavWait)); err != nil {
			return err
		}
	}

	s.reg.Reset()
	if _, err := s.CallScript(navCtx, dom.ScriptBootstrap); err != nil {
		return fmt.Errorf("installing handle table: %w", err)
	}
	return nil
}

// Location returns the tab's current URL.
func (s *Session) Location(ctx context.Context) (string, error) {
	var url string
	if err := s.run(ctx, chromedp.Location(&url)); err != nil {
		return "", err
	}
	return url, nil
}

// Title returns the document title.
func (s *Session) Title(ctx context.Context) (string, error) {
	var title string
	if err := s.run(ctx, chromedp.Title(&title)); err != nil {
		return "", err
	}
	return title, nil
}

// HTML returns the serialized document, for job-card extraction.
func (s *Session) HTML(ctx context.Context) (string, error) {
	var html string
	if err := s.run(ctx, chromedp.OuterHTML("html", &html)); err != nil {
		return "", err
	}
	return html, nil
}

// Outline enumerates and renders the compact element outline.
func (s *Session) Outline(ctx context.Context) (string, error) {
	entries, err := s.reg.Enumerate(ctx)
	if err != nil {
		return "", err
	}
	return dom.FormatOutline(entries), nil
}

// Inspect returns a fresh snapshot of the element behind handle.
func (s *Session) Inspect(ctx context.Context, h dom.Handle) (dom.Snapshot, error) {
	return s.inspector.Inspect(ctx, h)
}

// Fill assigns a value to the element behind handle.
func (s *Session) Fill(ctx context.Context, h dom.Handle, value any) (dom.FillResult, error) {
	return s.injector.Fill(ctx, h, value)
}

// ClickReport summarizes what a click changed, for the decision loop.
type ClickReport struct {
	PreviousURL string
	CurrentURL  string
	URLChanged  bool
	FocusedTag  string
	FocusedID   string
	PopupOpened bool
}

func (r ClickReport) String() string {
	var parts []string
	if r.URLChanged {
		parts = append(parts, "navigated to "+r.CurrentURL)
	}
	if r.FocusedTag != "" {
		f := r.FocusedTag
		if r.FocusedID != "" {
			f += "#" + r.FocusedID
		}
		parts = append(parts, "focus on "+f)
	}
	if r.PopupOpened {
		parts = append(parts, "a dropdown or popup opened")
	}
	if len(parts) == 0 {
		return "click landed, no visible change"
	}
	return strings.Join(parts, "; ")
}

const pageStateScript = dom.Script(`() => {
  const active = document.activeElement;
  return {
    focusedTag: active && active !== document.body ? active.tagName.toLowerCase() : '',
    focusedId: active && active.id ? active.id : '',
    openDropdowns: document.querySelectorAll('[aria-expanded="true"]').length,
  };
}`)

type pageState struct {
	FocusedTag    string `json:"focusedTag"`
	FocusedID     string `json:"focusedId"`
	OpenDropdowns int    `json:"openDropdowns"`
}

func (s *Session) pageState(ctx context.Context) (pageState, error) {
	raw, err := s.CallScript(ctx, pageStateScript)
	if err != nil {
		return pageState{}, err
	}
	var st pageState
	if err := json.Unmarshal(raw, &st); err != nil {
		return pageState{}, fmt.Errorf("decoding page state: %w", err)
	}
	return st, nil
}

// Click resolves handle to a fresh center point and clicks it, reporting
// what changed. Inspection scrolls the element into view first, so the
// coordinates are valid at dispatch time.
func (s *Session) Click(ctx context.Context, h dom.Handle) (ClickReport, error) {
	snap, err := s.inspector.Inspect(ctx, h)
	if err != nil {
		return ClickReport{}, err
	}
	if !snap.IsInteractable {
		return ClickReport{}, fmt.Errorf("element %s is not interactable (visible=%v)", h, snap.IsVisible)
	}
	return s.ClickAt(ctx, float64(snap.X), float64(snap.Y))
}

// ClickAt clicks raw viewport coordinates. A Y outside the viewport scrolls
// the page first and clicks at the post-scroll position.
func (s *Session) ClickAt(ctx context.Context, x, y float64) (ClickReport, error) {
	height := float64(s.cfg.WindowHeight)
	if height > 0 && (y < 0 || y > height) {
		delta := y - height/2
		scroll := fmt.Sprintf("window.scrollBy(0, %.0f)", delta)
		if err := s.run(ctx, chromedp.Evaluate(scroll, nil)); err != nil {
			return ClickReport{}, fmt.Errorf("scrolling before click: %w", err)
		}
		y -= delta
	}

	before, err := s.pageState(ctx)
	if err != nil {
		return ClickReport{}, err
	}
	prevURL, err := s.Location(ctx)
	if err != nil {
		return ClickReport{}, err
	}

	if err := s.run(ctx, chromedp.MouseClickXY(x, y)); err != nil {
		return ClickReport{}, fmt.Errorf("dispatching click at (%.0f,%.0f): %w", x, y, err)
	}
	// Give the page a beat to react before measuring what changed.
	if err := s.run(ctx, chromedp.Sleep(500*time.Millisecond)); err != nil {
		return ClickReport{}, err
	}

	curURL, err := s.Location(ctx)
	if err != nil {
		return ClickReport{}, err
	}
	report := ClickReport{
		PreviousURL: prevURL,
		CurrentURL:  curURL,
		URLChanged:  curURL != prevURL,
	}
	if report.URLChanged {
		// New document, new handle namespace.
		s.reg.Reset()
		if _, err := s.CallScript(ctx, dom.ScriptBootstrap); err != nil {
			return report, fmt.Errorf("reinstalling handle table: %w", err)
		}
		return report, nil
	}

	after, err := s.pageState(ctx)
	if err != nil {
		return report, err
	}
	report.FocusedTag = after.FocusedTag
	report.FocusedID = after.FocusedID
	report.PopupOpened = after.OpenDropdowns > before.OpenDropdowns
	return report, nil
}

// TypeText types into the focused element one character at a time with a
// jittered delay, the way a person would.
func (s *Session) TypeText(ctx context.Context, text string) error {
	for _, r := range text {
		if err := s.run(ctx, chromedp.KeyEvent(string(r))); err != nil {
			return fmt.Errorf("typing character %q: %w", r, err)
		}
		delay := time.Duration(s.cfg.KeyDelayMs) * time.Millisecond
		if s.cfg.KeyDelayJitterMs > 0 {
			delay += time.Duration(rand.Intn(s.cfg.KeyDelayJitterMs)) * time.Millisecond
		}
		if delay > 0 {
			if err := s.run(ctx, chromedp.Sleep(delay)); err != nil {
				return err
			}
		}
	}
	return nil
}

// PressKey dispatches a key (or modifier combination) by its friendly name.
func (s *Session) PressKey(ctx context.Context, spec string) error {
	mods, key, err := ResolveKey(spec)
	if err != nil {
		return err
	}
	keyDown := input.DispatchKeyEvent(input.KeyDown).WithModifiers(mods).WithKey(key)
	keyUp := input.DispatchKeyEvent(input.KeyUp).WithModifiers(mods).WithKey(key)
	if err := s.run(ctx, keyDown, keyUp); err != nil {
		return fmt.Errorf("pressing %q: %w", spec, err)
	}
	return nil
}

// Scroll moves the viewport: "up", "down", "top", "bottom".
func (s *Session) Scroll(ctx context.Context, direction string) error {
	var script string
	switch strings.ToLower(direction) {
	case "down":
		script = "window.scrollBy(0, window.innerHeight * 0.8)"
	case "up":
		script = "window.scrollBy(0, -window.innerHeight * 0.8)"
	case "top":
		script = "window.scrollTo(0, 0)"
	case "bottom":
		script = "window.scrollTo(0, document.body.scrollHeight)"
	default:
		return fmt.Errorf("unknown scroll direction %q", direction)
	}
	return s.run(ctx, chromedp.Evaluate(script, nil))
}

// Screenshot captures the viewport as JPEG.
func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	err := s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		buf, err = page.CaptureScreenshot().
			WithFormat(page.CaptureScreenshotFormatJpeg).
			WithQuality(70).
			Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("capturing screenshot: %w", err)
	}
	return buf, nil
}

var statusColors = map[string]string{
	"info":    "#2563eb",
	"success": "#16a34a",
	"warn":    "#d97706",
	"error":   "#dc2626",
}

const statusScript = dom.Script(`(message, color) => {
  let el = document.getElementById('__jaStatus');
  if (!el) {
    el = document.createElement('div');
    el.id = '__jaStatus';
    el.style.cssText = 'position:fixed;top:12px;right:12px;z-index:2147483647;' +
      'padding:8px 14px;border-radius:6px;color:#fff;font:13px sans-serif;' +
      'box-shadow:0 2px 8px rgba(0,0,0,.3);transition:opacity .3s';
    document.body.appendChild(el);
  }
  el.textContent = message;
  el.style.background = color;
  el.style.opacity = '1';
  clearTimeout(el.__jaTimer);
  el.__jaTimer = setTimeout(() => { el.style.opacity = '0'; }, 4000);
  return true;
}`)

// ShowStatus paints a transient toast in the page so a watching user can see
// what the agent is doing. level is one of info, success, warn, error.
func (s *Session) ShowStatus(ctx context.Context, message, level string) {
	color, ok := statusColors[level]
	if !ok {
		color = statusColors["info"]
	}
	if _, err := s.CallScript(ctx, statusScript, message, color); err != nil {
		// Overlay failure is cosmetic.
		s.logger.Debug("Status overlay failed", zap.Error(err))
	}
}

// Close tears the tab down. Safe to call more than once.
func (s *Session) Close(_ context.Context) error {
	s.closeOnce.Do(func() {
		s.logger.Debug("Closing session")
		s.cancel()
		if s.onClose != nil {
			s.onClose()
		}
	})
	return nil
}
