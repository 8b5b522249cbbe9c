package agent

import (
	"context"
	"fmt"

	"github.com/SUSINDRAREDDY/Job-Agent/internal/browser"
	"github.com/SUSINDRAREDDY/Job-Agent/internal/browser/dom"
	"github.com/SUSINDRAREDDY/Job-Agent/internal/llm"
)

// fakeSurface is a scripted browser surface. Every call is recorded; canned
// values and errors are returned per operation.
type fakeSurface struct {
	calls []string

	outline string
	url     string
	title   string
	html    string

	navigateErr error
	fillResult  dom.FillResult
	fillErr     error
	clickReport browser.ClickReport
	clickErr    error
	pressErr    error
	scrollErr   error
	outlineErr  error
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{
		outline: "h_1: (200,115) input#q[text]: [placeholder=\"Search jobs\"]\nh_2: (200,170) button: Search",
		url:     "https://board.example/jobs",
		title:   "Example Jobs",
	}
}

func (f *fakeSurface) record(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeSurface) Navigate(_ context.Context, url string) error {
	f.record("navigate %s", url)
	if f.navigateErr != nil {
		return f.navigateErr
	}
	f.url = url
	return nil
}

func (f *fakeSurface) Location(context.Context) (string, error) { return f.url, nil }
func (f *fakeSurface) Title(context.Context) (string, error)    { return f.title, nil }
func (f *fakeSurface) HTML(context.Context) (string, error)     { return f.html, nil }

func (f *fakeSurface) Outline(context.Context) (string, error) {
	f.record("outline")
	return f.outline, f.outlineErr
}

func (f *fakeSurface) Inspect(_ context.Context, h dom.Handle) (dom.Snapshot, error) {
	f.record("inspect %s", h)
	return dom.Snapshot{Handle: h, IsVisible: true, IsInteractable: true}, nil
}

func (f *fakeSurface) Fill(_ context.Context, h dom.Handle, value any) (dom.FillResult, error) {
	f.record("fill %s %v", h, value)
	return f.fillResult, f.fillErr
}

func (f *fakeSurface) Click(_ context.Context, h dom.Handle) (browser.ClickReport, error) {
	f.record("click %s", h)
	return f.clickReport, f.clickErr
}

func (f *fakeSurface) ClickAt(_ context.Context, x, y float64) (browser.ClickReport, error) {
	f.record("click_at %.0f,%.0f", x, y)
	return f.clickReport, f.clickErr
}

func (f *fakeSurface) TypeText(_ context.Context, text string) error {
	f.record("type %s", text)
	return nil
}

func (f *fakeSurface) PressKey(_ context.Context, spec string) error {
	f.record("press %s", spec)
	return f.pressErr
}

func (f *fakeSurface) Scroll(_ context.Context, direction string) error {
	f.record("scroll %s", direction)
	return f.scrollErr
}

func (f *fakeSurface) Screenshot(context.Context) ([]byte, error) {
	f.record("screenshot")
	return []byte{0xff, 0xd8, 0xff, 0xd9}, nil
}

func (f *fakeSurface) ShowStatus(_ context.Context, message, level string) {}

// scriptedLLM replays canned responses in order, recording the requests.
type scriptedLLM struct {
	replies  []string
	requests []llm.Request
	err      error
}

func (s *scriptedLLM) GenerateResponse(_ context.Context, req llm.Request) (string, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return "", s.err
	}
	if len(s.replies) == 0 {
		return `{"op":"done","summary":"out of script"}`, nil
	}
	reply := s.replies[0]
	s.replies = s.replies[1:]
	return reply, nil
}
