package dom

import (
	"context"
	"fmt"
)

// Rect is an element's bounding rectangle in viewport coordinates.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Snapshot is a point-in-time, read-only description of an element. It is
// recomputed on every inspection because layout may have changed; nothing in
// it is cached.
type Snapshot struct {
	Handle    Handle `json:"handle"`
	Tag       string `json:"tag"`
	ID        string `json:"id"`
	Role      string `json:"role"`
	InputType string `json:"type"`
	Text      string `json:"text"`
	Value     string `json:"value"`

	// X, Y is the integer center point of the post-scroll bounding rectangle;
	// pointer-based callers click here.
	X    int  `json:"x"`
	Y    int  `json:"y"`
	Rect Rect `json:"rect"`

	IsVisible      bool `json:"isVisible"`
	IsInteractable bool `json:"isInteractable"`
	IsDropdown     bool `json:"isDropdown"`
	IsExpanded     bool `json:"isExpanded"`
}

// Inspector resolves handles to live elements and measures them. Inspection
// scrolls the element into view and forces a layout pass first, so the
// reported center point is valid for pointer interaction immediately after
// the call.
type Inspector struct {
	reg *Registry
}

// NewInspector creates an inspector over the given registry.
func NewInspector(reg *Registry) *Inspector {
	return &Inspector{reg: reg}
}

// Inspect returns a fresh snapshot of the element behind handle. Staleness is
// reported as a StaleHandleError; any other fault is wrapped into an
// UnexpectedError. Inspect never panics past its boundary.
func (i *Inspector) Inspect(ctx context.Context, h Handle) (snap Snapshot, err error) {
	defer recoverGuard("inspect", &err)

	if !i.reg.Known(h) {
		return Snapshot{}, &StaleHandleError{Handle: h}
	}

	raw, callErr := i.reg.eval.CallScript(ctx, ScriptInspect, string(h))
	if callErr != nil {
		return Snapshot{}, unexpected("inspect", callErr)
	}

	var result struct {
		Status string `json:"status"`
		Snapshot
	}
	if jsonErr := codec.Unmarshal(raw, &result); jsonErr != nil {
		return Snapshot{}, unexpected("inspect", fmt.Errorf("decoding inspect result: %w", jsonErr))
	}
	if result.Status != "ok" {
		i.reg.purge(h)
		return Snapshot{}, &StaleHandleError{Handle: h}
	}

	result.Snapshot.Handle = h
	return result.Snapshot, nil
}
