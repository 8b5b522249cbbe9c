package dom

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Handle is an opaque identifier issued for a DOM element at enumeration
// time. Handles survive in-page mutation as long as the element stays
// attached; they do not survive navigation.
type Handle string

// Descriptor holds the static attributes of a resolved element, enough to
// classify its input taxonomy without further page round-trips.
type Descriptor struct {
	Tag             string       `json:"tag"`
	InputType       string       `json:"type"`
	ContentEditable bool         `json:"contentEditable"`
	Disabled        bool         `json:"disabled"`
	Checked         bool         `json:"checked"`
	Value           string       `json:"value"`
	Options         []OptionData `json:"options"`
}

// OptionData is one <option> of a native selection control.
type OptionData struct {
	Value string `json:"value"`
	Text  string `json:"text"`
}

// Entry is one element discovered by an enumeration pass.
type Entry struct {
	Handle       Handle `json:"handle"`
	Tag          string `json:"tag"`
	ID           string `json:"id"`
	Type         string `json:"type"`
	Text         string `json:"text"`
	Placeholder  string `json:"placeholder"`
	Value        string `json:"value"`
	X            int    `json:"x"`
	Y            int    `json:"y"`
	Dropdown     bool   `json:"dropdown"`
	Expanded     bool   `json:"expanded"`
	SelectedText string `json:"selectedText"`
}

// Registry owns the handle namespace for one document. The element references
// themselves live in a page-side table of WeakRefs (installed by
// ScriptBootstrap) so the registry is never the reason an element stays
// reachable; the Go side tracks which handles were issued so that unknown or
// purged handles fail fast without a page round-trip.
//
// The registry is mutated only by Enumerate and by staleness purges inside
// resolution. After a navigation the caller must Reset it: a fresh document
// has no entries.
type Registry struct {
	eval Evaluator

	mu    sync.Mutex
	known map[Handle]struct{}
}

// NewRegistry creates a registry bound to one page document via eval.
func NewRegistry(eval Evaluator) *Registry {
	return &Registry{
		eval:  eval,
		known: make(map[Handle]struct{}),
	}
}

// Enumerate scans the current viewport for interactive elements, issues a
// handle for each, and returns their summaries. This is the only operation
// that adds entries.
func (r *Registry) Enumerate(ctx context.Context) (entries []Entry, err error) {
	defer recoverGuard("enumerate", &err)

	raw, callErr := r.eval.CallScript(ctx, ScriptEnumerate)
	if callErr != nil {
		return nil, unexpected("enumerate", callErr)
	}
	if jsonErr := codec.Unmarshal(raw, &entries); jsonErr != nil {
		return nil, unexpected("enumerate", fmt.Errorf("decoding enumeration result: %w", jsonErr))
	}

	r.mu.Lock()
	for _, e := range entries {
		r.known[e.Handle] = struct{}{}
	}
	r.mu.Unlock()
	return entries, nil
}

// Resolve verifies that handle refers to a live element still attached to the
// document. It returns a StaleHandleError (and purges the entry) otherwise;
// repeated resolution of a stale handle keeps reporting Stale.
func (r *Registry) Resolve(ctx context.Context, h Handle) (err error) {
	defer recoverGuard("resolve", &err)
	_, err = r.describe(ctx, h)
	return err
}

// Known reports whether the registry has issued (and not purged) the handle.
func (r *Registry) Known(h Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.known[h]
	return ok
}

// Len returns the number of live entries, for diagnostics.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.known)
}

// Reset drops all bookkeeping. Call after navigation; the new document's
// handle table starts empty.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.known = make(map[Handle]struct{})
}

// describe resolves the handle in the page and returns its static attributes.
// All staleness detection funnels through here.
func (r *Registry) describe(ctx context.Context, h Handle) (Descriptor, error) {
	if !r.Known(h) {
		return Descriptor{}, &StaleHandleError{Handle: h}
	}

	raw, err := r.eval.CallScript(ctx, ScriptDescribe, string(h))
	if err != nil {
		return Descriptor{}, unexpected("resolve", err)
	}

	var result struct {
		Status string `json:"status"`
		Descriptor
	}
	if err := codec.Unmarshal(raw, &result); err != nil {
		return Descriptor{}, unexpected("resolve", fmt.Errorf("decoding describe result: %w", err))
	}
	if result.Status != "ok" {
		r.purge(h)
		return Descriptor{}, &StaleHandleError{Handle: h}
	}
	return result.Descriptor, nil
}

// purge removes a handle that turned out stale. Observable only through the
// registry's own state.
func (r *Registry) purge(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.known, h)
}

// outlineMax bounds the element outline handed to the decision process.
const outlineMax = 50

// FormatOutline renders enumeration entries as the compact per-line summary
// the decision process consumes, capped at outlineMax lines.
func FormatOutline(entries []Entry) string {
	var sb strings.Builder
	shown := len(entries)
	if shown > outlineMax {
		shown = outlineMax
		fmt.Fprintf(&sb, "Found %d interactive elements. Showing top %d:\n", len(entries), outlineMax)
	}

	for _, e := range entries[:shown] {
		sb.WriteString(formatEntry(e))
		sb.WriteByte('\n')
	}
	if len(entries) > shown {
		fmt.Fprintf(&sb, "... and %d more elements.\n", len(entries)-shown)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatEntry(e Entry) string {
	label := e.Tag
	if e.ID != "" {
		id := e.ID
		if len(id) > 25 {
			id = id[:25]
		}
		label += "#" + id
	}
	if e.Type != "" {
		label += "[" + e.Type + "]"
	}

	switch {
	case e.Tag == "input" || e.Tag == "textarea":
		var info []string
		if e.Placeholder != "" {
			p := e.Placeholder
			if len(p) > 30 {
				p = p[:30]
			}
			info = append(info, fmt.Sprintf("placeholder=%q", p))
		}
		if e.Value != "" {
			info = append(info, fmt.Sprintf("value=%q", e.Value))
		}
		if len(info) == 0 {
			info = append(info, "empty")
		}
		return fmt.Sprintf("%s: (%d,%d) %s: [%s]", e.Handle, e.X, e.Y, label, strings.Join(info, " "))
	case e.Tag == "select":
		text := e.Text
		if text == "" {
			text = e.SelectedText
		}
		if text == "" {
			text = "no selection"
		}
		return fmt.Sprintf("%s: (%d,%d) %s [dropdown]: %s", e.Handle, e.X, e.Y, label, text)
	default:
		mark := ""
		if e.Dropdown {
			if e.Expanded {
				mark = " [dropdown OPEN]"
			} else {
				mark = " [dropdown]"
			}
		}
		return fmt.Sprintf("%s: (%d,%d) %s%s: %s", e.Handle, e.X, e.Y, label, mark, e.Text)
	}
}
