package dom

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspect(t *testing.T) {
	ctx := context.Background()
	input := textInput("email", "Email address")
	input.value = "a@b.co"
	page := newFakePage(input)
	reg := NewRegistry(page)
	insp := NewInspector(reg)

	byID, err := enumerateHandles(ctx, reg)
	require.NoError(t, err)
	h := byID["email"]

	snap, err := insp.Inspect(ctx, h)
	require.NoError(t, err)

	assert.Equal(t, h, snap.Handle)
	assert.Equal(t, "input", snap.Tag)
	assert.Equal(t, "email", snap.ID)
	assert.Equal(t, "text", snap.InputType)
	assert.Equal(t, "a@b.co", snap.Value)
	assert.Equal(t, 200, snap.X)
	assert.Equal(t, 115, snap.Y)
	assert.Equal(t, Rect{Left: 100, Top: 100, Width: 200, Height: 30}, snap.Rect)
	assert.True(t, snap.IsVisible)
	assert.True(t, snap.IsInteractable)
	assert.False(t, snap.IsDropdown)
}

func TestInspectDisabledIsVisibleNotInteractable(t *testing.T) {
	ctx := context.Background()
	input := textInput("email", "")
	input.disabled = true
	page := newFakePage(input)
	reg := NewRegistry(page)
	insp := NewInspector(reg)

	byID, err := enumerateHandles(ctx, reg)
	require.NoError(t, err)

	snap, err := insp.Inspect(ctx, byID["email"])
	require.NoError(t, err)
	assert.True(t, snap.IsVisible)
	assert.False(t, snap.IsInteractable)
}

func TestInspectHiddenElement(t *testing.T) {
	ctx := context.Background()
	input := textInput("email", "")
	page := newFakePage(input)
	reg := NewRegistry(page)
	insp := NewInspector(reg)

	byID, err := enumerateHandles(ctx, reg)
	require.NoError(t, err)

	// Hidden after enumeration: the handle stays live but the snapshot
	// reports it as neither visible nor interactable.
	input.styled = false
	snap, err := insp.Inspect(ctx, byID["email"])
	require.NoError(t, err)
	assert.False(t, snap.IsVisible)
	assert.False(t, snap.IsInteractable)
}

func TestInspectDropdownSignals(t *testing.T) {
	ctx := context.Background()
	sel := selectBox("mode", OptionData{Value: "remote", Text: "Remote"})
	combo := textInput("search", "")
	combo.role = "combobox"
	popupBtn := &fakeElement{
		tag: "button", id: "filters", text: "Filters", connected: true, styled: true,
		left: 400, top: 40, width: 90, height: 32,
		ariaHasPopup: "true", ariaExpanded: "true",
	}
	page := newFakePage(sel, combo, popupBtn)
	reg := NewRegistry(page)
	insp := NewInspector(reg)

	byID, err := enumerateHandles(ctx, reg)
	require.NoError(t, err)

	for _, id := range []string{"mode", "search", "filters"} {
		snap, err := insp.Inspect(ctx, byID[id])
		require.NoError(t, err)
		assert.Truef(t, snap.IsDropdown, "%s should read as a dropdown", id)
	}

	snap, err := insp.Inspect(ctx, byID["filters"])
	require.NoError(t, err)
	assert.True(t, snap.IsExpanded)

	snap, err = insp.Inspect(ctx, byID["mode"])
	require.NoError(t, err)
	assert.False(t, snap.IsExpanded)
}

// Inspection is read-only: two snapshots of an untouched element are
// identical, and nothing about the element changes between them.
func TestInspectIsIdempotent(t *testing.T) {
	ctx := context.Background()
	page := newFakePage(textInput("email", "Email"))
	reg := NewRegistry(page)
	insp := NewInspector(reg)

	byID, err := enumerateHandles(ctx, reg)
	require.NoError(t, err)
	h := byID["email"]

	first, err := insp.Inspect(ctx, h)
	require.NoError(t, err)
	second, err := insp.Inspect(ctx, h)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("snapshots differ (-first +second):\n%s", diff)
	}
}

func TestInspectStale(t *testing.T) {
	ctx := context.Background()
	input := textInput("email", "")
	page := newFakePage(input)
	reg := NewRegistry(page)
	insp := NewInspector(reg)

	byID, err := enumerateHandles(ctx, reg)
	require.NoError(t, err)
	h := byID["email"]

	input.connected = false
	_, err = insp.Inspect(ctx, h)
	assert.True(t, IsStale(err))
	assert.False(t, reg.Known(h))

	// Unknown handles short-circuit without touching the page.
	_, err = insp.Inspect(ctx, "h_404")
	assert.True(t, IsStale(err))
}

func TestInspectPanicIsContained(t *testing.T) {
	reg := NewRegistry(panicEvaluator{})
	reg.known["h_1"] = struct{}{}
	insp := NewInspector(reg)

	_, err := insp.Inspect(context.Background(), "h_1")
	require.Error(t, err)
	var unexp *UnexpectedError
	require.ErrorAs(t, err, &unexp)
	assert.Equal(t, "inspect", unexp.Op)
}
