package dom

import (
	"context"
	"fmt"
)

// FillResult is the outcome of a successful value injection.
type FillResult struct {
	Handle   Handle
	Taxonomy Taxonomy
	Previous string
	Current  string
	Message  string
}

// fillPlan is the page-side mutation computed in Go: what to assign, whether
// to move the caret, and which events to dispatch afterwards. Keeping the
// plan a plain value keeps the ordering and coercion contracts testable
// without a browser.
type fillPlan struct {
	// Assign selects the assignment target: "value", "checked",
	// "selectedIndex", or "text" (textContent for contenteditable regions).
	Assign     string   `json:"assign"`
	Value      any      `json:"value"`
	CaretToEnd bool     `json:"caretToEnd"`
	Events     []string `json:"events"`
}

// eventsChangeInput is the event order for native form controls: change
// first, then input. Pages listen for change to trigger validation and input
// to trigger live UI updates; dispatching both, in this order, satisfies
// either listener style.
func eventsChangeInput() []string { return []string{"change", "input"} }

// Injector performs type-correct value assignment against registered
// handles. It classifies the target once per call from static attributes and
// dispatches over the closed taxonomy; classification order follows the
// resolution rules in Classify.
type Injector struct {
	reg *Registry
}

// NewInjector creates an injector over the given registry.
func NewInjector(reg *Registry) *Injector {
	return &Injector{reg: reg}
}

// Fill assigns value to the element behind handle. value may be a string,
// number, or boolean; coercion per taxonomy happens here, not in the caller.
// All failure modes surface as the package's typed errors and nothing is
// mutated when plan construction fails (a TypeMismatch leaves the element's
// value untouched). Fill never panics past its boundary.
func (inj *Injector) Fill(ctx context.Context, h Handle, value any) (res FillResult, err error) {
	defer recoverGuard("fill", &err)

	desc, descErr := inj.reg.describe(ctx, h)
	if descErr != nil {
		return FillResult{}, descErr
	}

	tax := Classify(desc)
	plan, planErr := buildPlan(h, tax, desc, value)
	if planErr != nil {
		return FillResult{}, planErr
	}

	raw, callErr := inj.reg.eval.CallScript(ctx, ScriptApplyFill, string(h), plan)
	if callErr != nil {
		return FillResult{}, unexpected("fill", callErr)
	}

	var result struct {
		Status   string `json:"status"`
		Previous string `json:"previous"`
		Current  string `json:"current"`
	}
	if jsonErr := codec.Unmarshal(raw, &result); jsonErr != nil {
		return FillResult{}, unexpected("fill", fmt.Errorf("decoding fill result: %w", jsonErr))
	}
	if result.Status != "ok" {
		inj.reg.purge(h)
		return FillResult{}, &StaleHandleError{Handle: h}
	}

	return FillResult{
		Handle:   h,
		Taxonomy: tax,
		Previous: result.Previous,
		Current:  result.Current,
		Message:  fmt.Sprintf("set %s %s to %q", tax, h, result.Current),
	}, nil
}

// buildPlan maps (taxonomy, value) to the page-side mutation. Exhaustive over
// the taxonomy; each branch owns its coercion rules.
func buildPlan(h Handle, tax Taxonomy, desc Descriptor, value any) (fillPlan, error) {
	switch tax {
	case TaxonomySelection:
		idx, ok := matchOption(desc.Options, stringify(value))
		if !ok {
			choices, truncated := optionPreview(desc.Options)
			return fillPlan{}, &OptionNotFoundError{
				Handle:    h,
				Value:     stringify(value),
				Choices:   choices,
				Truncated: truncated,
			}
		}
		return fillPlan{Assign: "selectedIndex", Value: idx, Events: eventsChangeInput()}, nil

	case TaxonomyCheckbox:
		return fillPlan{Assign: "checked", Value: truthy(value), Events: eventsChangeInput()}, nil

	case TaxonomyRadio:
		// Radios cannot be unchecked by filling; selecting one is the only
		// supported operation.
		return fillPlan{Assign: "checked", Value: true, Events: eventsChangeInput()}, nil

	case TaxonomyDateTime:
		// Assigned verbatim, no format validation: the browser silently
		// rejects values the control cannot represent, and the result then
		// reports whatever value stuck.
		return fillPlan{Assign: "value", Value: stringify(value), Events: eventsChangeInput()}, nil

	case TaxonomyNumeric:
		normalized, ok := parseNumeric(value)
		if !ok {
			return fillPlan{}, &TypeMismatchError{Handle: h, Value: stringify(value), Want: tax}
		}
		return fillPlan{Assign: "value", Value: normalized, Events: eventsChangeInput()}, nil

	case TaxonomyText:
		// Caret moves to the end so pages that truncate display from the
		// caret position show the tail of long values.
		return fillPlan{
			Assign:     "value",
			Value:      stringify(value),
			CaretToEnd: true,
			Events:     eventsChangeInput(),
		}, nil

	case TaxonomyContentEditable:
		// No native value, no native change semantics: textContent plus a
		// lone input event.
		return fillPlan{Assign: "text", Value: stringify(value), Events: []string{"input"}}, nil

	default:
		return fillPlan{}, &UnsupportedElementError{Handle: h, Tag: desc.Tag}
	}
}
