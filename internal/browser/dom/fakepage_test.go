package dom

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
)

// fakePage is an in-memory stand-in for a live document. It implements
// Evaluator by simulating what each embedded script does against a set of
// fakeElement values, including handle issuance, staleness on detach, and the
// browser's silent rejection of malformed date/time values.
type fakePage struct {
	seq     int
	refs    map[string]*fakeElement
	doc     []*fakeElement
	width   float64
	height  float64
	callErr error
	// afterDescribe, when set, runs after each describe call; lets tests
	// mutate the page between classification and application.
	afterDescribe func()
	// bubbled records events in the order an ancestor listener would observe
	// them; fills dispatch bubbling events so a container sees every one.
	bubbled []string
}

type fakeElement struct {
	tag             string
	id              string
	role            string
	inputType       string
	text            string
	placeholder     string
	value           string
	contentEditable bool
	disabled        bool
	checked         bool
	connected       bool
	styled          bool // visibility/display not hidden
	options         []OptionData
	selectedIndex   int
	ariaHasPopup    string
	ariaExpanded    string
	left, top       float64
	width, height   float64
	events          []string
	focused         bool
	caret           int
}

func newFakePage(elems ...*fakeElement) *fakePage {
	return &fakePage{
		refs:   make(map[string]*fakeElement),
		doc:    elems,
		width:  1280,
		height: 800,
	}
}

func textInput(id, placeholder string) *fakeElement {
	return &fakeElement{
		tag: "input", inputType: "text", id: id, placeholder: placeholder,
		connected: true, styled: true,
		left: 100, top: 100, width: 200, height: 30,
	}
}

func typedInput(id, typ string) *fakeElement {
	e := textInput(id, "")
	e.inputType = typ
	return e
}

func selectBox(id string, options ...OptionData) *fakeElement {
	return &fakeElement{
		tag: "select", id: id, options: options, connected: true, styled: true,
		left: 100, top: 160, width: 200, height: 30,
	}
}

func (el *fakeElement) hasValueProp() bool {
	switch el.tag {
	case "input", "textarea", "select":
		return true
	}
	return false
}

func (el *fakeElement) read() string {
	if el.hasValueProp() {
		return el.value
	}
	return el.text
}

var fakeDatePatterns = map[string]*regexp.Regexp{
	"date":           regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),
	"month":          regexp.MustCompile(`^\d{4}-\d{2}$`),
	"week":           regexp.MustCompile(`^\d{4}-W\d{2}$`),
	"time":           regexp.MustCompile(`^\d{2}:\d{2}(:\d{2})?$`),
	"datetime-local": regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}`),
}

// setValue mimics value assignment on a native control: date/time inputs
// silently keep their prior value when the new one is malformed.
func (el *fakeElement) setValue(v string) {
	if re, ok := fakeDatePatterns[el.inputType]; ok && v != "" && !re.MatchString(v) {
		return
	}
	el.value = v
}

func (el *fakeElement) dropdown() bool {
	return (el.ariaHasPopup != "" && el.ariaHasPopup != "false") ||
		el.ariaExpanded != "" ||
		el.role == "combobox" || el.role == "listbox" || el.role == "menu" || el.role == "menubutton" ||
		el.tag == "select"
}

func (p *fakePage) resolve(handle string) *fakeElement {
	el, ok := p.refs[handle]
	if !ok || !el.connected {
		delete(p.refs, handle)
		return nil
	}
	return el
}

func (p *fakePage) CallScript(_ context.Context, script Script, args ...any) (json.RawMessage, error) {
	if p.callErr != nil {
		err := p.callErr
		p.callErr = nil
		return nil, err
	}

	switch script {
	case ScriptBootstrap:
		return json.Marshal(true)
	case ScriptEnumerate:
		return json.Marshal(p.enumerate())
	case ScriptDescribe:
		out := p.describe(args[0].(string))
		if p.afterDescribe != nil {
			p.afterDescribe()
		}
		return json.Marshal(out)
	case ScriptInspect:
		return json.Marshal(p.inspect(args[0].(string)))
	case ScriptApplyFill:
		return json.Marshal(p.applyFill(args[0].(string), args[1]))
	default:
		return nil, fmt.Errorf("unknown script")
	}
}

func (p *fakePage) enumerate() []map[string]any {
	entries := []map[string]any{}
	for _, el := range p.doc {
		if !el.connected || !el.styled || el.width <= 0 || el.height <= 0 {
			continue
		}
		x := el.left + el.width/2
		y := el.top + el.height/2
		if y < -100 || y > p.height+100 || x < -100 || x > p.width+100 {
			continue
		}
		isForm := el.tag == "input" || el.tag == "textarea" || el.tag == "select"
		if el.text == "" && !isForm {
			continue
		}

		p.seq++
		handle := fmt.Sprintf("h_%d", p.seq)
		p.refs[handle] = el

		selectedText := ""
		if el.tag == "select" && el.selectedIndex >= 0 && el.selectedIndex < len(el.options) {
			selectedText = el.options[el.selectedIndex].Text
		}
		entries = append(entries, map[string]any{
			"handle":       handle,
			"tag":          el.tag,
			"id":           el.id,
			"type":         el.inputType,
			"text":         el.text,
			"placeholder":  el.placeholder,
			"value":        el.value,
			"x":            int(x),
			"y":            int(y),
			"dropdown":     el.dropdown(),
			"expanded":     el.ariaExpanded == "true",
			"selectedText": selectedText,
		})
	}
	return entries
}

func (p *fakePage) describe(handle string) map[string]any {
	el := p.resolve(handle)
	if el == nil {
		return map[string]any{"status": "stale"}
	}
	options := []OptionData{}
	if el.tag == "select" {
		options = el.options
	}
	return map[string]any{
		"status":          "ok",
		"tag":             el.tag,
		"type":            el.inputType,
		"contentEditable": el.contentEditable,
		"disabled":        el.disabled,
		"checked":         el.checked,
		"value":           el.read(),
		"options":         options,
	}
}

func (p *fakePage) inspect(handle string) map[string]any {
	el := p.resolve(handle)
	if el == nil {
		return map[string]any{"status": "stale"}
	}
	visible := el.styled && el.width > 0 && el.height > 0
	return map[string]any{
		"status": "ok",
		"tag":    el.tag,
		"id":     el.id,
		"role":   el.role,
		"type":   el.inputType,
		"text":   el.text,
		"value":  el.read(),
		"x":      int(el.left + el.width/2),
		"y":      int(el.top + el.height/2),
		"rect": map[string]float64{
			"left": el.left, "top": el.top, "width": el.width, "height": el.height,
		},
		"isVisible":      visible,
		"isInteractable": visible && !el.disabled,
		"isDropdown":     el.dropdown(),
		"isExpanded":     el.ariaExpanded == "true",
	}
}

func (p *fakePage) applyFill(handle string, rawPlan any) map[string]any {
	el := p.resolve(handle)
	if el == nil {
		return map[string]any{"status": "stale"}
	}

	// Round-trip the plan through JSON the same way the wire does.
	var plan struct {
		Assign     string   `json:"assign"`
		Value      any      `json:"value"`
		CaretToEnd bool     `json:"caretToEnd"`
		Events     []string `json:"events"`
	}
	buf, err := json.Marshal(rawPlan)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(buf, &plan); err != nil {
		panic(err)
	}

	previous := el.read()
	el.focused = true

	switch plan.Assign {
	case "selectedIndex":
		idx := int(plan.Value.(float64))
		el.selectedIndex = idx
		if idx >= 0 && idx < len(el.options) {
			el.value = el.options[idx].Value
		}
	case "checked":
		el.checked = plan.Value == true
	case "text":
		el.text = fmt.Sprint(plan.Value)
	default:
		el.setValue(fmt.Sprint(plan.Value))
	}

	if plan.CaretToEnd && (el.tag == "input" || el.tag == "textarea") {
		el.caret = len(el.value)
	}
	for _, typ := range plan.Events {
		el.events = append(el.events, typ)
		p.bubbled = append(p.bubbled, handle+":"+typ)
	}

	return map[string]any{"status": "ok", "previous": previous, "current": el.read()}
}

// enumerateHandles runs an enumeration pass and returns the handle of the
// element whose id matches, failing the lookup with an empty handle.
func enumerateHandles(ctx context.Context, r *Registry) (map[string]Handle, error) {
	entries, err := r.Enumerate(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]Handle, len(entries))
	for _, e := range entries {
		if e.ID != "" {
			byID[e.ID] = e.Handle
		}
	}
	return byID, nil
}

// panicEvaluator panics on every call; used to prove the recover guard turns
// internal faults into UnexpectedError values.
type panicEvaluator struct{}

func (panicEvaluator) CallScript(context.Context, Script, ...any) (json.RawMessage, error) {
	panic("page evaluator exploded")
}
