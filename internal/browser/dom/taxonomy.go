package dom

import (
	"fmt"
	"strconv"
	"strings"
)

// Taxonomy classifies a form control by how values are assigned to it and
// which synthetic events its host page expects to observe. Classification is
// computed once per fill from static attributes and dispatched exhaustively;
// the ordering of the checks in Classify is a contract (a native <select>
// must win before any generic input handling).
type Taxonomy int

const (
	TaxonomyUnsupported Taxonomy = iota
	TaxonomySelection
	TaxonomyCheckbox
	TaxonomyRadio
	TaxonomyDateTime
	TaxonomyNumeric
	TaxonomyText
	TaxonomyContentEditable
)

func (t Taxonomy) String() string {
	switch t {
	case TaxonomySelection:
		return "select"
	case TaxonomyCheckbox:
		return "checkbox"
	case TaxonomyRadio:
		return "radio"
	case TaxonomyDateTime:
		return "datetime"
	case TaxonomyNumeric:
		return "number"
	case TaxonomyText:
		return "text"
	case TaxonomyContentEditable:
		return "contenteditable"
	default:
		return "unsupported"
	}
}

// dateTimeTypes is the native date/time input family. Values are assigned
// verbatim; the browser silently rejects malformed ones.
var dateTimeTypes = map[string]bool{
	"date":           true,
	"time":           true,
	"datetime-local": true,
	"month":          true,
	"week":           true,
}

// Classify maps an element descriptor to its input taxonomy. First match
// wins, in this order: select, checkbox, radio, date/time family, numeric
// family, text-like input or textarea, contenteditable region.
func Classify(d Descriptor) Taxonomy {
	tag := strings.ToLower(d.Tag)
	typ := strings.ToLower(d.InputType)

	switch {
	case tag == "select":
		return TaxonomySelection
	case tag == "input" && typ == "checkbox":
		return TaxonomyCheckbox
	case tag == "input" && typ == "radio":
		return TaxonomyRadio
	case tag == "input" && dateTimeTypes[typ]:
		return TaxonomyDateTime
	case tag == "input" && (typ == "number" || typ == "range"):
		return TaxonomyNumeric
	case tag == "input" || tag == "textarea":
		return TaxonomyText
	case d.ContentEditable:
		return TaxonomyContentEditable
	default:
		return TaxonomyUnsupported
	}
}

// truthy coerces a fill value to a checkbox state. The truthy set is closed:
// boolean true, numeric 1, and the string "true" (or "1"). Everything else is
// false, by contract, not an error.
func truthy(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return strings.EqualFold(val, "true") || val == "1"
	case int:
		return val == 1
	case int64:
		return val == 1
	case float64:
		return val == 1
	default:
		return false
	}
}

// stringify renders a fill value the way the page will see it. Floats use the
// shortest exact representation so numeric fills do not grow stray zeros.
func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case nil:
		return ""
	default:
		return fmt.Sprint(val)
	}
}

// parseNumeric coerces a fill value for number/range inputs, normalizing the
// textual representation. A value that does not parse is a TypeMismatch.
func parseNumeric(v any) (string, bool) {
	switch val := v.(type) {
	case int, int64, float64, float32:
		return stringify(val), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return "", false
		}
		return strconv.FormatFloat(f, 'f', -1, 64), true
	default:
		return "", false
	}
}

// optionPreviewLimit bounds how many option texts an OptionNotFoundError
// carries back to the caller.
const optionPreviewLimit = 10

// matchOption finds the first option whose value equals the requested value
// (case-insensitive) or whose display text contains it (case-insensitive), in
// document order.
func matchOption(options []OptionData, value string) (int, bool) {
	needle := strings.ToLower(strings.TrimSpace(value))
	for i, opt := range options {
		if strings.EqualFold(opt.Value, value) {
			return i, true
		}
		if needle != "" && strings.Contains(strings.ToLower(opt.Text), needle) {
			return i, true
		}
	}
	return 0, false
}

// optionPreview collects up to optionPreviewLimit display texts for failure
// reporting, falling back to the option value when the text is empty.
func optionPreview(options []OptionData) (texts []string, truncated bool) {
	for _, opt := range options {
		if len(texts) >= optionPreviewLimit {
			return texts, true
		}
		text := opt.Text
		if text == "" {
			text = opt.Value
		}
		texts = append(texts, text)
	}
	return texts, false
}
