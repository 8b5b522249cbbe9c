package agent

import (
	"fmt"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

// Action is one step the decision process asks for, parsed from the model's
// strict-JSON reply.
type Action struct {
	// Op is one of: navigate, click, click_at, fill, type, press, scroll,
	// wait, extract, sequence, done.
	Op        string   `json:"op"`
	Handle    string   `json:"handle,omitempty"`
	Value     string   `json:"value,omitempty"`
	URL       string   `json:"url,omitempty"`
	Key       string   `json:"key,omitempty"`
	Direction string   `json:"direction,omitempty"`
	X         float64  `json:"x,omitempty"`
	Y         float64  `json:"y,omitempty"`
	Seconds   float64  `json:"seconds,omitempty"`
	Lines     []string `json:"lines,omitempty"`
	// Submit marks a click that would finally submit an application.
	Submit  bool   `json:"submit,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Summary string `json:"summary,omitempty"`
}

// ParseAction extracts the JSON action from a model reply. Models wrap JSON
// in markdown fences or prose despite instructions; everything outside the
// outermost braces is discarded.
func ParseAction(raw string) (Action, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return Action{}, fmt.Errorf("reply contains no JSON object")
	}

	var action Action
	if err := codec.Unmarshal([]byte(raw[start:end+1]), &action); err != nil {
		return Action{}, fmt.Errorf("decoding action JSON: %w", err)
	}
	if action.Op == "" {
		return Action{}, fmt.Errorf("action is missing \"op\"")
	}
	return action, nil
}

// ParseSequenceLine parses one line of the batch DSL into an Action:
//
//	click h_12
//	fill h_9 Remote (US only)
//	type jane@example.com
//	press Enter
//	wait 2
//	scroll down
func ParseSequenceLine(line string) (Action, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Action{}, fmt.Errorf("empty sequence line")
	}

	op := strings.ToLower(fields[0])
	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0]))

	switch op {
	case "click":
		if rest == "" {
			return Action{}, fmt.Errorf("click needs a handle")
		}
		return Action{Op: "click", Handle: rest}, nil
	case "fill":
		if len(fields) < 3 {
			return Action{}, fmt.Errorf("fill needs a handle and a value")
		}
		value := strings.TrimSpace(strings.TrimPrefix(rest, fields[1]))
		return Action{Op: "fill", Handle: fields[1], Value: value}, nil
	case "type":
		if rest == "" {
			return Action{}, fmt.Errorf("type needs text")
		}
		return Action{Op: "type", Value: rest}, nil
	case "press":
		if rest == "" {
			return Action{}, fmt.Errorf("press needs a key name")
		}
		return Action{Op: "press", Key: rest}, nil
	case "wait":
		if rest == "" {
			return Action{}, fmt.Errorf("wait needs a duration in seconds")
		}
		secs, err := strconv.ParseFloat(rest, 64)
		if err != nil {
			return Action{}, fmt.Errorf("bad wait duration %q", rest)
		}
		return Action{Op: "wait", Seconds: secs}, nil
	case "scroll":
		if rest == "" {
			rest = "down"
		}
		return Action{Op: "scroll", Direction: rest}, nil
	default:
		return Action{}, fmt.Errorf("unknown sequence op %q", fields[0])
	}
}
