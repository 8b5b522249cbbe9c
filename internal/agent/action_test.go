package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAction(t *testing.T) {
	action, err := ParseAction(`{"op":"click","handle":"h_12","reason":"open the posting"}`)
	require.NoError(t, err)
	assert.Equal(t, "click", action.Op)
	assert.Equal(t, "h_12", action.Handle)
	assert.Equal(t, "open the posting", action.Reason)
}

func TestParseActionStripsMarkdownFences(t *testing.T) {
	raw := "Sure, here is the action:\n```json\n{\"op\":\"fill\",\"handle\":\"h_9\",\"value\":\"Remote\"}\n```\n"
	action, err := ParseAction(raw)
	require.NoError(t, err)
	assert.Equal(t, "fill", action.Op)
	assert.Equal(t, "Remote", action.Value)
}

func TestParseActionErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"no json", "I would click the button."},
		{"missing op", `{"handle":"h_1"}`},
		{"broken json", "{\"op\": \"click\""},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAction(tt.raw)
			assert.Error(t, err)
		})
	}
}

func TestParseSequenceLine(t *testing.T) {
	tests := []struct {
		line string
		want Action
	}{
		{"click h_12", Action{Op: "click", Handle: "h_12"}},
		{"fill h_9 Remote (US only)", Action{Op: "fill", Handle: "h_9", Value: "Remote (US only)"}},
		{"type jane@example.com", Action{Op: "type", Value: "jane@example.com"}},
		{"press Enter", Action{Op: "press", Key: "Enter"}},
		{"press ctrl+a", Action{Op: "press", Key: "ctrl+a"}},
		{"wait 2", Action{Op: "wait", Seconds: 2}},
		{"wait 0.5", Action{Op: "wait", Seconds: 0.5}},
		{"scroll down", Action{Op: "scroll", Direction: "down"}},
		{"scroll", Action{Op: "scroll", Direction: "down"}},
		{"  click   h_3  ", Action{Op: "click", Handle: "h_3"}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := ParseSequenceLine(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSequenceLineErrors(t *testing.T) {
	for _, line := range []string{"", "click", "fill h_9", "press", "wait", "wait soon", "hover h_1"} {
		t.Run(line, func(t *testing.T) {
			_, err := ParseSequenceLine(line)
			assert.Error(t, err)
		})
	}
}
