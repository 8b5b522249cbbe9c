package agent

import (
	"fmt"
	"strings"
)

const actionContract = `Reply with ONE action as a single JSON object and nothing else.
Actions:
  {"op":"navigate","url":"..."}                     load a page
  {"op":"click","handle":"h_12"}                    click an element from the outline
  {"op":"fill","handle":"h_9","value":"..."}        set a form control's value
  {"op":"type","value":"..."}                       type into the focused element
  {"op":"press","key":"enter"}                      press a key (enter, tab, esc, ctrl+a, ...)
  {"op":"scroll","direction":"down"}                scroll (up, down, top, bottom)
  {"op":"wait","seconds":2}                         wait for the page to settle
  {"op":"extract"}                                  extract job listings from this page
  {"op":"screenshot"}                               save a screenshot of the viewport
  {"op":"sequence","lines":["click h_12","fill h_9 Remote","press enter"]}
  {"op":"done","summary":"..."}                     goal reached; summarize the outcome
Add a short "reason" to every action. Handles come from the element outline
below; after any navigation or page change the old handles are void.`

const navigatorSystem = `You operate a web browser to find job listings on a job board.
Work step by step: search, apply filters, scan results, paginate, and use
{"op":"extract"} on every results page worth keeping. Finish with "done" and
a summary of what was collected.
` + actionContract

const applicantSystem = `You operate a web browser to fill a job application form.
Use only the applicant profile values given; never invent an answer, and skip
fields the profile cannot answer. Fill visible fields, then scroll to reveal
more. Mark the one click that would finally submit the application with
"submit": true and only take it when everything else is complete.
` + actionContract

const intentSystem = `Classify a job-search request. Reply with a single JSON object:
{"kind":"search"|"apply","query":"<normalized search terms>"}
"apply" only when the user asks to apply, not just to find listings.`

// stepPrompt renders the per-step situation block handed to the model.
func stepPrompt(goal, extra, url, title, outline string, history []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "GOAL: %s\n", goal)
	if extra != "" {
		sb.WriteString(extra)
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "\nCURRENT PAGE: %s (%s)\n", title, url)
	if len(history) > 0 {
		sb.WriteString("\nRECENT STEPS:\n")
		for _, h := range history {
			sb.WriteString(h)
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\nELEMENT OUTLINE:\n")
	sb.WriteString(outline)
	sb.WriteString("\n\nNext action?")
	return sb.String()
}
