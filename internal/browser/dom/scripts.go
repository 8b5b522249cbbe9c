package dom

import (
	"context"
	_ "embed"
	"encoding/json"
)

// Script is one of the embedded page-side functions. Each file under scripts/
// is a single function expression; the Evaluator applies it to JSON-encoded
// arguments inside the live document.
type Script string

//go:embed scripts/bootstrap.js
var scriptBootstrap string

//go:embed scripts/enumerate.js
var scriptEnumerate string

//go:embed scripts/describe.js
var scriptDescribe string

//go:embed scripts/inspect.js
var scriptInspect string

//go:embed scripts/apply_fill.js
var scriptApplyFill string

var (
	// ScriptBootstrap installs the per-document handle table.
	ScriptBootstrap = Script(scriptBootstrap)
	// ScriptEnumerate scans the viewport for interactive elements and
	// registers a handle for each; the sole writer of new table entries.
	ScriptEnumerate = Script(scriptEnumerate)
	// ScriptDescribe resolves a handle and reports the static attributes the
	// injector classifies on.
	ScriptDescribe = Script(scriptDescribe)
	// ScriptInspect resolves a handle, scrolls it into view, and measures it.
	ScriptInspect = Script(scriptInspect)
	// ScriptApplyFill resolves a handle and applies a fill plan to it.
	ScriptApplyFill = Script(scriptApplyFill)
)

// Evaluator executes an embedded script inside the current document and
// returns its JSON-encoded result. The browser session implements this over
// CDP; tests substitute an in-memory page model.
type Evaluator interface {
	CallScript(ctx context.Context, script Script, args ...any) (json.RawMessage, error)
}
