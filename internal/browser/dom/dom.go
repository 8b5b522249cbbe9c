// Package dom implements the element-handle lifecycle and form-injection
// engine: a per-document registry of weakly-held element handles, an
// inspector that measures geometry, visibility, and interactability, and an
// injector that performs type-correct value assignment with the synthetic
// events pages expect from a real user edit.
//
// All state is scoped to one document. Operations are single-shot
// request/response with no internal retries; failures are structured values
// the calling decision process acts on.
package dom

import jsoniter "github.com/json-iterator/go"

var codec = jsoniter.ConfigCompatibleWithStandardLibrary
