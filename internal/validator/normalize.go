package validator

import (
	"fmt"
	"strings"
)

// UnknownMessage is used when the engine supplies an empty message.
const UnknownMessage = "unknown error message"

// ErrorObject is the simplified, client-facing form of one engine error.
type ErrorObject struct {
	Message  string `json:"message"`
	Property string `json:"property,omitempty"`
	Path     string `json:"path,omitempty"`
}

// combinatorKeywords select between sub-schemas.  Their errors only say that
// a branch failed; the leaf errors of that branch are reported separately.
var combinatorKeywords = map[string]bool{
	"if":    true,
	"anyOf": true,
	"allOf": true,
	"oneOf": true,
}

// propertyParams names, per keyword, the param that holds the offending
// property.  Keywords without an entry take the property from the instance
// path instead.
var propertyParams = map[string]string{
	"required":              "missingProperty",
	"dependencies":          "missingProperty",
	"dependentRequired":     "missingProperty",
	"additionalProperties":  "additionalProperty",
	"propertyNames":         "propertyName",
	"unevaluatedProperties": "unevaluatedProperty",
}

// Normalize rewrites engine errors into ErrorObjects, dropping combinator
// errors and keeping the engine's order.  The result is never nil.
func Normalize(errs []EngineError) []ErrorObject {
	out := make([]ErrorObject, 0, len(errs))
	for _, e := range errs {
		if obj, ok := normalizeOne(e); ok {
			out = append(out, obj)
		}
	}
	return out
}

func normalizeOne(e EngineError) (ErrorObject, bool) {
	if combinatorKeywords[e.Keyword] {
		return ErrorObject{}, false
	}

	property := ""
	path := e.InstancePath
	if name, ok := propertyParams[e.Keyword]; ok {
		property = paramString(e.Params[name])
	}
	if property == "" {
		property, path = splitLast(e.InstancePath)
	}

	msg := e.Message
	if msg == "" {
		msg = UnknownMessage
	}
	return ErrorObject{Message: msg, Property: property, Path: path}, true
}

// splitLast splits "/a/b/c" into ("c", "/a/b").  A path without a slash is
// all property.
func splitLast(p string) (last, prefix string) {
	i := strings.LastIndex(p, "/")
	if i < 0 {
		return p, ""
	}
	return p[i+1:], p[:i]
}

func paramString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
