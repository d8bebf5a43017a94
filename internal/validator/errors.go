package validator

import (
	"errors"

	"github.com/yanizio/reqschema/internal/schema"
)

// Kind classifies a failed validation call.
type Kind string

const (
	KindConfig  Kind = "config"  // schema requested by name, no schemaPath
	KindIO      Kind = "io"      // schema file missing or unreadable
	KindParse   Kind = "parse"   // schema file is not valid JSON (or YAML)
	KindCompile Kind = "compile" // schema document rejected by the engine
	KindEngine  Kind = "engine"  // engine failed while evaluating data
)

// ErrNotInitialized is the configuration error returned when a schema is
// requested by file name before a schema directory is configured.
var ErrNotInitialized = schema.ErrNoSchemaPath

// Error is the single error type returned by Validate.  Its message is the
// message of the underlying failure, unchanged, so callers that only look at
// text see the same string whatever the kind.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// KindOf reports the kind of err, or "" when err is not a *Error.
func KindOf(err error) Kind {
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Kind
	}
	return ""
}

// classifyLoad maps a schema loader failure onto a Kind.
func classifyLoad(err error) *Error {
	var pe *schema.ParseError
	switch {
	case errors.Is(err, schema.ErrNoSchemaPath):
		return &Error{Kind: KindConfig, Err: err}
	case errors.As(err, &pe):
		return &Error{Kind: KindParse, Err: err}
	default: // *fs.PathError and friends
		return &Error{Kind: KindIO, Err: err}
	}
}
