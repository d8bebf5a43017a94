package validator

import "encoding/json"

// Source names the schema a call validates against: a file under the
// configured schema directory, or a schema document held by the caller.
type Source struct {
	name   string
	doc    any
	byName bool
}

// ByFilename refers to a schema file relative to Options.SchemaPath.
func ByFilename(name string) Source { return Source{name: name, byName: true} }

// ByDocument wraps an in-memory schema.  doc may be a decoded JSON value or
// raw JSON text ([]byte, json.RawMessage).
func ByDocument(doc any) Source { return Source{doc: doc} }

// Filename returns the schema file name for ByFilename sources.
func (s Source) Filename() (string, bool) { return s.name, s.byName }

// Document returns the schema document for ByDocument sources.
func (s Source) Document() (any, bool) { return s.doc, !s.byName }

// kind is the metrics label for the source.
func (s Source) kind() string {
	if s.byName {
		return "file"
	}
	return "document"
}

// Response is the outcome of a successful Validate call.  At most one of
// Errors and EngineErrors is set, and only when IsValid is false.
type Response struct {
	IsValid      bool
	Errors       []ErrorObject // normalized form
	EngineErrors []EngineError // engine form
}

// MarshalJSON writes {"isValid":…,"errors":[…]}; errors is omitted when
// neither list is set.
func (r Response) MarshalJSON() ([]byte, error) {
	w := struct {
		IsValid bool `json:"isValid"`
		Errors  any  `json:"errors,omitempty"`
	}{IsValid: r.IsValid}

	switch {
	case r.EngineErrors != nil:
		w.Errors = r.EngineErrors
	case r.Errors != nil:
		w.Errors = r.Errors
	}
	return json.Marshal(w)
}
