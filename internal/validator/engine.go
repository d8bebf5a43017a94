package validator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// EngineError is one error record as reported by the schema engine, keyed by
// JSON-Schema keyword.  It is returned unmodified when callers ask for the
// engine format.
type EngineError struct {
	Keyword      string         `json:"keyword"`
	InstancePath string         `json:"instancePath"`
	Params       map[string]any `json:"params"`
	Message      string         `json:"message"`
}

// rootContext is the engine's name for the document root.
const rootContext = "(root)"

/*──────────────────────────── compile / evaluate ───────────────────────────*/

// compile turns a schema document into an evaluable schema.  draft is one of
// "draft4", "draft6", "draft7", or "" for $schema auto-detection.  Only
// same-document references ("#...") are accepted.
func compile(doc any, draft string) (*gojsonschema.Schema, error) {
	if err := checkRefs(doc); err != nil {
		return nil, err
	}
	sl := gojsonschema.NewSchemaLoader()
	switch draft {
	case "draft4":
		sl.Draft, sl.AutoDetect = gojsonschema.Draft4, false
	case "draft6":
		sl.Draft, sl.AutoDetect = gojsonschema.Draft6, false
	case "draft7":
		sl.Draft, sl.AutoDetect = gojsonschema.Draft7, false
	case "":
		sl.Draft, sl.AutoDetect = gojsonschema.Hybrid, true
	default:
		return nil, fmt.Errorf("unsupported schema draft %q", draft)
	}
	return sl.Compile(loaderFor(doc))
}

// evaluate checks data against s and returns the engine's verdict and
// converted error records.
func evaluate(s *gojsonschema.Schema, data any) (bool, []EngineError, error) {
	result, err := s.Validate(loaderFor(data))
	if err != nil {
		return false, nil, err
	}
	if result.Valid() {
		return true, nil, nil
	}
	return false, fromResultErrors(result.Errors()), nil
}

// loaderFor wraps a document.  Raw bytes are taken as JSON text; anything
// else is treated as an already-decoded Go value.
func loaderFor(doc any) gojsonschema.JSONLoader {
	switch d := doc.(type) {
	case json.RawMessage:
		return gojsonschema.NewBytesLoader(d)
	case []byte:
		return gojsonschema.NewBytesLoader(d)
	default:
		return gojsonschema.NewGoLoader(d)
	}
}

/*────────────────────────────── conversion ─────────────────────────────────*/

// engineKeywords maps engine error types to the keyword that produced them.
var engineKeywords = map[string]string{
	"false":                           "false schema",
	"required":                        "required",
	"invalid_type":                    "type",
	"number_any_of":                   "anyOf",
	"number_one_of":                   "oneOf",
	"number_all_of":                   "allOf",
	"number_not":                      "not",
	"missing_dependency":              "dependencies",
	"const":                           "const",
	"enum":                            "enum",
	"array_no_additional_items":       "additionalItems",
	"array_min_items":                 "minItems",
	"array_max_items":                 "maxItems",
	"unique":                          "uniqueItems",
	"contains":                        "contains",
	"array_min_properties":            "minProperties",
	"array_max_properties":            "maxProperties",
	"additional_property_not_allowed": "additionalProperties",
	"invalid_property_pattern":        "patternProperties",
	"invalid_property_name":           "propertyNames",
	"string_gte":                      "minLength",
	"string_lte":                      "maxLength",
	"does_not_match_pattern":          "pattern",
	"format":                          "format",
	"multiple_of":                     "multipleOf",
	"number_gte":                      "minimum",
	"number_gt":                       "exclusiveMinimum",
	"number_lte":                      "maximum",
	"number_lt":                       "exclusiveMaximum",
	"condition_then":                  "if",
	"condition_else":                  "if",
}

func fromResultErrors(errs []gojsonschema.ResultError) []EngineError {
	out := make([]EngineError, 0, len(errs))
	for _, re := range errs {
		out = append(out, fromResultError(re))
	}
	return out
}

func fromResultError(re gojsonschema.ResultError) EngineError {
	typ := re.Type()
	keyword, ok := engineKeywords[typ]
	if !ok {
		keyword = typ
	}
	return EngineError{
		Keyword:      keyword,
		InstancePath: instancePath(re.Context()),
		Params:       params(typ, keyword, re.Details()),
		Message:      re.Description(),
	}
}

// instancePath renders an engine context as a JSON pointer: "(root).a.0"
// becomes "/a/0" and the root itself becomes "".  Keys are escaped per
// RFC 6901, so "a/b" is "/a~1b".
func instancePath(ctx *gojsonschema.JsonContext) string {
	if ctx == nil {
		return ""
	}
	// NUL cannot be confused with a key character the way "." or "/" can.
	segs := strings.Split(ctx.String("\x00"), "\x00")
	if len(segs) > 0 && segs[0] == rootContext {
		segs = segs[1:]
	}
	var b strings.Builder
	for _, s := range segs {
		b.WriteByte('/')
		b.WriteString(pointerEscaper.Replace(s))
	}
	return b.String()
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// params renames engine details to the conventional keyword parameter
// names.  Unknown keywords keep the engine's details as-is.
func params(typ, keyword string, d gojsonschema.ErrorDetails) map[string]any {
	p := map[string]any{}
	set := func(name, detail string) {
		if v, ok := d[detail]; ok {
			p[name] = v
		}
	}

	switch keyword {
	case "required", "dependencies":
		set("missingProperty", "property")
		set("missingProperty", "dependency")
	case "type":
		set("type", "expected")
	case "additionalProperties":
		set("additionalProperty", "property")
	case "propertyNames", "patternProperties":
		set("propertyName", "property")
		set("pattern", "pattern")
	case "enum":
		set("allowedValues", "allowed")
	case "const":
		set("allowedValue", "allowed")
	case "minLength", "minItems", "minProperties":
		set("limit", "min")
	case "maxLength", "maxItems", "maxProperties":
		set("limit", "max")
	case "minimum":
		p["comparison"] = ">="
		set("limit", "min")
	case "exclusiveMinimum":
		p["comparison"] = ">"
		set("limit", "min")
	case "maximum":
		p["comparison"] = "<="
		set("limit", "max")
	case "exclusiveMaximum":
		p["comparison"] = "<"
		set("limit", "max")
	case "pattern":
		set("pattern", "pattern")
	case "format":
		set("format", "format")
	case "multipleOf":
		set("multipleOf", "multiple")
	case "uniqueItems":
		set("i", "i")
		set("j", "j")
	case "if":
		if typ == "condition_else" {
			p["failingKeyword"] = "else"
		} else {
			p["failingKeyword"] = "then"
		}
	case "anyOf", "oneOf", "allOf", "not", "contains", "false schema", "additionalItems":
	default:
		for k, v := range d {
			if k == "field" || k == "context" {
				continue
			}
			p[k] = v
		}
	}
	return p
}

/*──────────────────────────────── messages ─────────────────────────────────*/

// messages replaces the engine's default English templates with the short
// "must …" phrasing clients of this service expect.  Templates receive the
// engine's error details.
type messages struct {
	gojsonschema.DefaultLocale
}

func (messages) False() string         { return "boolean schema is false" }
func (messages) Required() string      { return "must have required property '{{.property}}'" }
func (messages) InvalidType() string   { return "must be {{.expected}}" }
func (messages) NumberAnyOf() string   { return "must match a schema in anyOf" }
func (messages) NumberOneOf() string   { return "must match exactly one schema in oneOf" }
func (messages) NumberAllOf() string   { return "must match all schemas in allOf" }
func (messages) NumberNot() string     { return "must NOT be valid" }
func (messages) Const() string         { return "must be equal to constant" }
func (messages) Enum() string          { return "must be equal to one of the allowed values" }
func (messages) ArrayContains() string { return "must contain at least 1 valid item" }
func (messages) Unique() string        { return "must NOT have duplicate items" }
func (messages) ConditionThen() string { return `must match "then" schema` }
func (messages) ConditionElse() string { return `must match "else" schema` }
func (messages) MultipleOf() string    { return "must be multiple of {{.multiple}}" }
func (messages) NumberGTE() string     { return "must be >= {{.min}}" }
func (messages) NumberGT() string      { return "must be > {{.min}}" }
func (messages) NumberLTE() string     { return "must be <= {{.max}}" }
func (messages) NumberLT() string      { return "must be < {{.max}}" }

func (messages) MissingDependency() string {
	return "must have property {{.dependency}} when dependent property is present"
}
func (messages) ArrayMinItems() string { return "must NOT have fewer than {{.min}} items" }
func (messages) ArrayMaxItems() string { return "must NOT have more than {{.max}} items" }
func (messages) ArrayMinProperties() string {
	return "must NOT have fewer than {{.min}} properties"
}
func (messages) ArrayMaxProperties() string {
	return "must NOT have more than {{.max}} properties"
}
func (messages) AdditionalPropertyNotAllowed() string {
	return "must NOT have additional properties"
}
func (messages) InvalidPropertyName() string { return "property name must be valid" }
func (messages) StringGTE() string {
	return "must NOT have fewer than {{.min}} characters"
}
func (messages) StringLTE() string {
	return "must NOT have more than {{.max}} characters"
}
func (messages) DoesNotMatchPattern() string { return `must match pattern "{{.pattern}}"` }
func (messages) DoesNotMatchFormat() string  { return `must match format "{{.format}}"` }

// The engine reads its locale from a package variable when it builds each
// error, so it is installed once for the process.
func init() { gojsonschema.Locale = messages{} }
