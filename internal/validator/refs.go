package validator

import (
	"encoding/json"
	"fmt"
	"strings"
)

// literalKeywords hold instance values, not subschemas.  A "$ref" key inside
// them is data.
var literalKeywords = map[string]bool{
	"enum":     true,
	"const":    true,
	"default":  true,
	"examples": true,
}

// checkRefs rejects any $ref that points outside the document.  The engine
// would otherwise fetch http(s):// and file:// references while compiling.
func checkRefs(doc any) error {
	switch d := doc.(type) {
	case json.RawMessage:
		return checkRawRefs(d)
	case []byte:
		return checkRawRefs(d)
	case map[string]any, []any:
		return walkRefs(d)
	default:
		// Structs and typed maps: look at them the way the engine will.
		raw, err := json.Marshal(d)
		if err != nil {
			return err
		}
		return checkRawRefs(raw)
	}
}

func checkRawRefs(raw []byte) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	return walkRefs(doc)
}

func walkRefs(node any) error {
	switch n := node.(type) {
	case map[string]any:
		if ref, ok := n["$ref"].(string); ok && !strings.HasPrefix(ref, "#") {
			return fmt.Errorf("can't resolve reference %s", ref)
		}
		for k, child := range n {
			if literalKeywords[k] {
				continue
			}
			if err := walkRefs(child); err != nil {
				return err
			}
		}
	case []any:
		for _, child := range n {
			if err := walkRefs(child); err != nil {
				return err
			}
		}
	}
	return nil
}
