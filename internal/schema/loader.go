// internal/schema/loader.go
//
// Schema loader: resolves a schema file by name under the configured
// directory and parses it into a plain JSON value.
//
// Context
// -------
// Named schemas live under `<cwd>/<schemaPath>/`.  The validator passes the
// configured `schemaPath` and the caller's file name; this file joins the
// two, reads the file, and decodes it.  JSON is the native format.  Files
// with a `.yaml` or `.yml` extension are decoded with yaml.v3 and then
// normalised to JSON-compatible values so operators can keep large schemas
// in YAML.
//
// Errors
// ------
//   • Empty schemaPath            → ErrNoSchemaPath.
//   • Missing or unreadable file  → the *fs.PathError from os.ReadFile.
//   • Undecodable content         → *ParseError (message of the decoder).
//
// Errors are returned unchanged so the validator can classify them; no
// retry, no partial result.
//
// Notes
// -----
//   • Oxford commas, two spaces after periods.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ErrNoSchemaPath is returned when a schema is requested by name but no base
// directory was configured.  The text is part of the public contract.
var ErrNoSchemaPath = errors.New("Validator is not initialized with schemaPath")

// ParseError reports schema file content that could not be decoded.  Error
// returns the decoder message only.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string { return e.Err.Error() }
func (e *ParseError) Unwrap() error { return e.Err }

/*──────────────────────────── resolution ───────────────────────────────────*/

// Resolve returns the absolute path of name under schemaPath, relative to
// the process working directory.
func Resolve(schemaPath, name string) (string, error) {
	if schemaPath == "" {
		return "", ErrNoSchemaPath
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolve working directory: %w", err)
	}
	// schemaPath and name form one relative suffix, like "<schemaPath>/<name>".
	return filepath.Join(wd, schemaPath+"/"+name), nil
}

/*─────────────────────────────── loading ───────────────────────────────────*/

// Load resolves and decodes the named schema file.
func Load(schemaPath, name string) (any, error) {
	abs, err := Resolve(schemaPath, name)
	if err != nil {
		return nil, err
	}
	doc, err := ReadFile(abs)
	if err != nil {
		return nil, err
	}
	zap.S().Debugw("schema loaded", "name", name, "file", abs)
	return doc, nil
}

// ReadFile decodes one schema file at an absolute path.
func ReadFile(abs string) (any, error) {
	raw, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(abs)) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, &ParseError{Path: abs, Err: err}
		}
		return normalizeYAML(doc), nil
	default:
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, &ParseError{Path: abs, Err: err}
		}
		return doc, nil
	}
}

// normalizeYAML rewrites yaml.v3 output so it matches encoding/json values:
// map[any]any becomes map[string]any and ints become float64.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, vv := range t {
			t[k] = normalizeYAML(vv)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[fmt.Sprint(k)] = normalizeYAML(vv)
		}
		return out
	case []any:
		for i, vv := range t {
			t[i] = normalizeYAML(vv)
		}
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case uint64:
		return float64(t)
	default:
		return v
	}
}
