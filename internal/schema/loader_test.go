// internal/schema/loader_test.go
//
// Unit-tests for schema resolution and decoding.
//
// Run: go test ./internal/schema -v

package schema

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

// chdirWithSchemas moves the test into a temp dir containing schemas/ and
// writes the given files there.
func chdirWithSchemas(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "schemas")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(root); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return root
}

func TestResolve(t *testing.T) {
	root := chdirWithSchemas(t, nil)

	got, err := Resolve("schemas", "user.json")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	wd, _ := os.Getwd() // may differ from root through symlinks
	want := filepath.Join(wd, "schemas", "user.json")
	if got != want {
		t.Fatalf("Resolve = %q, want %q (root %q)", got, want, root)
	}
}

func TestResolve_NoSchemaPath(t *testing.T) {
	_, err := Resolve("", "user.json")
	if !errors.Is(err, ErrNoSchemaPath) {
		t.Fatalf("err = %v, want ErrNoSchemaPath", err)
	}
	if err.Error() != "Validator is not initialized with schemaPath" {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestLoad_JSON(t *testing.T) {
	chdirWithSchemas(t, map[string]string{
		"user.json": `{"type":"object","required":["name"]}`,
	})

	doc, err := Load("schemas", "user.json")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	m, ok := doc.(map[string]any)
	if !ok || m["type"] != "object" {
		t.Fatalf("doc = %#v", doc)
	}
}

func TestLoad_NestedName(t *testing.T) {
	root := chdirWithSchemas(t, nil)
	sub := filepath.Join(root, "schemas", "v1")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(sub, "order.json"), []byte(`{"type":"array"}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	doc, err := Load("schemas", "v1/order.json")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if doc.(map[string]any)["type"] != "array" {
		t.Fatalf("doc = %#v", doc)
	}
}

func TestLoad_YAML(t *testing.T) {
	chdirWithSchemas(t, map[string]string{
		"user.yaml": "type: object\nproperties:\n  age:\n    type: integer\n    minimum: 18\n",
	})

	doc, err := Load("schemas", "user.yaml")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	props := doc.(map[string]any)["properties"].(map[string]any)
	age := props["age"].(map[string]any)
	if min, ok := age["minimum"].(float64); !ok || min != 18 {
		t.Fatalf("minimum = %#v, want float64 18", age["minimum"])
	}
}

func TestLoad_Errors(t *testing.T) {
	chdirWithSchemas(t, map[string]string{
		"broken.json": `{"type":`,
	})

	_, err := Load("schemas", "missing.json")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("missing file err = %v, want fs.ErrNotExist", err)
	}

	_, err = Load("schemas", "broken.json")
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("broken file err = %T %v, want *ParseError", err, err)
	}
	if pe.Error() != pe.Err.Error() {
		t.Fatalf("ParseError message altered: %q", pe.Error())
	}
}
