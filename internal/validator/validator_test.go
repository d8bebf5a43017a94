// internal/validator/validator_test.go
//
// Behavioural tests for Validate: valid and invalid documents, schema files
// resolved from the working directory, error kinds, the engine format, and
// the compiled-schema cache.
//
// Run: go test ./internal/validator -v

package validator

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
)

const userSchema = `{
  "type": "object",
  "required": ["name"],
  "properties": {"name": {"type": "string"}}
}`

func mustDecode(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("decode %q: %v", s, err)
	}
	return v
}

// withSchemaDir chdirs into a temp root holding schemas/<name> files.
func withSchemaDir(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "schemas")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for name, body := range files {
		writeFile(t, filepath.Join(dir, name), body)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(root); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

/*──────────────────────────── by document ──────────────────────────────────*/

func TestValidate_ValidDocument(t *testing.T) {
	v := New(Options{})
	resp, err := v.ValidateBySchema(mustDecode(t, `{"name":"ada"}`), mustDecode(t, userSchema), false)
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if !resp.IsValid || resp.Errors != nil || resp.EngineErrors != nil {
		t.Fatalf("resp = %+v, want valid with no errors", resp)
	}
	b, _ := json.Marshal(resp)
	if string(b) != `{"isValid":true}` {
		t.Fatalf("json = %s, want {\"isValid\":true}", b)
	}
}

func TestValidate_RequiredProperty(t *testing.T) {
	v := New(Options{})
	resp, err := v.ValidateBySchema(map[string]any{}, mustDecode(t, userSchema), false)
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	want := []ErrorObject{{Message: "must have required property 'name'", Property: "name"}}
	if resp.IsValid || !reflect.DeepEqual(resp.Errors, want) {
		t.Fatalf("resp = %+v, want errors %+v", resp, want)
	}
	b, _ := json.Marshal(resp)
	if string(b) != `{"isValid":false,"errors":[{"message":"must have required property 'name'","property":"name"}]}` {
		t.Fatalf("json = %s", b)
	}
}

func TestValidate_WrongTypePositionalProperty(t *testing.T) {
	v := New(Options{})
	resp, err := v.ValidateBySchema(map[string]any{"name": 5}, mustDecode(t, userSchema), false)
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	want := []ErrorObject{{Message: "must be string", Property: "name"}}
	if resp.IsValid || !reflect.DeepEqual(resp.Errors, want) {
		t.Fatalf("errors = %+v, want %+v", resp.Errors, want)
	}
}

func TestValidate_EngineFormat(t *testing.T) {
	v := New(Options{})
	resp, err := v.ValidateBySchema(map[string]any{}, mustDecode(t, userSchema), true)
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if resp.Errors != nil {
		t.Fatalf("normalized errors set in engine format: %+v", resp.Errors)
	}
	if len(resp.EngineErrors) != 1 {
		t.Fatalf("engine errors = %+v, want 1", resp.EngineErrors)
	}
	e := resp.EngineErrors[0]
	if e.Keyword != "required" || e.InstancePath != "" || e.Params["missingProperty"] != "name" {
		t.Fatalf("engine error = %+v", e)
	}
}

func TestValidate_CombinatorsDroppedOnlyWhenNormalized(t *testing.T) {
	schemaDoc := mustDecode(t, `{"anyOf":[{"type":"string"},{"type":"number"}]}`)
	v := New(Options{})

	native, err := v.ValidateBySchema(true, schemaDoc, true)
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	anyOf := 0
	for _, e := range native.EngineErrors {
		if e.Keyword == "anyOf" {
			anyOf++
		}
	}
	if anyOf == 0 {
		t.Fatalf("engine errors %+v lack the anyOf entry", native.EngineErrors)
	}

	norm, err := v.ValidateBySchema(true, schemaDoc, false)
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if norm.IsValid {
		t.Fatalf("IsValid = true, want false")
	}
	if got, want := len(norm.Errors), len(native.EngineErrors)-anyOf; got != want {
		t.Fatalf("normalized %d errors, want %d (%+v)", got, want, norm.Errors)
	}
}

func TestValidate_IfThen(t *testing.T) {
	schemaDoc := mustDecode(t, `{
	  "if":   {"properties": {"kind": {"const": "card"}}, "required": ["kind"]},
	  "then": {"required": ["number"]}
	}`)
	v := New(Options{})

	native, err := v.ValidateBySchema(map[string]any{"kind": "card"}, schemaDoc, true)
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	var sawIf bool
	for _, e := range native.EngineErrors {
		if e.Keyword == "if" {
			sawIf = true
			if e.Params["failingKeyword"] != "then" {
				t.Fatalf("if params = %+v", e.Params)
			}
		}
	}
	if !sawIf {
		t.Fatalf("engine errors %+v lack the if entry", native.EngineErrors)
	}

	norm, _ := v.ValidateBySchema(map[string]any{"kind": "card"}, schemaDoc, false)
	want := []ErrorObject{{Message: "must have required property 'number'", Property: "number"}}
	if !reflect.DeepEqual(norm.Errors, want) {
		t.Fatalf("errors = %+v, want %+v", norm.Errors, want)
	}
}

func TestValidate_RawJSONInputs(t *testing.T) {
	v := New(Options{})
	resp, err := v.ValidateBySchema(json.RawMessage(`{"name":"x"}`), []byte(userSchema), false)
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if !resp.IsValid {
		t.Fatalf("resp = %+v, want valid", resp)
	}
}

func TestValidate_Idempotent(t *testing.T) {
	v := New(Options{})
	data := map[string]any{"name": 5, "extra": true}
	a, err1 := v.ValidateBySchema(data, mustDecode(t, userSchema), false)
	b, err2 := v.ValidateBySchema(data, mustDecode(t, userSchema), false)
	if err1 != nil || err2 != nil {
		t.Fatalf("errors: %v, %v", err1, err2)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("responses differ: %+v vs %+v", a, b)
	}
}

func TestValidate_CompileError(t *testing.T) {
	v := New(Options{})
	_, err := v.ValidateBySchema(map[string]any{}, map[string]any{"type": 5}, false)
	if err == nil {
		t.Fatalf("want compile error")
	}
	if KindOf(err) != KindCompile {
		t.Fatalf("kind = %q, want compile (err %v)", KindOf(err), err)
	}
	var ve *Error
	if !errors.As(err, &ve) || ve.Error() != ve.Err.Error() {
		t.Fatalf("message re-worded: %v", err)
	}
}

func TestValidate_UnsupportedDraft(t *testing.T) {
	v := New(Options{Draft: "draft2019"})
	_, err := v.ValidateBySchema(map[string]any{}, mustDecode(t, userSchema), false)
	if KindOf(err) != KindCompile {
		t.Fatalf("kind = %q, want compile", KindOf(err))
	}
}

/*──────────────────────────── by file name ─────────────────────────────────*/

func TestValidate_ByFilename(t *testing.T) {
	withSchemaDir(t, map[string]string{"user.json": userSchema})

	v := New(Options{})
	v.Initialize(Options{SchemaPath: "schemas"})

	resp, err := v.ValidateByFilename(map[string]any{}, "user.json", false)
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if resp.IsValid || len(resp.Errors) != 1 || resp.Errors[0].Property != "name" {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestValidate_NotInitialized(t *testing.T) {
	for _, opts := range []Options{{}, {SchemaPath: ""}} {
		v := New(opts)
		_, err := v.ValidateByFilename(map[string]any{}, "user.json", false)
		if err == nil || err.Error() != "Validator is not initialized with schemaPath" {
			t.Fatalf("err = %v", err)
		}
		if !errors.Is(err, ErrNotInitialized) || KindOf(err) != KindConfig {
			t.Fatalf("err kind = %q, want config", KindOf(err))
		}
	}
}

func TestValidate_FileErrors(t *testing.T) {
	withSchemaDir(t, map[string]string{"broken.json": `{"type":`})
	v := New(Options{SchemaPath: "schemas"})

	_, err := v.ValidateByFilename(nil, "missing.json", false)
	if KindOf(err) != KindIO {
		t.Fatalf("missing file kind = %q, want io (err %v)", KindOf(err), err)
	}

	_, err = v.ValidateByFilename(nil, "broken.json", false)
	if KindOf(err) != KindParse {
		t.Fatalf("broken file kind = %q, want parse (err %v)", KindOf(err), err)
	}
}

func TestValidate_UncachedSeesFileEdits(t *testing.T) {
	dir := withSchemaDir(t, map[string]string{"user.json": userSchema})
	v := New(Options{SchemaPath: "schemas"})

	resp, _ := v.ValidateByFilename(map[string]any{}, "user.json", false)
	if resp.IsValid {
		t.Fatalf("first call valid, want invalid")
	}
	writeFile(t, filepath.Join(dir, "user.json"), `{"type":"object"}`)
	resp, _ = v.ValidateByFilename(map[string]any{}, "user.json", false)
	if !resp.IsValid {
		t.Fatalf("second call invalid, want schema edit to apply")
	}
}

func TestValidate_CacheAndPurge(t *testing.T) {
	dir := withSchemaDir(t, map[string]string{"user.json": userSchema})
	v := New(Options{SchemaPath: "schemas", CacheSize: 4})

	first, _ := v.ValidateByFilename(map[string]any{}, "user.json", false)
	writeFile(t, filepath.Join(dir, "user.json"), `{"type":"object"}`)

	cached, _ := v.ValidateByFilename(map[string]any{}, "user.json", false)
	if !reflect.DeepEqual(first, cached) {
		t.Fatalf("cached response %+v differs from first %+v", cached, first)
	}

	v.Purge()
	fresh, _ := v.ValidateByFilename(map[string]any{}, "user.json", false)
	if !fresh.IsValid {
		t.Fatalf("after Purge resp = %+v, want valid", fresh)
	}
}

func TestCompileCached_PurgeDuringCompile(t *testing.T) {
	v := New(Options{CacheSize: 4})
	v.mu.RLock()
	c, gen := v.compiled, v.gen
	v.mu.RUnlock()

	doc := mustDecode(t, userSchema)
	load := func() (any, error) {
		v.Purge() // schema changed on disk while this compile ran
		return doc, nil
	}
	if _, err := v.compileCached(c, gen, "file:/user.json", "", load); err != nil {
		t.Fatalf("compileCached error: %v", err)
	}
	if _, ok := c.Get("file:/user.json"); ok {
		t.Fatalf("schema compiled before Purge was cached")
	}

	v.mu.RLock()
	gen = v.gen
	v.mu.RUnlock()
	if _, err := v.compileCached(c, gen, "file:/user.json", "", func() (any, error) { return doc, nil }); err != nil {
		t.Fatalf("compileCached error: %v", err)
	}
	if _, ok := c.Get("file:/user.json"); !ok {
		t.Fatalf("current-generation schema not cached")
	}
}

func TestCompileCached_InitializeDuringCompile(t *testing.T) {
	v := New(Options{CacheSize: 4})
	v.mu.RLock()
	old, gen := v.compiled, v.gen
	v.mu.RUnlock()

	doc := mustDecode(t, userSchema)
	load := func() (any, error) {
		v.Initialize(Options{CacheSize: 4, Draft: "draft4"})
		return doc, nil
	}
	if _, err := v.compileCached(old, gen, "doc:1", "", load); err != nil {
		t.Fatalf("compileCached error: %v", err)
	}
	if old.Len() != 0 {
		t.Fatalf("old cache len = %d, want 0", old.Len())
	}
}

func TestValidate_CachedDocumentsMatchUncached(t *testing.T) {
	plain := New(Options{})
	cached := New(Options{CacheSize: 8})
	schemaDoc := mustDecode(t, userSchema)

	for _, data := range []any{map[string]any{}, map[string]any{"name": 1}, map[string]any{"name": "x"}} {
		for i := 0; i < 2; i++ {
			a, _ := plain.ValidateBySchema(data, schemaDoc, false)
			b, _ := cached.ValidateBySchema(data, schemaDoc, false)
			if !reflect.DeepEqual(a, b) {
				t.Fatalf("data %v: uncached %+v, cached %+v", data, a, b)
			}
		}
	}
}

func TestValidate_ConcurrentInitialize(t *testing.T) {
	withSchemaDir(t, map[string]string{"user.json": userSchema})
	v := New(Options{SchemaPath: "schemas", CacheSize: 2})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			v.Initialize(Options{SchemaPath: "schemas", CacheSize: 2})
		}()
		go func() {
			defer wg.Done()
			if _, err := v.ValidateByFilename(map[string]any{"name": "x"}, "user.json", false); err != nil {
				t.Errorf("Validate error: %v", err)
			}
		}()
	}
	wg.Wait()
}

func TestInstance_Singleton(t *testing.T) {
	if Instance() != Instance() {
		t.Fatalf("Instance returned different validators")
	}
}

func TestResponse_EmptyNormalizedListIsKept(t *testing.T) {
	b, err := json.Marshal(Response{IsValid: false, Errors: []ErrorObject{}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"isValid":false,"errors":[]}` {
		t.Fatalf("json = %s", b)
	}
}
