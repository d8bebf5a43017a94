// internal/validator/validator.go
//
// JSON-Schema validation of request payloads.
//
/*
Context
--------
A Validator checks a data document against a schema and reports either
`{isValid: true}` or `{isValid: false, errors: [...]}`.  The schema comes
from one of two places:

  1. A file under the configured schema directory (`ByFilename`).
  2. A document held by the caller (`ByDocument`).

Schema compilation and keyword semantics belong to gojsonschema; this
package only resolves the schema, delegates, and rewrites the engine's
errors into `{message, property, path}` objects (see normalize.go).
Callers that want the engine's own records pass engineFormat = true.

Configuration
-------------
Options are set by `New` or `Initialize` and read on every call under a
read lock, so re-initialising while requests are in flight is safe: each
call sees either the old or the new options, never a mix.  `Instance`
returns the process-wide Validator for code that cannot be handed one.

Compiled schemas are not reused unless Options.CacheSize > 0.  With a cache,
file schemas are keyed by absolute path and documents by an xxhash digest of
their canonical JSON.  Concurrent misses on one key compile once.  The
cache never changes a response.

Errors
------
Every failure is a *Error whose message is the underlying message,
unchanged.  Kinds (config, io, parse, compile, engine) are available to
callers that need them via KindOf or errors.As.

Notes
-----
  • Oxford commas, two spaces after periods.
*/
package validator

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/yanizio/reqschema/internal/cache"
	"github.com/yanizio/reqschema/internal/metrics"
	"github.com/yanizio/reqschema/internal/schema"
)

// Options configures a Validator.
type Options struct {
	// SchemaPath is the directory, relative to the working directory, that
	// holds named schema files.
	SchemaPath string
	// CacheSize bounds the compiled-schema cache; 0 disables it.
	CacheSize int
	// Draft pins the JSON-Schema draft ("draft4", "draft6", "draft7").
	// Empty means detect from $schema.
	Draft string
}

// Validator validates documents against JSON schemas.  Safe for concurrent
// use.
type Validator struct {
	mu       sync.RWMutex
	opts     Options
	compiled *cache.LRU // nil when caching is off
	gen      uint64     // bumped by Initialize and Purge

	group singleflight.Group
}

var (
	instance     *Validator
	instanceOnce sync.Once
)

// Instance returns the process-wide Validator, creating it uninitialised on
// first use.
func Instance() *Validator {
	instanceOnce.Do(func() { instance = New(Options{}) })
	return instance
}

// New returns a Validator configured with opts.
func New(opts Options) *Validator {
	v := &Validator{}
	v.Initialize(opts)
	return v
}

// Initialize replaces the options.  The last call wins.  Any cached compiled
// schemas are dropped.
func (v *Validator) Initialize(opts Options) {
	var c *cache.LRU
	if opts.CacheSize > 0 {
		c = cache.New(opts.CacheSize)
	}

	v.mu.Lock()
	v.opts = opts
	v.compiled = c
	v.gen++
	v.mu.Unlock()

	metrics.SchemaCacheEntries.Set(0)
	zap.S().Debugw("validator initialized",
		"schema_path", opts.SchemaPath,
		"cache_size", opts.CacheSize,
		"draft", opts.Draft,
	)
}

// Options returns a copy of the current options.
func (v *Validator) Options() Options {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.opts
}

// Purge drops every cached compiled schema.  No-op without a cache.
func (v *Validator) Purge() {
	v.mu.Lock()
	c := v.compiled
	v.gen++
	v.mu.Unlock()
	if c == nil {
		return
	}
	c.Purge()
	metrics.SchemaCacheEntries.Set(0)
	zap.S().Debugw("schema cache purged")
}

/*──────────────────────────────── validate ─────────────────────────────────*/

// ValidateByFilename validates data against the named schema file.
func (v *Validator) ValidateByFilename(data any, name string, engineFormat bool) (*Response, error) {
	return v.Validate(data, ByFilename(name), engineFormat)
}

// ValidateBySchema validates data against an in-memory schema document.
func (v *Validator) ValidateBySchema(data any, doc any, engineFormat bool) (*Response, error) {
	return v.Validate(data, ByDocument(doc), engineFormat)
}

// Validate checks data against the schema named by src.  A document that
// fails the schema is not an error: it yields IsValid = false.  Errors are
// returned only when the schema cannot be loaded, compiled, or run.
func (v *Validator) Validate(data any, src Source, engineFormat bool) (resp *Response, err error) {
	start := time.Now()
	defer func() {
		metrics.ValidationDuration.Observe(time.Since(start).Seconds())
		switch {
		case err != nil:
			metrics.ValidationFailuresTotal.WithLabelValues(string(KindOf(err))).Inc()
			zap.S().Debugw("validation aborted", "source", src.kind(), "err", err)
		case resp.IsValid:
			metrics.ValidationsTotal.WithLabelValues(src.kind(), "valid").Inc()
		default:
			metrics.ValidationsTotal.WithLabelValues(src.kind(), "invalid").Inc()
		}
	}()

	v.mu.RLock()
	opts, c, gen := v.opts, v.compiled, v.gen
	v.mu.RUnlock()

	s, err := v.schemaFor(src, opts, c, gen)
	if err != nil {
		return nil, err
	}

	ok, native, err := evaluate(s, data)
	if err != nil {
		return nil, &Error{Kind: KindEngine, Err: err}
	}
	if ok {
		return &Response{IsValid: true}, nil
	}

	resp = &Response{}
	if len(native) > 0 {
		if engineFormat {
			resp.EngineErrors = native
		} else {
			resp.Errors = Normalize(native)
		}
	}
	return resp, nil
}

/*──────────────────────────── schema resolution ────────────────────────────*/

func (v *Validator) schemaFor(src Source, opts Options, c *cache.LRU, gen uint64) (*gojsonschema.Schema, error) {
	if name, ok := src.Filename(); ok {
		abs, err := schema.Resolve(opts.SchemaPath, name)
		if err != nil {
			return nil, classifyLoad(err)
		}
		load := func() (any, error) {
			doc, err := schema.Load(opts.SchemaPath, name)
			if err != nil {
				return nil, classifyLoad(err)
			}
			return doc, nil
		}
		return v.compileCached(c, gen, "file:"+abs, opts.Draft, load)
	}

	doc, _ := src.Document()
	load := func() (any, error) { return doc, nil }
	if c == nil {
		return compileDoc(load, opts.Draft)
	}
	key, err := documentKey(doc)
	if err != nil {
		return nil, &Error{Kind: KindCompile, Err: err}
	}
	return v.compileCached(c, gen, key, opts.Draft, load)
}

// compileCached compiles through c when it is non-nil.  gen is the cache
// generation the caller saw; a result compiled across a Purge or Initialize
// is returned but not stored.
func (v *Validator) compileCached(c *cache.LRU, gen uint64, key, draft string, load func() (any, error)) (*gojsonschema.Schema, error) {
	if c == nil {
		return compileDoc(load, draft)
	}
	if s, ok := c.Get(key); ok {
		metrics.SchemaCacheHitsTotal.Inc()
		return s.(*gojsonschema.Schema), nil
	}

	flight := fmt.Sprintf("%d|%s|%s", gen, draft, key)
	res, err, _ := v.group.Do(flight, func() (any, error) {
		s, err := compileDoc(load, draft)
		if err != nil {
			return nil, err
		}
		v.mu.RLock()
		if v.gen == gen {
			c.Add(key, s)
			metrics.SchemaCacheEntries.Set(float64(c.Len()))
		}
		v.mu.RUnlock()
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return res.(*gojsonschema.Schema), nil
}

func compileDoc(load func() (any, error), draft string) (*gojsonschema.Schema, error) {
	doc, err := load()
	if err != nil {
		return nil, err
	}
	s, err := compile(doc, draft)
	if err != nil {
		return nil, &Error{Kind: KindCompile, Err: err}
	}
	metrics.SchemaCompilesTotal.Inc()
	return s, nil
}

// documentKey digests a schema document.  Decoded values are re-encoded
// first; encoding/json sorts map keys, so equal documents hash equally.
func documentKey(doc any) (string, error) {
	var raw []byte
	switch d := doc.(type) {
	case json.RawMessage:
		raw = d
	case []byte:
		raw = d
	default:
		b, err := json.Marshal(d)
		if err != nil {
			return "", err
		}
		raw = b
	}
	return fmt.Sprintf("doc:%016x", xxhash.Sum64(raw)), nil
}
