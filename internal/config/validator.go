// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `internal/config/loader.go` calls `validateStruct` immediately after it
// unmarshals the merged Koanf tree into a `Config` instance.  Any tag
// mismatch aborts startup, so the service never runs with a missing
// schema directory or a nonsense listen address.
//
// Rules in use: `required`, `hostname_port`, `gte`, and `oneof`.  One
// struct-level rule is registered here: when the schema watcher is on, the
// cache must be too, since the watcher only exists to invalidate it.
//
// Notes
// -----
//   • Oxford commas, two spaces after periods.

package config

import "github.com/go-playground/validator/v10"

//
// validator instance (package-level singleton)
//

var v = newValidate()

func newValidate() *validator.Validate {
	val := validator.New()
	val.RegisterStructValidation(func(sl validator.StructLevel) {
		s := sl.Current().Interface().(Validator)
		if s.Watch && s.CacheSize == 0 {
			sl.ReportError(s.Watch, "Watch", "watch", "requires_cache", "")
		}
	}, Validator{})
	return val
}

//
// public API
//

// validateStruct returns the validation errors, or nil on success.
func validateStruct(c *Config) error {
	return v.Struct(c)
}
