// internal/config/model.go
//
// Typed configuration model for reqschema.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                             – dotenv values,
//   • `conf/global.yaml`                          – primary static file,
//   • `REQSCHEMA_`-prefixed environment overrides – highest precedence.
//
// Validation happens immediately after unmarshal; the service fails fast
// if required fields are missing or out of range.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.  Koanf ignores `yaml`
//     tags unless configured otherwise.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.  No em-dash.

package config

import (
	"time"

	"github.com/yanizio/reqschema/internal/validator"
)

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr   string        `koanf:"listen_addr"    validate:"required,hostname_port"`
	ForceHTTPS   bool          `koanf:"force_https"`
	MaxBodyBytes int64         `koanf:"max_body_bytes" validate:"gte=0"`
	ReadTimeout  time.Duration `koanf:"read_timeout"   validate:"gte=0"`
	WriteTimeout time.Duration `koanf:"write_timeout"  validate:"gte=0"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"   validate:"gte=0"`
}

//
// Validator section
//

// Validator configures schema resolution and compilation.
//
// `SchemaPath` is relative to the working directory, the same way named
// schemas are resolved at request time.  `CacheSize` 0 recompiles every
// schema on every call.
type Validator struct {
	SchemaPath string `koanf:"schema_path" validate:"required"`
	CacheSize  int    `koanf:"cache_size"  validate:"gte=0"`
	Draft      string `koanf:"draft"       validate:"omitempty,oneof=draft4 draft6 draft7"`
	Watch      bool   `koanf:"watch"`
}

// Options converts the section into validator options.
func (v Validator) Options() validator.Options {
	return validator.Options{
		SchemaPath: v.SchemaPath,
		CacheSize:  v.CacheSize,
		Draft:      v.Draft,
	}
}

//
// Log section
//

// Log controls the zap logger.
type Log struct {
	Level string `koanf:"level" validate:"omitempty,oneof=debug info warn error"`
	Tee   bool   `koanf:"tee"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.  The loader
// discovers `Root` (repo root or REQSCHEMA_ROOT override) so later code
// can build absolute file paths.
type Paths struct {
	Root string
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads.
type Config struct {
	HTTP      HTTP      `koanf:"http"`
	Validator Validator `koanf:"validator"`
	Log       Log       `koanf:"log"`
	Paths     Paths     `koanf:"-"`
}
