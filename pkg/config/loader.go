// Package config loads configuration structs from struct tag defaults,
// an optional YAML, JSON or TOML file and environment variables. Values
// are resolved in priority order:
//
//	envDefault struct tags  (lowest priority)
//	configuration file      (medium priority)
//	environment variables   (highest priority)
//
// Every failure is a unified error from the configerr package, so
// callers can branch on the code and print position metadata:
//
//	CONFIG_NOT_FOUND            file required with RequireFile but absent
//	CONFIG_UNSUPPORTED_FORMAT   file extension not handled
//	CONFIG_PARSE_FAILED         malformed file (line/offset metadata)
//	CONFIG_INVALID_VALUE        env or default value of the wrong type
//	CONFIG_MISSING_KEY          required field left empty
//
// # Struct Tags
//
//   - `env:"VAR_NAME"` maps the field to an environment variable
//   - `envDefault:"value"` sets a default when the field is zero-valued
//   - `required:"true"` fails validation if the field remains zero
//
// File decoding uses the `yaml`, `json` or `toml` tag of the matching
// format.
//
// # Usage
//
//	type AppConfig struct {
//	    Host    string        `env:"HOST" envDefault:"localhost" yaml:"host" toml:"host"`
//	    Port    int           `env:"PORT" envDefault:"8080" yaml:"port" toml:"port" required:"true"`
//	    Timeout time.Duration `env:"TIMEOUT" envDefault:"30s" yaml:"timeout" toml:"timeout"`
//	}
//
//	cfg := config.MustLoad[AppConfig](
//	    config.New().WithEnvPrefix("APP").WithFile("config.toml"),
//	)
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	erks "github.com/StricklySoft/erks/pkg/errors"
	"github.com/StricklySoft/erks/pkg/errors/configerr"
	"github.com/StricklySoft/erks/pkg/errors/jsonerr"
	"github.com/StricklySoft/erks/pkg/errors/tomlerr"
)

// durationType distinguishes time.Duration from plain int64 fields.
var durationType = reflect.TypeOf(time.Duration(0))

// Loader resolves configuration in layers. Use [New] and the With
// methods to configure it before calling [Loader.Load].
//
// Loader is not safe for concurrent use.
type Loader struct {
	envPrefix   string
	filePath    string
	requireFile bool
}

// New creates a [Loader] that reads environment variables only.
func New() *Loader {
	return &Loader{}
}

// WithEnvPrefix sets a prefix joined with an underscore to every env
// tag. WithEnvPrefix("app") makes `env:"HOST"` read APP_HOST. The
// prefix is uppercased.
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = strings.ToUpper(prefix)
	return l
}

// WithFile sets the configuration file. The format follows the
// extension: .yaml and .yml for YAML, .json for JSON, .toml for TOML.
// A missing file is skipped unless [Loader.RequireFile] is set. The
// path must not contain "..".
func (l *Loader) WithFile(path string) *Loader {
	l.filePath = path
	return l
}

// RequireFile makes a missing configuration file a CONFIG_NOT_FOUND
// error instead of being skipped.
func (l *Loader) RequireFile() *Loader {
	l.requireFile = true
	return l
}

// Load populates cfg, which must be a non-nil pointer to a struct, and
// validates it. Fields tagged `required:"true"` must be non-zero, and
// when cfg implements [Validator] its Validate method runs last.
func (l *Loader) Load(cfg any) error {
	rv := reflect.ValueOf(cfg)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return erks.Wrap(configerr.Invalid(nil,
			fmt.Sprintf("Load requires a non-nil pointer to a struct, got %T", cfg)))
	}
	rv = rv.Elem()

	if err := applyDefaults(rv, ""); err != nil {
		return err
	}
	if l.filePath != "" {
		if err := l.loadFile(cfg); err != nil {
			return err
		}
	}
	if err := applyEnv(rv, l.envPrefix, ""); err != nil {
		return err
	}
	return validate(cfg, rv)
}

// MustLoad loads a T with loader and panics on failure. It is meant for
// program startup where a bad configuration should stop the process.
func MustLoad[T any](loader *Loader) T {
	var cfg T
	if err := loader.Load(&cfg); err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}

// loadFile decodes the configured file into cfg.
func (l *Loader) loadFile(cfg any) error {
	if strings.Contains(l.filePath, "..") {
		return erks.Wrap(configerr.InvalidValue("file", l.filePath, nil,
			erks.WithMessage("file path must not contain directory traversal (..)")))
	}

	ext := strings.ToLower(filepath.Ext(l.filePath))
	switch ext {
	case ".yaml", ".yml", ".json", ".toml":
	default:
		return erks.Wrap(configerr.UnsupportedFormat(l.filePath, ext))
	}

	data, err := os.ReadFile(l.filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if l.requireFile {
				return erks.Wrap(configerr.FileNotFound(l.filePath, err))
			}
			return nil
		}
		return erks.Wrap(erks.FromIO(err)).WithComponent("config")
	}

	var decodeErr error
	switch ext {
	case ".yaml", ".yml":
		decodeErr = yaml.Unmarshal(data, cfg)
	case ".json":
		decodeErr = jsonerr.Unmarshal(data, cfg)
	case ".toml":
		_, decodeErr = tomlerr.Decode(string(data), cfg)
	}
	if decodeErr != nil {
		return erks.Wrap(configerr.ParseFailed(l.filePath, decodeErr))
	}
	return nil
}

// applyDefaults sets zero-valued fields to their envDefault tag,
// recursing into nested structs.
func applyDefaults(rv reflect.Value, path string) error {
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rv.Field(i)
		sf := rt.Field(i)
		if !field.CanSet() {
			continue
		}
		fieldPath := joinPath(path, sf.Name)

		if field.Kind() == reflect.Struct && sf.Type != durationType {
			if err := applyDefaults(field, fieldPath); err != nil {
				return err
			}
			continue
		}

		tag := sf.Tag.Get("envDefault")
		if tag == "" || !field.IsZero() {
			continue
		}
		if err := setField(field, tag); err != nil {
			return erks.Wrap(configerr.InvalidValue(fieldPath, tag, err,
				erks.WithField("tag", "envDefault")))
		}
	}

	return nil
}

// applyEnv sets fields from the variables named by their env tag. A
// nested struct's env tag is added to the prefix of its fields.
func applyEnv(rv reflect.Value, prefix, path string) error {
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rv.Field(i)
		sf := rt.Field(i)
		if !field.CanSet() {
			continue
		}
		envTag := sf.Tag.Get("env")
		fieldPath := joinPath(path, sf.Name)

		if field.Kind() == reflect.Struct && sf.Type != durationType {
			nested := prefix
			if envTag != "" {
				nested = joinEnv(prefix, envTag)
			}
			if err := applyEnv(field, nested, fieldPath); err != nil {
				return err
			}
			continue
		}

		if envTag == "" {
			continue
		}
		envKey := joinEnv(prefix, envTag)
		val, ok := os.LookupEnv(envKey)
		if !ok {
			continue
		}
		if err := setField(field, val); err != nil {
			return erks.Wrap(configerr.InvalidValue(fieldPath, val, err,
				erks.WithField("env", envKey)))
		}
	}

	return nil
}

// setField parses value into field. Supported kinds are strings (and
// named string types), bools, signed and unsigned integers, floats,
// time.Duration and string slices (comma separated).
func setField(field reflect.Value, value string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(value, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetUint(n)

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetFloat(f)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice element type %s", field.Type().Elem().Kind())
		}
		parts := strings.Split(value, ",")
		// MakeSlice keeps named slice types such as `type Tags []string` settable.
		slice := reflect.MakeSlice(field.Type(), len(parts), len(parts))
		for i, p := range parts {
			slice.Index(i).SetString(strings.TrimSpace(p))
		}
		field.Set(slice)

	default:
		return fmt.Errorf("unsupported field type %s", field.Kind())
	}

	return nil
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func joinEnv(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "_" + name
}
