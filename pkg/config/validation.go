package config

import (
	"errors"
	"reflect"

	erks "github.com/StricklySoft/erks/pkg/errors"
	"github.com/StricklySoft/erks/pkg/errors/configerr"
)

// Validator is implemented by configuration structs that check
// themselves after loading. [Loader.Load] calls Validate once the
// required tags are satisfied. Unified errors are returned unchanged;
// other errors become CONFIG_ERROR.
//
//	func (c *ServerConfig) Validate() error {
//	    if c.Port < 1 || c.Port > 65535 {
//	        return erks.Validation("port", strconv.Itoa(c.Port), "1..65535")
//	    }
//	    return nil
//	}
type Validator interface {
	Validate() error
}

func validate(cfg any, rv reflect.Value) error {
	if err := validateRequired(rv, ""); err != nil {
		return err
	}

	v, ok := cfg.(Validator)
	if !ok {
		return nil
	}
	err := v.Validate()
	if err == nil {
		return nil
	}
	if e, isErks := erks.AsError(err); isErks {
		return e
	}
	var variant erks.Variant
	if errors.As(err, &variant) {
		return erks.Wrap(variant)
	}
	return erks.Wrap(configerr.Invalid(err, "custom validation failed"))
}

// validateRequired checks that fields tagged `required:"true"` are
// non-zero. path is the dotted field path, such as "Database.Host".
func validateRequired(rv reflect.Value, path string) error {
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rv.Field(i)
		sf := rt.Field(i)
		if !field.CanSet() {
			continue
		}
		fieldPath := joinPath(path, sf.Name)

		if field.Kind() == reflect.Struct && sf.Type != durationType {
			if err := validateRequired(field, fieldPath); err != nil {
				return err
			}
			continue
		}

		if sf.Tag.Get("required") == "true" && field.IsZero() {
			return erks.Wrap(configerr.MissingKey(fieldPath))
		}
	}

	return nil
}
