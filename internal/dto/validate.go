package dto

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"stockhub/internal/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	// Report fields by their JSON name.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// FieldErrors maps a payload field path to the rule it failed.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+f[k])
	}
	return strings.Join(parts, ", ")
}

// checker is implemented by payloads with rules that struct tags cannot express.
type checker interface {
	Check() error
}

// Validate runs the struct tags of v and then its Check method, if any.
// Failures are returned as apperror validation errors; tag failures wrap
// FieldErrors so the boundary can report them per field.
func Validate(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		var ves validator.ValidationErrors
		if !errors.As(err, &ves) {
			return &apperror.Error{Kind: apperror.KindValidation, Message: "invalid payload", Err: err}
		}
		fields := make(FieldErrors, len(ves))
		for _, fe := range ves {
			fields[fieldPath(fe.Namespace())] = fe.Tag()
		}
		return &apperror.Error{Kind: apperror.KindValidation, Message: "invalid payload", Err: fields}
	}
	if c, ok := v.(checker); ok {
		return c.Check()
	}
	return nil
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
