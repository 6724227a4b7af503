package binder

import (
	"fmt"
	"net/http"
	"reflect"
	"strconv"
)

// Query creates a URL query parameter binder. Target struct fields are
// matched by their `query` tag; untagged fields are skipped. Supported
// field types are string, int, int64 and bool.
func Query() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Pointer || rv.IsNil() {
			return fmt.Errorf("%w: target must be a non-nil pointer", ErrFailedToParseQuery)
		}
		rv = rv.Elem()
		if rv.Kind() != reflect.Struct {
			return fmt.Errorf("%w: target must be a struct pointer", ErrFailedToParseQuery)
		}

		values := r.URL.Query()
		rt := rv.Type()

		for i := 0; i < rt.NumField(); i++ {
			field := rt.Field(i)
			tag := field.Tag.Get("query")
			if tag == "" || tag == "-" || !field.IsExported() {
				continue
			}

			raw := values.Get(tag)
			if raw == "" {
				continue
			}

			fv := rv.Field(i)
			switch fv.Kind() {
			case reflect.String:
				fv.SetString(raw)
			case reflect.Int, reflect.Int64:
				n, err := strconv.ParseInt(raw, 10, 64)
				if err != nil {
					return fmt.Errorf("%w: invalid integer for %q: %v", ErrFailedToParseQuery, tag, err)
				}
				fv.SetInt(n)
			case reflect.Bool:
				b, err := strconv.ParseBool(raw)
				if err != nil {
					return fmt.Errorf("%w: invalid boolean for %q: %v", ErrFailedToParseQuery, tag, err)
				}
				fv.SetBool(b)
			default:
				return fmt.Errorf("%w: unsupported field type %s for %q", ErrFailedToParseQuery, fv.Kind(), tag)
			}
		}

		return nil
	}
}
