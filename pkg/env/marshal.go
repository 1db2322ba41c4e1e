package env

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// MarshalEnv renders the env-tagged fields of one or more struct pointers as
// .env lines. Zero values are skipped so envDefault still applies on load.
func MarshalEnv(cs ...any) (string, error) {
	var lines []string
	seen := make(map[string]struct{})

	for _, c := range cs {
		v := reflect.ValueOf(c)
		if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
			return "", fmt.Errorf("marshal env: want pointer to struct, got %T", c)
		}
		v = v.Elem()
		t := v.Type()

		for i := 0; i < v.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}

			// "KEY,required,notEmpty" -> KEY
			key, _, _ := strings.Cut(field.Tag.Get("env"), ",")
			if key == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				return "", fmt.Errorf("marshal env: duplicate key %s", key)
			}
			seen[key] = struct{}{}

			val := v.Field(i)
			if val.IsZero() {
				continue
			}

			lines = append(lines, key+"="+quote(formatValue(val)))
		}
	}

	if len(lines) == 0 {
		return "", nil
	}
	return strings.Join(lines, "\n") + "\n", nil
}

func formatValue(v reflect.Value) string {
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(v.Float(), 'f', -1, 32)
	case reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}

// quote wraps values godotenv would otherwise split or strip.
func quote(s string) string {
	if strings.ContainsAny(s, " #\"'\\\n\t") {
		return strconv.Quote(s)
	}
	return s
}
