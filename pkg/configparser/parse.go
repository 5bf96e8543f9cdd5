package configparser

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"time"
)

// LoadAndParseYaml loads the YAML file into the environment and then fills
// dst from environment variables according to `env` and `default` struct tags.
func LoadAndParseYaml(filepath string, dst any) error {
	if err := LoadYamlFile(filepath); err != nil {
		return err
	}
	return ParseEnv(dst)
}

// ParseEnv walks dst (a pointer to a struct) and assigns every field carrying
// an `env` tag from the corresponding environment variable, falling back to
// the `default` tag when the variable is unset. Nested structs are walked
// recursively.
func ParseEnv(dst any) error {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("configparser: expected pointer to struct, got %T", dst)
	}
	return parseStruct(v.Elem())
}

func parseStruct(v reflect.Value) error {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := v.Field(i)
		if !field.CanSet() {
			continue
		}

		if field.Kind() == reflect.Struct && field.Type() != reflect.TypeOf(time.Duration(0)) {
			if err := parseStruct(field); err != nil {
				return err
			}
			continue
		}

		envName, ok := t.Field(i).Tag.Lookup("env")
		if !ok {
			continue
		}

		value := os.Getenv(envName)
		if value == "" {
			value = t.Field(i).Tag.Get("default")
		}
		if value == "" {
			continue
		}

		if err := setField(field, value); err != nil {
			return fmt.Errorf("configparser: field %s: %w", t.Field(i).Name, err)
		}
	}
	return nil
}

func setField(field reflect.Value, value string) error {
	// time.Duration до switch по Kind, иначе попадёт в int64
	if field.Type() == reflect.TypeOf(time.Duration(0)) {
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
	case reflect.Int, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)
	default:
		return fmt.Errorf("unsupported kind %s", field.Kind())
	}
	return nil
}
