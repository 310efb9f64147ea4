package config

import (
	"encoding"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configFileEnv = "CONFIG_FILE"
	dotEnvFileEnv = "DOTENV_FILE"
)

// LoadConfig fills target from an optional YAML file (CONFIG_FILE) and then lets environment
// variables win. A .env file is loaded first when present so local runs behave like production.
//
// Env keys come from `env:"KEY"` tags or from the PARENT_CHILD field path. Slices are comma
// separated, map[string]string values are comma separated key:value pairs. Fields implementing
// encoding.TextUnmarshaler parse the raw value themselves.
func LoadConfig(target interface{}) error {
	if target == nil {
		return errors.New("config: target is nil")
	}

	val := reflect.ValueOf(target)
	if val.Kind() != reflect.Ptr || val.Elem().Kind() != reflect.Struct {
		return errors.New("config: target must be pointer to struct")
	}

	if err := loadDotEnv(); err != nil {
		return err
	}

	if path := os.Getenv(configFileEnv); path != "" {
		if err := loadYAML(path, target); err != nil {
			return err
		}
	}

	return applyEnv(val.Elem(), "")
}

// loadDotEnv never overrides variables that are already exported.
func loadDotEnv() error {
	path := os.Getenv(dotEnvFileEnv)
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}

func loadYAML(path string, target interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read file: %w", err)
	}
	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("config: decode yaml: %w", err)
	}
	return nil
}

func applyEnv(v reflect.Value, prefix string) error {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		meta := t.Field(i)
		if !field.CanSet() {
			continue
		}

		if meta.Anonymous {
			if err := applyEnv(field, prefix); err != nil {
				return err
			}
			continue
		}

		tag := meta.Tag.Get("env")
		if tag == "-" {
			continue
		}
		key := envKey(prefix, meta.Name)
		if tag != "" {
			key = envKey("", tag)
		}

		if field.Kind() == reflect.Struct {
			if err := applyEnv(field, key); err != nil {
				return err
			}
			continue
		}

		raw, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		if err := setValue(field, raw); err != nil {
			return fmt.Errorf("config: parse %s: %w", key, err)
		}
	}
	return nil
}

func envKey(prefix, name string) string {
	name = strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
	if prefix == "" {
		return name
	}
	return prefix + "_" + name
}

func setValue(field reflect.Value, raw string) error {
	if field.CanAddr() {
		if u, ok := field.Addr().Interface().(encoding.TextUnmarshaler); ok {
			return u.UnmarshalText([]byte(raw))
		}
	}
	switch field.Kind() {
	case reflect.Slice:
		return setSlice(field, raw)
	case reflect.Map:
		return setMap(field, raw)
	default:
		return setScalar(field, strings.TrimSpace(raw))
	}
}

func setScalar(field reflect.Value, raw string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Bool:
		if raw == "" {
			field.SetBool(false)
			return nil
		}
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		field.SetBool(parsed)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if raw == "" {
			field.SetInt(0)
			return nil
		}
		parsed, err := strconv.ParseInt(raw, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(parsed)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		parsed, err := strconv.ParseUint(raw, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetUint(parsed)
	case reflect.Float32, reflect.Float64:
		parsed, err := strconv.ParseFloat(raw, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetFloat(parsed)
	default:
		return fmt.Errorf("unsupported field type %s", field.Type().String())
	}
	return nil
}

// setSlice skips empty items so "1,2," and " 1, 2" both parse.
func setSlice(field reflect.Value, raw string) error {
	out := reflect.MakeSlice(field.Type(), 0, 4)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		item := reflect.New(field.Type().Elem()).Elem()
		if err := setScalar(item, part); err != nil {
			return fmt.Errorf("item %q: %w", part, err)
		}
		out = reflect.Append(out, item)
	}
	field.Set(out)
	return nil
}

func setMap(field reflect.Value, raw string) error {
	typ := field.Type()
	if typ.Key().Kind() != reflect.String || typ.Elem().Kind() != reflect.String {
		return fmt.Errorf("unsupported map type %s", typ.String())
	}
	out := reflect.MakeMap(typ)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, ":")
		if !ok {
			return fmt.Errorf("pair %q: expected key:value", pair)
		}
		out.SetMapIndex(
			reflect.ValueOf(strings.TrimSpace(key)).Convert(typ.Key()),
			reflect.ValueOf(strings.TrimSpace(value)).Convert(typ.Elem()),
		)
	}
	field.Set(out)
	return nil
}
