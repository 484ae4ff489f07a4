package config

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/glorpus-work/acquire/pkg/errors"
)

// SetValue sets a configuration value by its dotted key, for example
// "settings.log_level" or "acquire.pdiffs". Booleans and integers are parsed
// from value.
func (c *Config) SetValue(key, value string) error {
	field, ok := c.lookup(key)
	if !ok {
		return errors.ErrUnknownConfigKeyWithName(key)
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Bool:
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w for %s: %s", errors.ErrInvalidBoolValue, key, value)
		}
		field.SetBool(boolVal)
	case reflect.Int:
		intVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w for %s: %s", errors.ErrInvalidIntValue, key, value)
		}
		field.SetInt(int64(intVal))
	default:
		return errors.ErrUnknownConfigKeyWithName(key)
	}
	return nil
}

// GetValue returns the value of a dotted key as a string.
func (c *Config) GetValue(key string) (string, error) {
	field, ok := c.lookup(key)
	if !ok {
		return "", errors.ErrUnknownConfigKeyWithName(key)
	}
	return formatValue(field), nil
}

// Keys lists every settable key in sorted order.
func (c *Config) Keys() []string {
	keys := make([]string, 0, len(c.ToMap()))
	for k := range c.ToMap() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ToMap flattens the configuration into dotted keys.
// This is useful for displaying the configuration.
func (c *Config) ToMap() map[string]string {
	result := make(map[string]string)

	root := reflect.ValueOf(c).Elem()
	for i := 0; i < root.NumField(); i++ {
		section := root.Field(i)
		sectionKey := yamlKey(root.Type().Field(i))
		if sectionKey == "" {
			continue
		}
		for j := 0; j < section.NumField(); j++ {
			key := yamlKey(section.Type().Field(j))
			if key == "" {
				continue
			}
			result[sectionKey+"."+key] = formatValue(section.Field(j))
		}
	}

	return result
}

func (c *Config) lookup(key string) (reflect.Value, bool) {
	sectionKey, fieldKey, ok := strings.Cut(key, ".")
	if !ok {
		return reflect.Value{}, false
	}

	root := reflect.ValueOf(c).Elem()
	for i := 0; i < root.NumField(); i++ {
		if yamlKey(root.Type().Field(i)) != sectionKey {
			continue
		}
		section := root.Field(i)
		for j := 0; j < section.NumField(); j++ {
			if yamlKey(section.Type().Field(j)) == fieldKey {
				return section.Field(j), true
			}
		}
	}
	return reflect.Value{}, false
}

// yamlKey handles yaml tags with options (e.g., "lists_dir,omitempty").
func yamlKey(field reflect.StructField) string {
	tag := field.Tag.Get("yaml")
	if tag == "" || tag == "-" {
		return ""
	}
	return strings.Split(tag, ",")[0]
}

func formatValue(v reflect.Value) string {
	switch v.Kind() {
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.String:
		return v.String()
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}
