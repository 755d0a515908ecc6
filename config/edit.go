package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"

	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/kplay-cli/kplay/constant"
	"github.com/kplay-cli/kplay/where"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// UnknownKeyError reports a key missing from Default along with the closest registered one.
type UnknownKeyError struct {
	Key     string
	Closest string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("unknown key %s, did you mean %s?", e.Key, e.Closest)
}

// Lookup returns the registered field for k.
func Lookup(k string) (Field, error) {
	field, ok := Default[k]
	if !ok {
		return Field{}, &UnknownKeyError{Key: k, Closest: Closest(k)}
	}
	return field, nil
}

// Closest returns the registered key with the smallest edit distance to k.
func Closest(k string) string {
	return lo.MinBy(Keys(), func(a, b string) bool {
		return levenshtein.Distance(k, a) < levenshtein.Distance(k, b)
	})
}

// Keys returns every registered key, sorted.
func Keys() []string {
	keys := lo.Keys(Default)
	sort.Strings(keys)
	return keys
}

// Fields returns the fields for keys, or every field when keys is empty, sorted by key.
func Fields(keys ...string) ([]Field, error) {
	if len(keys) == 0 {
		keys = Keys()
	}

	fields := make([]Field, 0, len(keys))
	for _, k := range keys {
		field, err := Lookup(k)
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}

	sort.Slice(fields, func(i, j int) bool {
		return fields[i].Key < fields[j].Key
	})
	return fields, nil
}

// Parse converts raw command-line values to the type of the default registered for k.
func Parse(k string, raw []string) (any, error) {
	field, err := Lookup(k)
	if err != nil {
		return nil, err
	}

	if _, ok := field.Value.([]string); ok {
		return raw, nil
	}
	if len(raw) != 1 {
		return nil, fmt.Errorf("%s takes exactly one value, got %d", k, len(raw))
	}

	value := raw[0]
	switch field.Value.(type) {
	case string:
		return value, nil
	case int:
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid integer value: %s", value)
		}
		return parsed, nil
	case float64:
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number value: %s", value)
		}
		return parsed, nil
	case bool:
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("invalid boolean value: %s", value)
		}
		return parsed, nil
	default:
		return nil, fmt.Errorf("%s has an unsupported type %s", k, field.typeName())
	}
}

// Set parses raw for k and stores it in memory. Call Write to persist it.
func Set(k string, raw []string) (any, error) {
	value, err := Parse(k, raw)
	if err != nil {
		return nil, err
	}

	viper.Set(k, value)
	return value, nil
}

// Reset restores keys to their defaults in memory, or every key when none are given.
func Reset(keys ...string) error {
	fields, err := Fields(keys...)
	if err != nil {
		return err
	}

	for _, field := range fields {
		viper.Set(field.Key, field.Value)
	}
	return nil
}

// File is the path of the TOML configuration file.
func File() string {
	return filepath.Join(where.Config(), constant.Kplay+".toml")
}

// Write persists the in-memory configuration, creating the file when missing.
func Write() error {
	err := viper.WriteConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return viper.SafeWriteConfig()
	}
	return err
}
