package config

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"commitgen/cli/internal/erruser"
)

// keyKind describes how a settable key is typed in the TOML file.
type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindFloat
	kindDuration
)

// settableKeys are the keys "commitgen config set" accepts, with the TOML
// type each is written as. api_key is settable for completeness but the
// keychain (config set-key) is the recommended home for it.
var settableKeys = map[string]keyKind{
	"provider":        kindString,
	"model":           kindString,
	"api_key":         kindString,
	"ollama_base_url": kindString,
	"format":          kindString,
	"max_length":      kindInt,
	"max_diff_length": kindInt,
	"context_limit":   kindInt,
	"warn_threshold":  kindFloat,
	"temperature":     kindFloat,
	"num_ctx":         kindInt,
	"timeout":         kindDuration,
}

// SettableKeys returns the keys "config set" accepts, sorted.
func SettableKeys() []string {
	keys := make([]string, 0, len(settableKeys))
	for k := range settableKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// readStore loads path into a flat key map. Missing file returns an empty map.
func readStore(path string) (map[string]interface{}, error) {
	values := map[string]interface{}{}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return values, nil
		}
		return nil, erruser.New("Could not read configuration file.", err)
	}
	if _, err := toml.Decode(string(data), &values); err != nil {
		return nil, erruser.New("Invalid configuration in "+filepath.Base(path)+".", err)
	}
	return values, nil
}

// writeStore writes values to path as TOML, creating parent directories.
// The file is written 0600; it may hold an API key.
func writeStore(path string, values map[string]interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return erruser.New("Could not create the config directory.", err)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(values); err != nil {
		return erruser.New("Could not encode configuration.", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return erruser.New("Could not write configuration file.", err)
	}
	return nil
}

// coerce converts value to the TOML type for key. Validation here is
// syntactic only; semantic checks happen on Load.
func coerce(key, value string) (interface{}, error) {
	kind, ok := settableKeys[key]
	if !ok {
		return nil, erruser.New("Unknown configuration key "+strconv.Quote(key)+"; see commitgen config --help.", nil)
	}
	value = strings.TrimSpace(value)
	switch kind {
	case kindInt:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, erruser.New("Value for "+key+" must be an integer.", err)
		}
		return n, nil
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, erruser.New("Value for "+key+" must be a number.", err)
		}
		return f, nil
	case kindDuration:
		if _, err := parseDuration(value); err != nil {
			return nil, erruser.New("Value for timeout must be a duration (e.g. 90s) or seconds.", err)
		}
		return value, nil
	default:
		return value, nil
	}
}

// Set writes key=value into the TOML file at path (read-modify-write).
func Set(path, key, value string) error {
	v, err := coerce(key, value)
	if err != nil {
		return err
	}
	values, err := readStore(path)
	if err != nil {
		return err
	}
	values[key] = v
	return writeStore(path, values)
}

// Get reads key from the TOML file at path. The second return is false when
// the key is absent (or the file does not exist).
func Get(path, key string) (string, bool, error) {
	if _, ok := settableKeys[key]; !ok {
		return "", false, erruser.New("Unknown configuration key "+strconv.Quote(key)+".", nil)
	}
	values, err := readStore(path)
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	if !ok {
		return "", false, nil
	}
	switch t := v.(type) {
	case string:
		return t, true, nil
	case int64:
		return strconv.FormatInt(t, 10), true, nil
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64), true, nil
	case bool:
		return strconv.FormatBool(t), true, nil
	default:
		return "", false, erruser.New("Configuration key "+key+" has an unexpected type.", nil)
	}
}

// Unset removes key from the TOML file at path. Removing an absent key is
// not an error.
func Unset(path, key string) error {
	if _, ok := settableKeys[key]; !ok {
		return erruser.New("Unknown configuration key " + strconv.Quote(key) + ".", nil)
	}
	values, err := readStore(path)
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return writeStore(path, values)
}
