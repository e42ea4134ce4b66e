// Package config provides the configuration object handed to process factories and edges.
//
// A Config is a flat mapping from option name to string value. Options may be grouped in
// blocks using the "block:key" naming scheme; Subblock extracts such a group.
package config

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// BlockSep separates a block name from the key inside it.
const BlockSep = ":"

var (
	ErrNoSuchKey = errors.New("no such configuration key")
	ErrBadValue  = errors.New("bad configuration value")
)

// Config maps option names to values.
type Config map[string]string

// Empty returns a config without any option.
func Empty() Config {
	return Config{}
}

// FromYAML reads a YAML document into a Config. Nested mappings are flattened into blocks,
// so `edge: {capacity: 4}` becomes the key "edge:capacity".
func FromYAML(r io.Reader) (Config, error) {
	var raw map[string]any

	err := yaml.NewDecoder(r).Decode(&raw)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Empty(), nil
		}

		return nil, errors.Wrap(err, "unable to decode yaml configuration")
	}

	cfg := Empty()

	err = flatten(cfg, "", raw)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// flatten accepts scalars and string keyed mappings only. Sequences and mappings with other keys have
// no "block:key" form.
func flatten(cfg Config, prefix string, raw map[string]any) error {
	for k, v := range raw {
		key := k
		if prefix != "" {
			key = prefix + BlockSep + k
		}

		switch val := v.(type) {
		case map[string]any:
			err := flatten(cfg, key, val)
			if err != nil {
				return err
			}
		case nil:
			cfg[key] = ""
		case []any:
			return errors.Wrapf(ErrBadValue, "%q is a sequence", key)
		case map[any]any:
			return errors.Wrapf(ErrBadValue, "%q is a mapping with non string keys", key)
		default:
			cfg[key] = fmt.Sprint(val)
		}
	}

	return nil
}

func (c Config) Has(key string) bool {
	_, ok := c[key]

	return ok
}

func (c Config) Get(key string) (string, error) {
	v, ok := c[key]
	if !ok {
		return "", errors.Wrapf(ErrNoSuchKey, "%q", key)
	}

	return v, nil
}

func (c Config) GetOr(key, def string) string {
	v, ok := c[key]
	if !ok {
		return def
	}

	return v
}

// Int reads key as an integer, returning def when the key is absent.
func (c Config) Int(key string, def int) (int, error) {
	v, ok := c[key]
	if !ok {
		return def, nil
	}

	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, errors.Wrapf(ErrBadValue, "%q is not an integer: %q", key, v)
	}

	return i, nil
}

// Bool reads key as a boolean, returning def when the key is absent.
func (c Config) Bool(key string, def bool) (bool, error) {
	v, ok := c[key]
	if !ok {
		return def, nil
	}

	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return false, errors.Wrapf(ErrBadValue, "%q is not a boolean: %q", key, v)
	}

	return b, nil
}

// Keys returns the sorted option names.
func (c Config) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// Subblock returns the options under block with the block prefix removed.
func (c Config) Subblock(block string) Config {
	prefix := block + BlockSep
	sub := Empty()

	for k, v := range c {
		if rest, ok := strings.CutPrefix(k, prefix); ok {
			sub[rest] = v
		}
	}

	return sub
}

// Merge returns a new config holding c overridden by other.
func (c Config) Merge(other Config) Config {
	merged := make(Config, len(c)+len(other))
	for k, v := range c {
		merged[k] = v
	}

	for k, v := range other {
		merged[k] = v
	}

	return merged
}
