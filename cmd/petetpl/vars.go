package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pete-tpl/pete-core/value"
)

// loadVars reads a YAML document from path and converts it into a
// value.Store. YAML is decoded through the generic map[string]interface{}
// path yaml.v3 documents for "decode into an interface{}", then folded into
// the engine's own Value variant one field at a time.
func loadVars(path string) (value.Store, error) {
	if path == "" {
		return value.Store{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading vars file: %w", err)
	}
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing vars file as YAML: %w", err)
	}
	return storeFromMap(raw), nil
}

func storeFromMap(raw map[string]interface{}) value.Store {
	store := make(value.Store, len(raw))
	for k, v := range raw {
		store[k] = valueFromAny(v)
	}
	return store
}

func valueFromAny(v interface{}) value.Value {
	switch t := v.(type) {
	case bool:
		return value.Bool(t)
	case int:
		return value.Int(int64(t))
	case int64:
		return value.Int(t)
	case float64:
		// YAML integers decode as int in yaml.v3 already; a float64 here
		// genuinely has a fractional part's worth of precision intent.
		return value.Float(t)
	case string:
		return value.Str(t)
	case map[string]interface{}:
		return value.Struct(storeFromMap(t))
	case nil:
		return value.Str("")
	default:
		return value.Str(fmt.Sprintf("%v", t))
	}
}
