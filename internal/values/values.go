// Package values loads card data files and merges them.
package values

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Extensions lists the data file extensions Load understands
var Extensions = []string{".yml", ".yaml", ".json"}

// IsDataFile reports whether path has a supported data extension
func IsDataFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Load reads a YAML or JSON file whose root must be an object. An empty
// document yields an empty map.
func Load(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw any
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yml", ".yaml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("error parsing %s: %w", filepath.Base(path), err)
		}
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("error parsing %s: %w", filepath.Base(path), err)
		}
	default:
		return nil, fmt.Errorf("unsupported format: %s (use .json, .yml, .yaml)", filepath.Base(path))
	}

	if raw == nil {
		return map[string]any{}, nil
	}
	m, ok := normalize(raw).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s must contain an object at the root", filepath.Base(path))
	}
	return m, nil
}

// normalize converts YAML maps with non-string keys into map[string]any
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = normalize(val)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []any:
		for i, val := range t {
			t[i] = normalize(val)
		}
		return t
	default:
		return v
	}
}

// Merge returns base with override applied recursively. Nested maps are
// merged, a nil override keeps the base value, anything else replaces it.
// Neither argument is modified.
func Merge(base, override map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		if v == nil {
			if _, ok := out[k]; ok {
				continue
			}
			out[k] = nil
			continue
		}
		bm, bok := out[k].(map[string]any)
		om, ook := v.(map[string]any)
		if bok && ook {
			out[k] = Merge(bm, om)
			continue
		}
		out[k] = v
	}
	return out
}

// Lookup resolves a dotted path such as "stats.hp" through nested maps
func Lookup(values map[string]any, path string) (any, bool) {
	var cur any = values
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// RequireKeys fails when any of the dotted keys is absent
func RequireKeys(values map[string]any, keys []string) error {
	var missing []string
	for _, k := range keys {
		if _, ok := Lookup(values, k); !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("missing required keys: %s", strings.Join(missing, ", "))
	}
	return nil
}

var unsafeIDChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// NormalizeID turns an id value into a string safe for use as a file name
func NormalizeID(v any) (string, error) {
	if v == nil {
		return "", errors.New("id missing")
	}
	s := strings.TrimSpace(fmt.Sprint(v))
	if s == "" {
		return "", errors.New("id empty")
	}
	return unsafeIDChars.ReplaceAllString(s, "-"), nil
}
