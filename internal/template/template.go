// Package template renders card templates: JSON text containing
// {{ dotted.key }} placeholders.
package template

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/arcanaland/pokedon/internal/values"
)

var placeholderRE = regexp.MustCompile(`{{\s*([a-zA-Z0-9_.-]+)\s*}}`)

// Template holds the raw template text
type Template struct {
	text string
}

// MissingError lists placeholders that had no value during a strict render
type MissingError struct {
	Keys []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("missing placeholders: %s", strings.Join(e.Keys, ", "))
}

// Parse wraps template text
func Parse(text string) *Template {
	return &Template{text: text}
}

// ParseFile reads a template from disk
func ParseFile(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(string(data)), nil
}

// Text returns the raw template
func (t *Template) Text() string {
	return t.text
}

// Placeholders returns the sorted unique keys referenced by the template
func (t *Template) Placeholders() []string {
	seen := map[string]bool{}
	var keys []string
	for _, m := range placeholderRE.FindAllStringSubmatch(t.text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			keys = append(keys, m[1])
		}
	}
	sort.Strings(keys)
	return keys
}

// Unresolved returns the placeholders that have no non-nil value in vals
func (t *Template) Unresolved(vals map[string]any) []string {
	var missing []string
	for _, k := range t.Placeholders() {
		if v, ok := values.Lookup(vals, k); !ok || v == nil {
			missing = append(missing, k)
		}
	}
	return missing
}

// Render substitutes every placeholder. Unresolved placeholders are kept
// verbatim unless strict is set, in which case a *MissingError is returned.
func (t *Template) Render(vals map[string]any, strict bool) (string, error) {
	var missing []string
	seen := map[string]bool{}
	var renderErr error

	out := placeholderRE.ReplaceAllStringFunc(t.text, func(match string) string {
		key := placeholderRE.FindStringSubmatch(match)[1]
		v, ok := values.Lookup(vals, key)
		if !ok || v == nil {
			if !seen[key] {
				seen[key] = true
				missing = append(missing, key)
			}
			return match
		}
		s, err := format(v)
		if err != nil && renderErr == nil {
			renderErr = fmt.Errorf("placeholder %s: %w", key, err)
		}
		return s
	})
	if renderErr != nil {
		return "", renderErr
	}
	if strict && len(missing) > 0 {
		sort.Strings(missing)
		return "", &MissingError{Keys: missing}
	}
	return out, nil
}

// format converts a value into its template text
func format(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case bool:
		return strconv.FormatBool(t), nil
	case json.Number:
		return t.String(), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), nil
	case map[string]any, []any:
		var b strings.Builder
		enc := json.NewEncoder(&b)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(t); err != nil {
			return "", err
		}
		return strings.TrimSuffix(b.String(), "\n"), nil
	default:
		return fmt.Sprint(v), nil
	}
}
