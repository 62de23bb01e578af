package values

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "001.yml", `
name: Pikadon
hp: 60
stats:
  attack: 55
  1: numeric-key
`)

	got, err := Load(path)
	require.NoError(t, err)

	want := map[string]any{
		"name": "Pikadon",
		"hp":   60,
		"stats": map[string]any{
			"attack": 55,
			"1":      "numeric-key",
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Load mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadJSONKeepsNumbers(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "002.json", `{"id": 12345678901234567890, "zoom": 1.25}`)

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, json.Number("12345678901234567890"), got["id"])
	assert.Equal(t, json.Number("1.25"), got["zoom"])
}

func TestLoadEmptyDocument(t *testing.T) {
	dir := t.TempDir()

	got, err := Load(writeFile(t, dir, "empty.yml", ""))
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = Load(writeFile(t, dir, "empty.json", ""))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLoadRejects(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(writeFile(t, dir, "list.yml", "- a\n- b\n"))
	assert.ErrorContains(t, err, "object at the root")

	_, err = Load(writeFile(t, dir, "card.toml", "name = 'x'"))
	assert.ErrorContains(t, err, "unsupported format")

	_, err = Load(writeFile(t, dir, "bad.json", "{"))
	assert.ErrorContains(t, err, "error parsing bad.json")

	_, err = Load(filepath.Join(dir, "missing.yml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMerge(t *testing.T) {
	base := map[string]any{
		"name":  "Default",
		"type":  "normal",
		"stats": map[string]any{"hp": 50, "attack": 40},
		"tags":  []any{"a"},
	}
	override := map[string]any{
		"name":  "Pikadon",
		"type":  nil,
		"stats": map[string]any{"hp": 60},
		"tags":  []any{"b"},
		"extra": true,
	}

	got := Merge(base, override)
	want := map[string]any{
		"name":  "Pikadon",
		"type":  "normal",
		"stats": map[string]any{"hp": 60, "attack": 40},
		"tags":  []any{"b"},
		"extra": true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Merge mismatch (-want +got):\n%s", diff)
	}

	// inputs untouched
	assert.Equal(t, 50, base["stats"].(map[string]any)["hp"])
	assert.Equal(t, "Default", base["name"])
}

func TestMergeMapReplacesScalar(t *testing.T) {
	got := Merge(map[string]any{"art": "plain"}, map[string]any{"art": map[string]any{"x": 1}})
	assert.Equal(t, map[string]any{"x": 1}, got["art"])

	got = Merge(map[string]any{"art": map[string]any{"x": 1}}, map[string]any{"art": "plain"})
	assert.Equal(t, "plain", got["art"])
}

func TestLookup(t *testing.T) {
	v := map[string]any{"a": map[string]any{"b": map[string]any{"c": 3}}, "n": nil}

	got, ok := Lookup(v, "a.b.c")
	assert.True(t, ok)
	assert.Equal(t, 3, got)

	_, ok = Lookup(v, "a.x")
	assert.False(t, ok)

	_, ok = Lookup(v, "a.b.c.d")
	assert.False(t, ok)

	got, ok = Lookup(v, "n")
	assert.True(t, ok)
	assert.Nil(t, got)
}

func TestRequireKeys(t *testing.T) {
	v := map[string]any{"id": 1, "stats": map[string]any{"hp": 10}}

	assert.NoError(t, RequireKeys(v, []string{"id", "stats.hp"}))
	assert.EqualError(t, RequireKeys(v, []string{"stats.speed", "name", "id"}),
		"missing required keys: name, stats.speed")
}

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		in      any
		want    string
		wantErr bool
	}{
		{in: 25, want: "25"},
		{in: " ABC-123 ", want: "ABC-123"},
		{in: "mr mime/galar", want: "mr-mime-galar"},
		{in: "é.v_1", want: "-.v_1"},
		{in: nil, wantErr: true},
		{in: "   ", wantErr: true},
	}
	for _, tt := range tests {
		got, err := NormalizeID(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %v", tt.in)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestIsDataFile(t *testing.T) {
	assert.True(t, IsDataFile("a/001.yml"))
	assert.True(t, IsDataFile("002.YAML"))
	assert.True(t, IsDataFile("x.json"))
	assert.False(t, IsDataFile("x.crop.json.bak"))
	assert.False(t, IsDataFile("pic.jpg"))
}
