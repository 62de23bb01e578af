package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/arcanaland/pokedon/internal/picture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func layout(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"template.json":      `{"name": "{{ name }}"}`,
		"defaults.yml":       "name: Default\n",
		"defaults.png":       "png",
		"configs/002.yml":    "name: Two\n",
		"configs/001.yaml":   "name: One\n",
		"configs/003.json":   `{"name": "Three"}`,
		"configs/notes.txt":  "ignored",
		"pictures/001.jpg":   "jpg",
		"pictures/sub/x.jpg": "nested",
	}
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(root, "configs", "archive.yml"), 0755))
	return root
}

func open(t *testing.T, root string) *Project {
	t.Helper()
	p, err := Open(Options{
		TemplatePath: filepath.Join(root, "template.json"),
		DefaultsPath: filepath.Join(root, "defaults.yml"),
		ConfigsDir:   filepath.Join(root, "configs"),
		OutDir:       filepath.Join(root, "out"),
	})
	require.NoError(t, err)
	return p
}

func TestOpenDefaultsPicturesDir(t *testing.T) {
	root := layout(t)
	p := open(t, root)
	assert.Equal(t, filepath.Join(root, "pictures"), p.PicturesDir)
}

func TestOpenMissingInputs(t *testing.T) {
	root := layout(t)

	tests := []struct {
		name string
		opts Options
		what string
	}{
		{"template", Options{TemplatePath: filepath.Join(root, "nope.json"), ConfigsDir: root, OutDir: root}, "template"},
		{"defaults", Options{TemplatePath: filepath.Join(root, "template.json"), DefaultsPath: filepath.Join(root, "nope.yml"), ConfigsDir: root, OutDir: root}, "defaults"},
		{"configs", Options{TemplatePath: filepath.Join(root, "template.json"), ConfigsDir: filepath.Join(root, "nope"), OutDir: root}, "configs dir"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(tt.opts)
			var nf *NotFoundError
			require.True(t, errors.As(err, &nf), "got %v", err)
			assert.Equal(t, tt.what, nf.What)
		})
	}

	_, err := Open(Options{ConfigsDir: root, OutDir: root})
	assert.EqualError(t, err, "template path is required")
}

func TestConfigsSorted(t *testing.T) {
	root := layout(t)
	p := open(t, root)

	files, err := p.Configs()
	require.NoError(t, err)
	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	assert.Equal(t, []string{"001.yaml", "002.yml", "003.json"}, names)
}

func TestPictureFallback(t *testing.T) {
	root := layout(t)
	p := open(t, root)

	path, fallback, err := p.Picture("001")
	require.NoError(t, err)
	assert.False(t, fallback)
	assert.Equal(t, filepath.Join(root, "pictures", "001.jpg"), path)

	path, fallback, err = p.Picture("002")
	require.NoError(t, err)
	assert.True(t, fallback)
	assert.Equal(t, filepath.Join(root, "defaults.png"), path)

	require.NoError(t, os.Remove(filepath.Join(root, "defaults.png")))
	_, _, err = p.Picture("002")
	assert.ErrorIs(t, err, picture.ErrNotFound)
}

func TestDefaultsOptional(t *testing.T) {
	root := layout(t)
	p, err := Open(Options{
		TemplatePath: filepath.Join(root, "template.json"),
		ConfigsDir:   filepath.Join(root, "configs"),
		OutDir:       filepath.Join(root, "out"),
	})
	require.NoError(t, err)

	d, err := p.Defaults()
	require.NoError(t, err)
	assert.Empty(t, d)
	assert.Empty(t, p.DefaultsPicture())
}

func TestStemAndOutputPath(t *testing.T) {
	assert.Equal(t, "001", Stem("/a/b/001.yml"))
	assert.Equal(t, "defaults", Stem("defaults.yml"))

	p := &Project{OutDir: "/out"}
	assert.Equal(t, filepath.Join("/out", "25.json"), p.OutputPath("25"))
}
