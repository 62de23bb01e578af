// Package picture finds card artwork, embeds it as data URIs and keeps the
// crop sidecar files next to it in sync.
package picture

import (
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// Extensions in lookup priority order
var Extensions = []string{".jpg", ".jpeg", ".png", ".webp"}

// ErrNotFound is returned when no picture matches a stem
var ErrNotFound = errors.New("picture not found")

const defaultMIME = "image/jpeg"

// IsPicture reports whether path has a supported picture extension
func IsPicture(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Find looks for dir/stem with one of the supported extensions. Exact
// lower-case extensions are tried first, then any stem.* file whose
// extension matches case-insensitively.
func Find(dir, stem string) (string, error) {
	if dir == "" || stem == "" {
		return "", ErrNotFound
	}

	for _, ext := range Extensions {
		path := filepath.Join(dir, stem+ext)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path, nil
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", err
	}
	for _, entry := range entries {
		name := entry.Name()
		ext := filepath.Ext(name)
		if strings.TrimSuffix(name, ext) != stem || !IsPicture(name) {
			continue
		}
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path, nil
		}
	}

	return "", ErrNotFound
}

// MIMEType guesses the picture's media type from its extension
func MIMEType(path string) string {
	t := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if t == "" {
		return defaultMIME
	}
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	return t
}

// DataURI reads the picture and returns it as a base64 data URI
func DataURI(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("error reading picture: %w", err)
	}
	return "data:" + MIMEType(path) + ";base64," + base64.StdEncoding.EncodeToString(raw), nil
}

// InjectSource sets src on each object of the document's top-level images
// list that already has a src key. Returns the number of updated images.
func InjectSource(doc map[string]any, uri string) int {
	images, ok := doc["images"].([]any)
	if !ok {
		return 0
	}
	n := 0
	for _, item := range images {
		img, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if _, ok := img["src"]; ok {
			img["src"] = uri
			n++
		}
	}
	return n
}
