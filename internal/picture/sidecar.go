package picture

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

// CropKeys are the image fields persisted in a sidecar
var CropKeys = []string{
	"croppedArea",
	"croppedAreaPixels",
	"crop",
	"zoom",
	"rotation",
	"aspect",
}

// DexStatsKey is the document caption kept stable by the sidecar
const DexStatsKey = "dexStats"

// ErrInvalidSidecar is returned when an existing sidecar is not a JSON object
var ErrInvalidSidecar = errors.New("invalid crop sidecar")

// SyncAction describes what Sync did
type SyncAction int

const (
	SyncNone SyncAction = iota
	SyncApplied
	SyncUpdated
	SyncCreated
)

func (a SyncAction) String() string {
	switch a {
	case SyncApplied:
		return "applied"
	case SyncUpdated:
		return "updated"
	case SyncCreated:
		return "created"
	default:
		return "none"
	}
}

// SidecarPath returns the crop sidecar path for a picture
func SidecarPath(picturePath string) string {
	return filepath.Join(filepath.Dir(picturePath), filepath.Base(picturePath)+".crop.json")
}

// ImageObjects collects every object found inside an "images" list at any
// depth of the document. Keys are visited in sorted order.
func ImageObjects(doc any) []map[string]any {
	var out []map[string]any
	var walk func(v any)
	walk = func(v any) {
		switch t := v.(type) {
		case map[string]any:
			keys := make([]string, 0, len(t))
			for k := range t {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				if list, ok := t[k].([]any); ok && k == "images" {
					for _, item := range list {
						if img, ok := item.(map[string]any); ok {
							out = append(out, img)
						}
					}
					continue
				}
				walk(t[k])
			}
		case []any:
			for _, item := range t {
				walk(item)
			}
		}
	}
	walk(doc)
	return out
}

// CropParams extracts the crop keys present on an image object
func CropParams(img map[string]any) map[string]any {
	params := map[string]any{}
	for _, k := range CropKeys {
		if v, ok := img[k]; ok {
			params[k] = v
		}
	}
	return params
}

// Read loads a sidecar file
func Read(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil || m == nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSidecar, path)
	}
	return m, nil
}

// Sync keeps the crop parameters and the dexStats caption stable across
// generations. An existing sidecar is the source of truth and is applied to
// doc; a missing one is created from the first image of doc.
func Sync(doc map[string]any, path string) (SyncAction, error) {
	images := ImageObjects(doc)
	if len(images) == 0 {
		return SyncNone, nil
	}

	if _, err := os.Stat(path); err == nil {
		existing, err := Read(path)
		if err != nil {
			return SyncNone, err
		}

		if applySidecar(doc, images, existing) {
			return SyncApplied, nil
		}
		if dex, ok := doc[DexStatsKey]; ok && dex != nil {
			existing[DexStatsKey] = dex
			if err := writeJSON(path, existing); err != nil {
				return SyncApplied, err
			}
			return SyncUpdated, nil
		}
		return SyncApplied, nil
	} else if !os.IsNotExist(err) {
		return SyncNone, err
	}

	sidecar := CropParams(images[0])
	if dex, ok := doc[DexStatsKey]; ok && dex != nil {
		sidecar[DexStatsKey] = dex
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return SyncNone, err
	}
	if err := writeJSON(path, sidecar); err != nil {
		return SyncNone, err
	}
	return SyncCreated, nil
}

// Apply applies an existing sidecar to doc without writing anything. It
// reports whether a sidecar was found; a missing one is not an error.
func Apply(doc map[string]any, path string) (bool, error) {
	images := ImageObjects(doc)
	if len(images) == 0 {
		return false, nil
	}
	existing, err := Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	applySidecar(doc, images, existing)
	return true, nil
}

// applySidecar copies the crop keys onto every image and a non-nil dexStats
// onto doc. It reports whether dexStats was taken from the sidecar.
func applySidecar(doc map[string]any, images []map[string]any, sidecar map[string]any) bool {
	for _, img := range images {
		for _, k := range CropKeys {
			if v, ok := sidecar[k]; ok {
				img[k] = v
			}
		}
	}
	if dex, ok := sidecar[DexStatsKey]; ok && dex != nil {
		doc[DexStatsKey] = dex
		return true
	}
	return false
}

// CropRect reads croppedAreaPixels ({x, y, width, height}) into a rectangle
func CropRect(params map[string]any) (image.Rectangle, bool) {
	area, ok := params["croppedAreaPixels"].(map[string]any)
	if !ok {
		return image.Rectangle{}, false
	}
	var vals [4]int
	for i, k := range []string{"x", "y", "width", "height"} {
		f, ok := toFloat(area[k])
		if !ok {
			return image.Rectangle{}, false
		}
		vals[i] = int(math.Round(f))
	}
	if vals[2] <= 0 || vals[3] <= 0 {
		return image.Rectangle{}, false
	}
	return image.Rect(vals[0], vals[1], vals[0]+vals[2], vals[1]+vals[3]), true
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	}
	return 0, false
}

// MarshalIndent encodes v the way generated files are written: two-space
// indentation without HTML escaping.
func MarshalIndent(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func writeJSON(path string, v any) error {
	data, err := MarshalIndent(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
