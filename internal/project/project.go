package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arcanaland/pokedon/internal/picture"
	"github.com/arcanaland/pokedon/internal/values"
)

// Options names the inputs of a card project. Empty DefaultsPath means no
// defaults; empty PicturesDir means the "pictures" sibling of ConfigsDir.
type Options struct {
	TemplatePath string
	DefaultsPath string
	ConfigsDir   string
	PicturesDir  string
	OutDir       string
}

// Project is a resolved set of card inputs
type Project struct {
	TemplatePath string
	DefaultsPath string
	ConfigsDir   string
	PicturesDir  string
	OutDir       string
}

// NotFoundError reports a missing project input
type NotFoundError struct {
	What string
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.What, e.Path)
}

// Open resolves the project paths and checks that the inputs exist
func Open(opts Options) (*Project, error) {
	if opts.TemplatePath == "" {
		return nil, errors.New("template path is required")
	}
	if opts.ConfigsDir == "" {
		return nil, errors.New("configs dir is required")
	}
	if opts.OutDir == "" {
		return nil, errors.New("out dir is required")
	}

	p := &Project{}
	var err error
	if p.TemplatePath, err = filepath.Abs(opts.TemplatePath); err != nil {
		return nil, err
	}
	if p.ConfigsDir, err = filepath.Abs(opts.ConfigsDir); err != nil {
		return nil, err
	}
	if p.OutDir, err = filepath.Abs(opts.OutDir); err != nil {
		return nil, err
	}
	if opts.DefaultsPath != "" {
		if p.DefaultsPath, err = filepath.Abs(opts.DefaultsPath); err != nil {
			return nil, err
		}
	}
	if opts.PicturesDir != "" {
		if p.PicturesDir, err = filepath.Abs(opts.PicturesDir); err != nil {
			return nil, err
		}
	} else {
		p.PicturesDir = filepath.Join(filepath.Dir(p.ConfigsDir), "pictures")
	}

	if _, err := os.Stat(p.TemplatePath); os.IsNotExist(err) {
		return nil, &NotFoundError{What: "template", Path: p.TemplatePath}
	}
	if p.DefaultsPath != "" {
		if _, err := os.Stat(p.DefaultsPath); os.IsNotExist(err) {
			return nil, &NotFoundError{What: "defaults", Path: p.DefaultsPath}
		}
	}
	if info, err := os.Stat(p.ConfigsDir); os.IsNotExist(err) {
		return nil, &NotFoundError{What: "configs dir", Path: p.ConfigsDir}
	} else if err == nil && !info.IsDir() {
		return nil, fmt.Errorf("configs dir is not a directory: %s", p.ConfigsDir)
	}

	return p, nil
}

// Configs lists the card config files, sorted by name
func (p *Project) Configs() ([]string, error) {
	entries, err := os.ReadDir(p.ConfigsDir)
	if err != nil {
		return nil, fmt.Errorf("error reading configs dir: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !values.IsDataFile(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(p.ConfigsDir, entry.Name()))
	}
	sort.Slice(files, func(i, j int) bool {
		return filepath.Base(files[i]) < filepath.Base(files[j])
	})
	return files, nil
}

// Defaults loads the defaults file, or an empty map when there is none
func (p *Project) Defaults() (map[string]any, error) {
	if p.DefaultsPath == "" {
		return map[string]any{}, nil
	}
	return values.Load(p.DefaultsPath)
}

// DefaultsPicture returns the picture sharing the defaults file's stem, or ""
func (p *Project) DefaultsPicture() string {
	if p.DefaultsPath == "" {
		return ""
	}
	path, err := picture.Find(filepath.Dir(p.DefaultsPath), Stem(p.DefaultsPath))
	if err != nil {
		return ""
	}
	return path
}

// Picture resolves the card picture for a config stem, falling back to the
// defaults picture. The second result reports whether the fallback was used.
func (p *Project) Picture(stem string) (string, bool, error) {
	path, err := picture.Find(p.PicturesDir, stem)
	if err == nil {
		return path, false, nil
	}
	if !errors.Is(err, picture.ErrNotFound) {
		return "", false, err
	}
	if fallback := p.DefaultsPicture(); fallback != "" {
		return fallback, true, nil
	}
	return "", false, picture.ErrNotFound
}

// OutputPath returns the document path for an output name
func (p *Project) OutputPath(name string) string {
	return filepath.Join(p.OutDir, name+".json")
}

// Stem returns the file name without its extension
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
