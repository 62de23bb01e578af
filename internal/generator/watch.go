package generator

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/arcanaland/pokedon/internal/picture"
	"github.com/arcanaland/pokedon/internal/project"
	"github.com/arcanaland/pokedon/internal/values"
)

// Watch runs the generator once, then again whenever a project input
// changes, until ctx is cancelled. onRun receives every outcome.
func (g *Generator) Watch(ctx context.Context, onRun func(*Report, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	for _, dir := range g.watchDirs() {
		if err := watcher.Add(dir); err != nil {
			return err
		}
		g.logger.Debug("Watching", zap.String("dir", dir))
	}

	onRun(g.Run(ctx))

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !g.relevant(event) {
				continue
			}
			g.logger.Debug("Change detected", zap.String("path", event.Name), zap.Stringer("op", event.Op))
			if timer == nil {
				timer = time.NewTimer(g.debounce)
			} else {
				timer.Reset(g.debounce)
			}
			fire = timer.C
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			g.logger.Warn("Watcher error", zap.Error(err))
		case <-fire:
			fire = nil
			onRun(g.Run(ctx))
		}
	}
}

// watchDirs lists the existing directories holding project inputs
func (g *Generator) watchDirs() []string {
	candidates := []string{
		filepath.Dir(g.project.TemplatePath),
		g.project.ConfigsDir,
		g.project.PicturesDir,
	}
	if g.project.DefaultsPath != "" {
		candidates = append(candidates, filepath.Dir(g.project.DefaultsPath))
	}

	seen := map[string]bool{}
	var dirs []string
	for _, dir := range candidates {
		if seen[dir] {
			continue
		}
		seen[dir] = true
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// relevant reports whether an event touches an input. Sidecars and the
// out dir are written by the generator itself and never trigger a run.
func (g *Generator) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	path := filepath.Clean(event.Name)
	if strings.HasSuffix(path, ".crop.json") {
		return false
	}
	out := g.project.OutDir
	if path == out || strings.HasPrefix(path, out+string(filepath.Separator)) {
		return false
	}
	if g.opts.BundlePath != "" && path == filepath.Clean(g.opts.BundlePath) {
		return false
	}

	switch dir := filepath.Dir(path); {
	case path == g.project.TemplatePath:
		return true
	case g.project.DefaultsPath != "" && path == g.project.DefaultsPath:
		return true
	case dir == g.project.ConfigsDir && values.IsDataFile(path):
		return true
	case dir == g.project.PicturesDir && picture.IsPicture(path):
		return true
	case g.project.DefaultsPath != "" && dir == filepath.Dir(g.project.DefaultsPath) &&
		picture.IsPicture(path) && project.Stem(path) == project.Stem(g.project.DefaultsPath):
		return true
	}
	return false
}
