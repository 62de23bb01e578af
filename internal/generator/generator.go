// Package generator turns a card project into rendered card documents.
//
// Each config is merged over the defaults, rendered through the template,
// parsed as JSON and given its picture as a data URI. Rendering runs on a
// bounded worker pool; sidecar syncing and file writes then happen one card
// at a time in config-name order, so the output never depends on
// scheduling.
package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/arcanaland/pokedon/internal/card"
	"github.com/arcanaland/pokedon/internal/config"
	"github.com/arcanaland/pokedon/internal/picture"
	"github.com/arcanaland/pokedon/internal/project"
	"github.com/arcanaland/pokedon/internal/template"
	"github.com/arcanaland/pokedon/internal/values"
)

// Options tunes a generation run
type Options struct {
	Strict      bool     // fail on unresolved placeholders
	IDKey       string   // values key naming each card; empty uses the config stem
	RequireKeys []string // dotted keys every card must define
	Workers     int      // concurrent renders
	BundlePath  string   // also write every document as one JSON array
}

// Result describes one written card
type Result struct {
	Card    *card.Card
	Output  string
	Sidecar picture.SyncAction
}

// Report summarizes a run
type Report struct {
	Results []Result
	Bundle  string
}

// Generator renders the cards of a project
type Generator struct {
	project  *project.Project
	opts     Options
	logger   *zap.Logger
	debounce time.Duration
	dataURI  func(path string) (string, error)
}

// New creates a generator
func New(p *project.Project, opts Options, logger *zap.Logger) *Generator {
	if opts.Workers <= 0 {
		opts.Workers = config.DefaultWorkers
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		project:  p,
		opts:     opts,
		logger:   logger,
		debounce: 250 * time.Millisecond,
		dataURI:  picture.DataURI,
	}
}

// inputs are loaded once per run and shared by the workers
type inputs struct {
	tpl      *template.Template
	defaults map[string]any
	uris     *uriCache
}

func (g *Generator) loadInputs() (*inputs, error) {
	tpl, err := template.ParseFile(g.project.TemplatePath)
	if err != nil {
		return nil, fmt.Errorf("error reading template: %w", err)
	}
	defaults, err := g.project.Defaults()
	if err != nil {
		return nil, fmt.Errorf("error loading defaults: %w", err)
	}
	return &inputs{tpl: tpl, defaults: defaults, uris: newURICache(g.dataURI)}, nil
}

// Render runs a single config through merge, render, parse and picture
// embedding. Nothing is written.
func (g *Generator) Render(ctx context.Context, configPath string) (*card.Card, error) {
	in, err := g.loadInputs()
	if err != nil {
		return nil, err
	}
	return g.render(ctx, in, configPath)
}

func (g *Generator) render(ctx context.Context, in *inputs, configPath string) (*card.Card, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stem := project.Stem(configPath)
	cfg, err := values.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("error loading config %s: %w", stem, err)
	}
	merged := values.Merge(in.defaults, cfg)

	if len(g.opts.RequireKeys) > 0 {
		if err := values.RequireKeys(merged, g.opts.RequireKeys); err != nil {
			return nil, fmt.Errorf("config %s: %w", stem, err)
		}
	}

	c := &card.Card{Stem: stem, Source: configPath, Values: merged}
	if g.opts.IDKey != "" {
		raw, _ := values.Lookup(merged, g.opts.IDKey)
		if c.ID, err = values.NormalizeID(raw); err != nil {
			return nil, fmt.Errorf("config %s: %s: %w", stem, g.opts.IDKey, err)
		}
	}

	text, err := in.tpl.Render(merged, g.opts.Strict)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", stem, err)
	}
	if c.Document, err = decodeDocument(text); err != nil {
		return nil, newRenderError(configPath, err, text)
	}

	c.Picture, c.Fallback, err = g.project.Picture(stem)
	if errors.Is(err, picture.ErrNotFound) {
		return nil, &MissingPictureError{Stem: stem, PicturesDir: g.project.PicturesDir, Defaults: g.project.DefaultsPath}
	} else if err != nil {
		return nil, fmt.Errorf("config %s: %w", stem, err)
	}

	uri, err := in.uris.get(c.Picture)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", stem, err)
	}
	picture.InjectSource(c.Document, uri)

	return c, nil
}

// Run renders every config and writes the documents
func (g *Generator) Run(ctx context.Context) (*Report, error) {
	in, err := g.loadInputs()
	if err != nil {
		return nil, err
	}

	configs, err := g.project.Configs()
	if err != nil {
		return nil, err
	}
	if len(configs) == 0 {
		g.logger.Warn("No configs found", zap.String("dir", g.project.ConfigsDir))
		return &Report{}, nil
	}

	if ph := in.tpl.Placeholders(); len(ph) > 0 {
		g.logger.Debug("Template placeholders", zap.Int("count", len(ph)), zap.Strings("keys", ph))
	}

	cards := make([]*card.Card, len(configs))
	errs := make([]error, len(configs))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.opts.Workers)
	for i, path := range configs {
		i, path := i, path
		eg.Go(func() error {
			cards[i], errs[i] = g.render(egCtx, in, path)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// first failure in config order wins
	seen := map[string]string{}
	for i, err := range errs {
		if err != nil {
			return nil, err
		}
		c := cards[i]
		if c.ID == "" {
			continue
		}
		if first, dup := seen[c.ID]; dup {
			return nil, &DuplicateIDError{ID: c.ID, Config: c.Source, First: first}
		}
		seen[c.ID] = c.Source
	}

	if err := os.MkdirAll(g.project.OutDir, 0755); err != nil {
		return nil, fmt.Errorf("error creating out dir: %w", err)
	}

	report := &Report{Results: make([]Result, 0, len(cards))}
	for _, c := range cards {
		res, err := g.write(c)
		if err != nil {
			return report, err
		}
		report.Results = append(report.Results, res)
	}

	if g.opts.BundlePath != "" {
		docs := make([]map[string]any, len(cards))
		for i, c := range cards {
			docs[i] = c.Document
		}
		if err := writeDocument(g.opts.BundlePath, docs); err != nil {
			return report, fmt.Errorf("error writing bundle: %w", err)
		}
		report.Bundle = g.opts.BundlePath
	}

	return report, nil
}

func (g *Generator) write(c *card.Card) (Result, error) {
	sidecar := picture.SidecarPath(c.Picture)
	action, err := picture.Sync(c.Document, sidecar)
	if err != nil {
		g.logger.Warn("Crop sidecar not synced",
			zap.String("card", c.Stem), zap.String("sidecar", sidecar), zap.Error(err))
	} else if action != picture.SyncNone {
		g.logger.Debug("Crop sidecar synced",
			zap.String("card", c.Stem), zap.Stringer("action", action))
	}

	out := g.project.OutputPath(c.OutputName())
	if err := writeDocument(out, c.Document); err != nil {
		return Result{}, fmt.Errorf("error writing %s: %w", out, err)
	}
	return Result{Card: c, Output: out, Sidecar: action}, nil
}

// decodeDocument parses rendered text, which must hold exactly one object
func decodeDocument(text string) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after the document")
	}
	doc, ok := v.(map[string]any)
	if !ok {
		return nil, errors.New("document root must be an object")
	}
	return doc, nil
}

func writeDocument(path string, v any) error {
	data, err := picture.MarshalIndent(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// uriCache holds one data URI per picture path for the length of a run
type uriCache struct {
	mu   sync.Mutex
	uris map[string]string
	load func(path string) (string, error)
}

func newURICache(load func(path string) (string, error)) *uriCache {
	return &uriCache{uris: map[string]string{}, load: load}
}

func (c *uriCache) get(path string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if uri, ok := c.uris[path]; ok {
		return uri, nil
	}
	uri, err := c.load(path)
	if err != nil {
		return "", err
	}
	c.uris[path] = uri
	return uri, nil
}
