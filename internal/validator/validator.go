package validator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/arcanaland/pokedon/internal/card"
	"github.com/arcanaland/pokedon/internal/generator"
	"github.com/arcanaland/pokedon/internal/picture"
	"github.com/arcanaland/pokedon/internal/project"
	"github.com/arcanaland/pokedon/internal/template"
)

type ValidationResults struct {
	Errors   []string
	Warnings []string
}

type Validator struct {
	Project *project.Project
	Options generator.Options
	Results ValidationResults
}

func NewValidator(p *project.Project, opts generator.Options) *Validator {
	return &Validator{
		Project: p,
		Options: opts,
		Results: ValidationResults{},
	}
}

// Validate renders every card in memory and reports problems without
// writing any output. The returned error is reserved for failures that stop
// validation altogether.
func (v *Validator) Validate(ctx context.Context) (ValidationResults, error) {
	tpl, err := template.ParseFile(v.Project.TemplatePath)
	if err != nil {
		v.Results.Errors = append(v.Results.Errors, fmt.Sprintf("error reading template: %v", err))
		return v.Results, nil
	}
	v.validateTemplate(tpl)

	if _, err := v.Project.Defaults(); err != nil {
		v.Results.Errors = append(v.Results.Errors, fmt.Sprintf("error loading defaults: %v", err))
		return v.Results, nil
	}

	configs, err := v.Project.Configs()
	if err != nil {
		return v.Results, err
	}
	if len(configs) == 0 {
		v.Results.Warnings = append(v.Results.Warnings,
			fmt.Sprintf("no configs found in %s", v.Project.ConfigsDir))
		return v.Results, nil
	}

	if v.Project.DefaultsPath != "" && v.Project.DefaultsPicture() == "" {
		v.Results.Warnings = append(v.Results.Warnings, "no defaults picture found next to the defaults file")
	}

	// Render without strict mode so that unresolved placeholders surface
	// as findings instead of stopping the card.
	opts := v.Options
	opts.Strict = false
	gen := generator.New(v.Project, opts, nil)

	seen := map[string]string{}
	for _, path := range configs {
		if err := ctx.Err(); err != nil {
			return v.Results, err
		}
		v.validateConfig(ctx, gen, tpl, path, seen)
	}

	return v.Results, nil
}

// validateTemplate checks the template structure
func (v *Validator) validateTemplate(tpl *template.Template) {
	if len(tpl.Placeholders()) == 0 {
		v.Results.Warnings = append(v.Results.Warnings, "template has no placeholders")
	}
	if !strings.Contains(tpl.Text(), `"images"`) {
		v.Results.Warnings = append(v.Results.Warnings,
			"template has no \"images\" list, pictures will not be embedded")
	}
}

// validateConfig renders a single card and records its problems
func (v *Validator) validateConfig(ctx context.Context, gen *generator.Generator, tpl *template.Template,
	path string, seen map[string]string) {
	name := filepath.Base(path)

	c, err := gen.Render(ctx, path)
	if err != nil {
		var renderErr *generator.RenderError
		var missingPic *generator.MissingPictureError
		switch {
		case errors.As(err, &renderErr):
			v.Results.Errors = append(v.Results.Errors,
				fmt.Sprintf("%s: rendered document is not a JSON object: %v", name, renderErr.Err))
		case errors.As(err, &missingPic):
			v.Results.Errors = append(v.Results.Errors, fmt.Sprintf("%s: %v", name, missingPic))
		default:
			v.Results.Errors = append(v.Results.Errors, fmt.Sprintf("%s: %v", name, err))
		}
		return
	}

	v.validatePlaceholders(tpl, c, name)

	if c.Fallback {
		v.Results.Warnings = append(v.Results.Warnings,
			fmt.Sprintf("%s: no picture in %s, using %s", name, v.Project.PicturesDir, filepath.Base(c.Picture)))
	}

	if c.ID != "" {
		if first, dup := seen[c.ID]; dup {
			v.Results.Errors = append(v.Results.Errors,
				fmt.Sprintf("%s: duplicate id '%s' (already used by %s)", name, c.ID, first))
		} else {
			seen[c.ID] = name
		}
	}

	v.validateSidecar(c, name)
}

// validatePlaceholders reports template keys the card leaves unresolved
func (v *Validator) validatePlaceholders(tpl *template.Template, c *card.Card, name string) {
	missing := tpl.Unresolved(c.Values)
	if len(missing) == 0 {
		return
	}
	msg := fmt.Sprintf("%s: unresolved placeholders: %s", name, strings.Join(missing, ", "))
	if v.Options.Strict {
		v.Results.Errors = append(v.Results.Errors, msg)
	} else {
		v.Results.Warnings = append(v.Results.Warnings, msg)
	}
}

// validateSidecar checks the crop sidecar of the card's picture, if present
func (v *Validator) validateSidecar(c *card.Card, name string) {
	path := picture.SidecarPath(c.Picture)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return
	}
	params, err := picture.Read(path)
	if err != nil {
		v.Results.Warnings = append(v.Results.Warnings,
			fmt.Sprintf("%s: unreadable crop sidecar %s", name, filepath.Base(path)))
		return
	}
	if _, ok := params["croppedAreaPixels"]; ok {
		if _, ok := picture.CropRect(params); !ok {
			v.Results.Warnings = append(v.Results.Warnings,
				fmt.Sprintf("%s: croppedAreaPixels in %s is not a valid rectangle", name, filepath.Base(path)))
		}
	}
}
