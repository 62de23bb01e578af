package generator

import (
	"fmt"
	"path/filepath"
)

// snippetLen is how much of a broken render is kept for diagnostics
const snippetLen = 500

// RenderError is returned when a rendered template is not a JSON object
type RenderError struct {
	Config  string
	Err     error
	Snippet string
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("JSON parse failed for %s: %v", filepath.Base(e.Config), e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

func newRenderError(config string, err error, rendered string) *RenderError {
	snippet := []rune(rendered)
	if len(snippet) > snippetLen {
		snippet = snippet[:snippetLen]
	}
	return &RenderError{Config: config, Err: err, Snippet: string(snippet)}
}

// MissingPictureError is returned when neither a card picture nor a
// defaults picture exists
type MissingPictureError struct {
	Stem        string
	PicturesDir string
	Defaults    string
}

func (e *MissingPictureError) Error() string {
	if e.Defaults == "" {
		return fmt.Sprintf("no picture found for '%s' in %s and no defaults file", e.Stem, e.PicturesDir)
	}
	return fmt.Sprintf("no picture found for '%s' in %s and no defaults image next to %s",
		e.Stem, e.PicturesDir, filepath.Base(e.Defaults))
}

// DuplicateIDError is returned when two configs normalize to the same id
type DuplicateIDError struct {
	ID     string
	Config string
	First  string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate id '%s' in %s (already used by %s)",
		e.ID, filepath.Base(e.Config), filepath.Base(e.First))
}
