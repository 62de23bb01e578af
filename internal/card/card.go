package card

import "fmt"

// Card represents one generated card document
type Card struct {
	Stem     string         // Config file name without extension (e.g., 001)
	Source   string         // Path of the config file
	ID       string         // Normalized id when an id key is configured
	Values   map[string]any // Defaults merged with the config
	Document map[string]any // Rendered template
	Picture  string         // Resolved picture path
	Fallback bool           // Picture is the defaults picture
}

// Name returns the card name from its merged values, or the stem
func (c *Card) Name() string {
	if v, ok := c.Values["name"]; ok && v != nil {
		return fmt.Sprint(v)
	}
	return c.Stem
}

// DexStats returns the rendered dexStats caption, if any
func (c *Card) DexStats() string {
	if v, ok := c.Document["dexStats"]; ok && v != nil {
		return fmt.Sprint(v)
	}
	return ""
}

// OutputName returns the base name used for the card's output file
func (c *Card) OutputName() string {
	if c.ID != "" {
		return c.ID
	}
	return c.Stem
}
