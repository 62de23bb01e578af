package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const sampleTemplate = `{
  "name": "{{ name }}",
  "hp": {{ hp }},
  "type": "{{ type }}",
  "attacks": {{ attacks }},
  "dexStats": "{{ dex.caption }}",
  "images": [
    {
      "src": "",
      "crop": { "x": 0, "y": 0 },
      "zoom": {{ crop.zoom }},
      "rotation": 0,
      "aspect": 0.75
    }
  ]
}
`

const sampleDefaults = `hp: 50
type: Colorless
attacks: []
dex:
  caption: "No. ??? Unknown Pokedon. HT: ?' WT: ? lbs."
crop:
  zoom: 1
`

const sampleConfig = `name: Pikadon
hp: 60
type: Lightning
attacks:
  - name: Thunder Shock
    damage: 20
dex:
  caption: "No. 025 Mouse Pokedon. HT: 1'04 WT: 13.2 lbs."
`

// initCmd scaffolds a card project
var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create a card project and point the config file at it",
	Long: `Init creates a sample template, defaults file and card config in dir
(the current directory by default), together with empty pictures and out
directories. Existing files are left untouched. The config file is then
updated so that generate and validate work without flags.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		dir, err := filepath.Abs(dir)
		if err != nil {
			return toExitError(err)
		}

		out := cmd.OutOrStdout()
		for _, sub := range []string{"configs", "pictures", "out"} {
			if err := os.MkdirAll(filepath.Join(dir, sub), 0755); err != nil {
				return toExitError(fmt.Errorf("error creating %s directory: %w", sub, err))
			}
		}

		files := []struct {
			path    string
			content string
		}{
			{filepath.Join(dir, "template.json"), sampleTemplate},
			{filepath.Join(dir, "defaults.yml"), sampleDefaults},
			{filepath.Join(dir, "configs", "001.yml"), sampleConfig},
		}
		for _, f := range files {
			if isFile(f.path) {
				logger.Debug("Keeping existing file", zap.String("path", f.path))
				continue
			}
			if err := os.WriteFile(f.path, []byte(f.content), 0644); err != nil {
				return toExitError(fmt.Errorf("error writing %s: %w", f.path, err))
			}
			fmt.Fprintln(out, "Created:", f.path)
		}

		gc := &appConfig.Generate
		gc.Template = filepath.Join(dir, "template.json")
		gc.Defaults = filepath.Join(dir, "defaults.yml")
		gc.ConfigsDir = filepath.Join(dir, "configs")
		gc.PicturesDir = filepath.Join(dir, "pictures")
		gc.OutDir = filepath.Join(dir, "out")

		if err := appConfig.Save(configFile()); err != nil {
			return toExitError(err)
		}

		fmt.Fprintln(out, "Project initialized at:", dir)
		fmt.Fprintln(out, "Config file initialized at:", configFile())
		fmt.Fprintln(out, "Add pictures named like the configs (e.g. pictures/001.png) and run 'pokedon generate'.")
		return nil
	},
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
