package cmd

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	colorize "github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/arcanaland/pokedon/internal/card"
	"github.com/arcanaland/pokedon/internal/config"
	"github.com/arcanaland/pokedon/internal/generator"
	"github.com/arcanaland/pokedon/internal/picture"
	"github.com/arcanaland/pokedon/internal/preview"
	"github.com/arcanaland/pokedon/internal/values"
)

const previewSpacing = 4

var previewCmd = &cobra.Command{
	Use:   "preview [config]",
	Short: "Display a card with its cropped picture as ANSI art",
	Long: `Preview renders a single card in memory and shows its picture as ANSI
terminal art next to the card details. The picture is cropped with the
parameters stored in its crop sidecar, or with those of the card's first
image when no sidecar exists yet.

The config may be given as a path or as a stem inside the configs directory.

Examples:
  pokedon preview 001
  pokedon preview ./configs/025.yml --width 60`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, opts, err := openProject(cmd)
		if err != nil {
			return err
		}

		configPath := args[0]
		if !values.IsDataFile(configPath) {
			if configPath, err = findConfig(p.ConfigsDir, args[0]); err != nil {
				return toExitError(err)
			}
		}

		width, _ := cmd.Flags().GetInt("width")
		height, _ := cmd.Flags().GetInt("height")
		if width < 1 || height < 1 {
			return &ExitError{
				Code:    ExitFailure,
				Message: fmt.Sprintf("[ERROR] invalid preview size %dx%d: width and height must be at least 1", width, height),
			}
		}

		gen := generator.New(p, opts, logger)
		c, err := gen.Render(contextOf(cmd), configPath)
		if err != nil {
			return toExitError(err)
		}

		// show what generate writes: the sidecar pins crop and caption
		sidecar := picture.SidecarPath(c.Picture)
		if _, err := picture.Apply(c.Document, sidecar); err != nil {
			logger.Warn("Ignoring crop sidecar", zap.String("path", sidecar), zap.Error(err))
		}
		rect, cropped := cropRect(c)

		art, err := preview.Cached(config.GetCacheDir(), c.Picture, rect, cropped, width, height)
		if err != nil {
			return toExitError(fmt.Errorf("error rendering picture: %w", err))
		}

		termWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || termWidth <= 0 {
			termWidth = 80
		}
		infoWidth := termWidth - width - previewSpacing - 2
		if infoWidth < 20 {
			infoWidth = 20
		}

		fmt.Fprint(cmd.OutOrStdout(), preview.SideBySide(art, infoLines(c, p.OutputPath(c.OutputName()), infoWidth), previewSpacing))
		return nil
	},
}

func init() {
	addInputFlags(previewCmd)
	previewCmd.Flags().Int("width", preview.DefaultWidth, "art width in terminal cells")
	previewCmd.Flags().Int("height", preview.DefaultHeight, "art height in terminal cells")
}

// cropRect returns the crop rectangle of the card's first image
func cropRect(c *card.Card) (image.Rectangle, bool) {
	images := picture.ImageObjects(c.Document)
	if len(images) == 0 {
		return image.Rectangle{}, false
	}
	return picture.CropRect(picture.CropParams(images[0]))
}

func infoLines(c *card.Card, output string, width int) []string {
	label := colorize.CyanString
	value := colorize.HiWhiteString

	lines := []string{
		label("Card:    ") + value("%s", c.Name()),
		label("Config:  ") + value("%s", filepath.Base(c.Source)),
	}
	if c.ID != "" {
		lines = append(lines, label("ID:      ")+value("%s", c.ID))
	}

	pic := filepath.Base(c.Picture)
	if c.Fallback {
		pic += colorize.YellowString(" (defaults)")
	}
	lines = append(lines,
		label("Picture: ")+value("%s", pic),
		label("Output:  ")+value("%s", output),
	)

	if dex := c.DexStats(); dex != "" {
		lines = append(lines, "", label("Dex:"))
		lines = append(lines, preview.WrapText(dex, width)...)
	}
	return lines
}
