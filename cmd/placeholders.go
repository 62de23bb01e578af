package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/arcanaland/pokedon/internal/project"
	"github.com/arcanaland/pokedon/internal/template"
	"github.com/arcanaland/pokedon/internal/values"
)

var placeholdersCmd = &cobra.Command{
	Use:   "placeholders [config]",
	Short: "List the placeholders used by the template",
	Long: `Placeholders prints every {{ key }} the template uses, one per line.

When a config is given, each key is shown with the value it resolves to after
merging the config over the defaults. Unresolved keys are highlighted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		templatePath := stringInput(cmd, "template", appConfig.Generate.Template)
		if templatePath == "" {
			return toExitError(fmt.Errorf("template path is required"))
		}
		tpl, err := template.ParseFile(templatePath)
		if err != nil {
			return toExitError(fmt.Errorf("error reading template: %w", err))
		}

		out := cmd.OutOrStdout()
		if len(args) == 0 {
			for _, key := range tpl.Placeholders() {
				fmt.Fprintln(out, key)
			}
			return nil
		}

		vals, err := resolveValues(cmd, args[0])
		if err != nil {
			return toExitError(err)
		}

		cyan := color.New(color.FgCyan).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()
		for _, key := range tpl.Placeholders() {
			v, ok := values.Lookup(vals, key)
			if !ok || v == nil {
				fmt.Fprintf(out, "%s = %s\n", cyan(key), red("<unresolved>"))
				continue
			}
			fmt.Fprintf(out, "%s = %v\n", cyan(key), v)
		}
		return nil
	},
}

func init() {
	placeholdersCmd.Flags().StringP("template", "t", "", "JSON template file with {{placeholders}}")
	placeholdersCmd.Flags().StringP("defaults", "d", "", "defaults file merged under the config")
	placeholdersCmd.Flags().StringP("configs-dir", "c", "", "directory used to find a config given by stem")
}

// resolveValues merges a config, given by path or stem, over the defaults
func resolveValues(cmd *cobra.Command, arg string) (map[string]any, error) {
	path := arg
	if !values.IsDataFile(arg) {
		dir := stringInput(cmd, "configs-dir", appConfig.Generate.ConfigsDir)
		found, err := findConfig(dir, arg)
		if err != nil {
			return nil, err
		}
		path = found
	}

	vals, err := values.Load(path)
	if err != nil {
		return nil, fmt.Errorf("error loading config %s: %w", path, err)
	}

	defaultsPath := stringInput(cmd, "defaults", appConfig.Generate.Defaults)
	if defaultsPath == "" {
		return vals, nil
	}
	defaults, err := values.Load(defaultsPath)
	if err != nil {
		return nil, fmt.Errorf("error loading defaults: %w", err)
	}
	return values.Merge(defaults, vals), nil
}

// findConfig locates the config for a stem inside dir
func findConfig(dir, stem string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("configs dir is required to find config '%s'", stem)
	}
	for _, ext := range values.Extensions {
		path := filepath.Join(dir, stem+ext)
		if isFile(path) {
			return path, nil
		}
	}
	return "", &project.NotFoundError{
		What: "config",
		Path: filepath.Join(dir, stem+".{"+strings.Join(trimDots(values.Extensions), ",")+"}"),
	}
}

func trimDots(exts []string) []string {
	out := make([]string, len(exts))
	for i, ext := range exts {
		out[i] = strings.TrimPrefix(ext, ".")
	}
	return out
}
