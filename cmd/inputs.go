package cmd

import (
	"github.com/spf13/cobra"

	"github.com/arcanaland/pokedon/internal/generator"
	"github.com/arcanaland/pokedon/internal/project"
)

// addInputFlags registers the flags shared by generate, validate and preview
func addInputFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("template", "t", "", "JSON template file with {{placeholders}}")
	f.StringP("defaults", "d", "", "defaults file (.yml/.yaml/.json) merged under every config")
	f.StringP("configs-dir", "c", "", "directory containing the card configs")
	f.StringP("out-dir", "o", "", "output directory for generated documents")
	f.String("pictures-dir", "", "directory with pictures named like the configs (default: 'pictures' next to configs-dir)")
	f.String("bundle", "", "also write every document into this JSON array file")
	f.String("id-key", "", "values key holding a unique card id used as output file name")
	f.StringArray("require-key", nil, "dotted key every config must define (repeatable)")
	f.Bool("strict", false, "fail on unresolved placeholders")
	f.IntP("workers", "w", 0, "number of cards rendered concurrently")
}

// stringInput returns the flag value when set, else the resolved config value
func stringInput(cmd *cobra.Command, name, fromConfig string) string {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetString(name)
		return v
	}
	return appConfig.ResolvePath(fromConfig)
}

// inputOptions merges command-line flags over the config file
func inputOptions(cmd *cobra.Command) (project.Options, generator.Options) {
	gc := appConfig.Generate
	f := cmd.Flags()

	projOpts := project.Options{
		TemplatePath: stringInput(cmd, "template", gc.Template),
		DefaultsPath: stringInput(cmd, "defaults", gc.Defaults),
		ConfigsDir:   stringInput(cmd, "configs-dir", gc.ConfigsDir),
		PicturesDir:  stringInput(cmd, "pictures-dir", gc.PicturesDir),
		OutDir:       stringInput(cmd, "out-dir", gc.OutDir),
	}

	genOpts := generator.Options{
		BundlePath:  stringInput(cmd, "bundle", gc.Bundle),
		IDKey:       gc.IDKey,
		RequireKeys: gc.RequireKeys,
		Strict:      gc.Strict,
		Workers:     gc.Workers,
	}
	if f.Changed("id-key") {
		genOpts.IDKey, _ = f.GetString("id-key")
	}
	if f.Changed("require-key") {
		genOpts.RequireKeys, _ = f.GetStringArray("require-key")
	}
	if f.Changed("strict") {
		genOpts.Strict, _ = f.GetBool("strict")
	}
	if f.Changed("workers") {
		genOpts.Workers, _ = f.GetInt("workers")
	}

	return projOpts, genOpts
}

// openProject resolves the project for a command
func openProject(cmd *cobra.Command) (*project.Project, generator.Options, error) {
	projOpts, genOpts := inputOptions(cmd)
	p, err := project.Open(projOpts)
	if err != nil {
		return nil, genOpts, toExitError(err)
	}
	return p, genOpts, nil
}
