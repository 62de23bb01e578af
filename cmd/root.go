package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arcanaland/pokedon/internal/config"
	"github.com/arcanaland/pokedon/internal/logging"
)

var (
	configPath string
	verbose    bool

	appConfig *config.Config
	logger    *zap.Logger
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "pokedon",
	Short: "Generate PokeDon card documents from a template and YAML configs",
	Long: `Pokedon renders one JSON card document per card config.

Each config is merged over the defaults, substituted into the template's
{{ placeholders }}, and given its picture as a base64 data URI. Crop
parameters and the dexStats caption are kept stable in a sidecar file next
to every picture.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		appConfig, err = config.LoadConfig(configPath)
		if err != nil {
			return err
		}

		logger, err = logging.New(verbose || appConfig.Verbose)
		if err != nil {
			return err
		}
		logger.Debug("Configuration loaded", zap.String("path", configFile()))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		fmt.Sprintf("config file (default %s)", config.GetConfigFilePath()))
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	RootCmd.AddCommand(generateCmd)
	RootCmd.AddCommand(validateCmd)
	RootCmd.AddCommand(placeholdersCmd)
	RootCmd.AddCommand(previewCmd)
	RootCmd.AddCommand(initCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return RootCmd.Execute()
}

func configFile() string {
	if configPath != "" {
		return configPath
	}
	return config.GetConfigFilePath()
}
