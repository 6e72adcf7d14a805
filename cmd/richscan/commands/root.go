// Package commands implements the CLI commands for the richscan tool.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/wanglei-coder/richheader/internal/config"
	"github.com/wanglei-coder/richheader/internal/logger"
	"github.com/wanglei-coder/richheader/internal/output"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	// Global flags.
	cfgFile      string
	outputFormat string
	verbose      bool

	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "richscan",
	Short: "Inspect the Rich linker metadata hidden in PE executables",
	Long: `richscan decodes the undocumented "Rich" header that Microsoft linkers
embed between the DOS stub and the PE header. The header records which
tools produced the object files of a binary, which makes it a compact
fingerprint of the build environment.

Use "richscan [command] --help" for more information about a command.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute runs the root command. This is called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/richscan/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "output format (table|json|yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// setup loads the configuration and initializes logging before any
// command runs. Flags override file and environment settings.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if verbose {
		loaded.Logging.Level = "DEBUG"
	}
	if outputFormat != "" {
		loaded.Output.Format = outputFormat
	}
	if _, err := output.ParseFormat(loaded.Output.Format); err != nil {
		return err
	}
	cfg = loaded

	return logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// resultFormat returns the output format validated during setup.
func resultFormat() output.Format {
	f, err := output.ParseFormat(cfg.Output.Format)
	if err != nil {
		return output.FormatTable
	}
	return f
}
