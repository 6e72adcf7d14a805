package commands

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/wanglei-coder/richheader/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Write a configuration file populated with the default settings.

By default the file is created at $XDG_CONFIG_HOME/richscan/config.yaml.
Use --config to pick another path.

Examples:
  # Write the default config
  richscan init

  # Write to a custom path
  richscan init --config /etc/richscan/config.yaml

  # Overwrite an existing file
  richscan init --force`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if path == "" {
		path = config.GetDefaultConfigPath()
	}

	if !initForce {
		if _, err := os.Stat(path); err == nil {
			return errors.Errorf("config file already exists at %s (use --force to overwrite)", path)
		}
	}

	if err := config.Save(config.GetDefaultConfig(), path); err != nil {
		return errors.WithMessage(err, "failed to initialize config")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Configuration file created at: %s\n", path)
	fmt.Fprintln(out, "\nAll settings can also be overridden with RICHSCAN_* environment")
	fmt.Fprintln(out, "variables, for example RICHSCAN_LOGGING_LEVEL=DEBUG.")
	return nil
}
