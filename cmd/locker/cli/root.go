package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zots0127/locker/pkg/config"
	"github.com/zots0127/locker/pkg/logging"
)

// Version is set at build time
var Version = "dev"

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "locker",
		Short: "Self-hosted media locker",
		Long: `Locker stores images and videos in named groups. Files are renamed
to <group>_<n>.<ext> on upload and served back over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Configuration file (default: $CONFIG_PATH or ./config.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging and gin debug mode")

	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewGroupsCommand())
	rootCmd.AddCommand(NewHashPasswordCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig resolves, loads and validates the configuration and installs
// the logger it describes
func loadConfig(cmd *cobra.Command) (*config.ConfigManager, error) {
	path, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")

	manager := config.NewConfigManager()
	if _, err := manager.Load(config.ResolvePath(path)); err != nil {
		return nil, err
	}
	cfg := manager.GetConfig()

	if debug {
		cfg.Server.Debug = true
		cfg.Logging.Level = "debug"
	}
	if err := logging.Setup(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return nil, err
	}

	return manager, nil
}
