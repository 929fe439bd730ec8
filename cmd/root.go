package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pders01/git-release/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "git-release",
	Short: "Decide and write the next versions of every module in a repository",
	Long: `git-release computes the next semantic version of each module in a
multi-module repository:
  - classifies conventional commits since each module's last release tag
  - cascades bumps to dependent modules
  - supports pre-release, timestamp, snapshot and build metadata versions

Planning never writes. Apply writes every version file as one batch and can
commit, tag and push the release.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./.release.toml, then $HOME/.config/git-release/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func initConfig() {
	switch {
	case cfgFile != "":
		viper.SetConfigFile(cfgFile)
	case fileExists(config.FileName):
		viper.SetConfigFile(config.FileName)
		viper.SetConfigType("toml")
	default:
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".config", "git-release")
		viper.AddConfigPath(configDir)
		viper.SetConfigType("toml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	config.SetDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if cfgFile != "" {
			fmt.Fprintln(os.Stderr, "Failed to read config file:", err)
			os.Exit(1)
		}
	}
}

// setupLogging installs the default slog logger. Logs go to stderr so
// structured output on stdout stays machine readable.
func setupLogging(cmd *cobra.Command, args []string) error {
	level, err := config.GetLogLevel()
	if err != nil {
		return err
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if config.GetLogFormat() == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))

	if used := viper.ConfigFileUsed(); used != "" {
		slog.Debug("using config file", slog.String("path", used))
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
