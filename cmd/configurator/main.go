package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/compose-network/rollup-configurator/configs"
	"github.com/compose-network/rollup-configurator/internal/api"
	"github.com/compose-network/rollup-configurator/internal/build"
	"github.com/compose-network/rollup-configurator/internal/catalog"
	"github.com/compose-network/rollup-configurator/internal/compiler"
	"github.com/compose-network/rollup-configurator/internal/flags"
	"github.com/compose-network/rollup-configurator/internal/inspect"
	"github.com/compose-network/rollup-configurator/internal/l1"
	"github.com/compose-network/rollup-configurator/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const appName = "rollup-configurator"

var configFile string

var rootCmd = &cobra.Command{
	Use:           appName,
	Short:         "Compile, build and inspect OP Stack rollup configurations",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.Initialize(slog.LevelInfo, logger.FormatJSON)

		var searchPaths []string
		if execPath, err := os.Executable(); err == nil {
			searchPaths = append(searchPaths, filepath.Dir(execPath))
		}
		searchPaths = append(searchPaths, ".", "./configs")

		cfg, err := configs.Load(viper.GetViper(), configFile, searchPaths...)
		if err != nil {
			slog.With("err", err.Error()).Error("failed to load config")
			return err
		}
		configs.Values = cfg
		if used := viper.ConfigFileUsed(); used != "" {
			slog.With("config_file", used).Debug("config file loaded")
		}

		level, err := logger.ParseLevel(configs.Values.Log.Level)
		if err != nil {
			return err
		}
		logger.Initialize(level, configs.Values.Log.Format)

		slog.With("config", configs.Values).Debug("configuration loaded")

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to a config file (default: config.yaml next to the binary, in . or ./configs)")

	persistent := rootCmd.PersistentFlags()
	flags.MustDeclare(persistent, []flags.Def[string]{
		{Name: "log-level", ViperKey: "log.level", Description: "Log level (debug, info, warn, error)"},
		{Name: "log-format", ViperKey: "log.format", Description: "Log format (json or text)"},
		{Name: "output", ViperKey: "output.format", Description: "Output format (yaml, json or table)"},
		{Name: "build-url", ViperKey: "services.build-url", Description: "Base URL of the build service"},
		{Name: "inspect-url", ViperKey: "services.inspect-url", Description: "Base URL of the inspection service"},
	})
	flags.MustDeclare(persistent, []flags.Def[int]{
		{Name: "l1-chain-id", ViperKey: "l1.chain-id", Description: "L1 chain id to target"},
	})
	flags.MustDeclare(persistent, []flags.Def[time.Duration]{
		{Name: "timeout", ViperKey: "services.timeout", Description: "Timeout for build and inspection requests"},
	})
}

func main() {
	rootCmd.AddCommand(catalog.CMD)
	rootCmd.AddCommand(l1.CMD)
	rootCmd.AddCommand(compiler.CMD)
	rootCmd.AddCommand(build.CMD)
	rootCmd.AddCommand(inspect.CMD)
	rootCmd.AddCommand(api.CMD)

	if err := rootCmd.Execute(); err != nil {
		slog.With("err", err.Error()).Error("failed to execute root command")
		os.Exit(1)
	}
}
