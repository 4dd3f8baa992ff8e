// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the docgen CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/docgen/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// cfg holds the configuration loaded before every command runs.
var cfg types.Config

// rootCmd is the base command for the docgen CLI.
var rootCmd = &cobra.Command{
	Use:   "docgen",
	Short: "Render validation documents from placeholder templates",
	Long: `docgen fills [[KEY]] placeholders in Markdown-like templates and writes
the result as a Word document, a spreadsheet or Markdown.

Templates come from a templates directory, an optional remote registry and
the built-in qualification protocols (IQ, OQ, PQ, VP, ARI). Every render
reports the placeholders it could not fill; renders are recorded in a
local history database.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig()
		if err != nil {
			return err
		}
		cfg = c
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./docgen.yaml or ~/.config/docgen/docgen.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "print progress lines on stderr")
}

func initConfig() {
	setConfigDefaults()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("docgen")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "docgen"))
		}
	}

	viper.SetEnvPrefix("DOCGEN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
