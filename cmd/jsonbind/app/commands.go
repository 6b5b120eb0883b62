// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package app provides the entry point for the jsonbind command-line application.
package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/jsonbind/pkg/backend"
	"github.com/stacklok/jsonbind/pkg/config"
	"github.com/stacklok/jsonbind/pkg/logger"
)

// Entity kinds accepted by --kind.
const (
	KindCompany  = "company"
	KindEmployee = "employee"
)

// Output and input formats accepted by --format.
const (
	FormatJSON   = "json"
	FormatHuJSON = "hujson"
	FormatYAML   = "yaml"
	FormatTOML   = "toml"
	FormatTable  = "table"
)

// rootOptions carries the configuration resolved before any subcommand runs.
type rootOptions struct {
	cfg        *config.Config
	adapter    string
	sqlitePath string
}

// NewRootCmd creates a new root command for the jsonbind CLI.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:               "jsonbind",
		DisableAutoGenTag: true,
		Short:             "jsonbind maps JSON documents onto stored objects and back",
		Long: `jsonbind maps JSON documents onto a directory of companies and employees
kept in a pluggable store (memory, SQLite or Redis), and serializes stored
objects back to JSON.

The store is selected by the configuration file (see --config) and the
JSONBIND_* environment variables.`,
		Run: func(cmd *cobra.Command, _ []string) {
			// If no subcommand is provided, print help
			if err := cmd.Help(); err != nil {
				logger.Errorf("Error displaying help: %v", err)
			}
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger.Initialize()
			if cmd.Name() == "version" {
				return nil
			}
			return opts.load()
		},
	}

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug mode")
	if err := viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		logger.Errorf("Error binding debug flag: %v", err)
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the jsonbind configuration file")
	if err := viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config")); err != nil {
		logger.Errorf("Error binding config flag: %v", err)
	}

	rootCmd.PersistentFlags().StringVar(&opts.adapter, "adapter", "",
		fmt.Sprintf("Override the store type (%s, %s or %s)", config.AdapterMemory, config.AdapterSQLite, config.AdapterRedis))
	rootCmd.PersistentFlags().StringVar(&opts.sqlitePath, "sqlite-path", "", "Override the SQLite database path")

	rootCmd.AddCommand(newImportCmd(opts))
	rootCmd.AddCommand(newExportCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))
	rootCmd.AddCommand(newVersionCmd())

	// Silence printing the usage on error
	rootCmd.SilenceUsage = true

	return rootCmd
}

// load reads the configuration file and applies the flag overrides.
func (o *rootOptions) load() error {
	cfg, err := config.Load(configPath())
	if err != nil {
		return err
	}
	if o.adapter != "" {
		cfg.Adapter.Type = o.adapter
	}
	if o.sqlitePath != "" {
		cfg.Adapter.SQLite.Path = o.sqlitePath
	}
	if cfg.Log.Debug && !viper.GetBool("debug") {
		viper.Set("debug", true)
		logger.Initialize()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger.Debugf("Using %s store", cfg.Adapter.Type)
	o.cfg = cfg
	return nil
}

// open connects to the configured store.
func (o *rootOptions) open(ctx context.Context) (*backend.Backend, error) {
	if o.cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	return backend.Open(ctx, o.cfg)
}

// readInput reads the named file, or stdin when name is empty or "-".
func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "" || name == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(name) // #nosec G304 - reading the user-supplied input file is the point
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}
