// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the gene-relations CLI.
// Subcommands: local (mine a PubMed XML file), download (fetch PubMed
// records for a query, then mine them), store (index and query mined
// relations), version.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/gene-relations/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

const envPrefix = "GENE_RELATIONS"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback when set, else the secret for key from
// the environment or .secrets/.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	return secrets.Lookup(loadedSecrets, envPrefix, key)
}

// rootCmd is the base command for the gene-relations CLI.
var rootCmd = &cobra.Command{
	Use:   "gene-relations",
	Short: "Mine PubMed abstracts for gene-gene relations",
	Long: `gene-relations scans PubMed abstracts for sentences that contain a relation
word (regulates, associates, ...) and reports the known genes mentioned in
them. Abstracts come from a local PubMed XML file or are downloaded for a
search query; results are written as a JSON array and can be indexed in a
local SQLite store for querying.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := secrets.LoadEnv(".env"); err != nil {
			return err
		}
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./gene-relations.yaml or ~/.config/gene-relations/gene-relations.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("gene-relations")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "gene-relations"))
		}
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// bindFlags binds each named flag of fs to the viper key of the same
// name with dashes replaced by underscores.
func bindFlags(cmd *cobra.Command, persistent bool, names ...string) {
	fs := cmd.Flags()
	if persistent {
		fs = cmd.PersistentFlags()
	}
	for _, name := range names {
		if err := viper.BindPFlag(strings.ReplaceAll(name, "-", "_"), fs.Lookup(name)); err != nil {
			panic(fmt.Sprintf("binding flag %s: %v", name, err))
		}
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}
