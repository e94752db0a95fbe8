// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

// Package main is the synthetic data generator. It writes a product catalog
// and a user activity log that the server imports and replays.
//
// Defaults come from the simulate section of the server configuration
// (SIMULATE_USERS, SIMULATE_PRODUCTS, ...); flags override them.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/marketlens/internal/config"
	"github.com/tomtom215/marketlens/internal/logging"
	"github.com/tomtom215/marketlens/internal/simulate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(cfg.Logging.LoggerConfig())

	if err := newRootCmd(&cfg.Simulate).Execute(); err != nil {
		os.Exit(1)
	}
}

// summary is what a run reports.
type summary struct {
	Items        int    `json:"items"`
	Interactions int    `json:"interactions"`
	Users        int    `json:"users"`
	CatalogPath  string `json:"catalog_path"`
	ActivityPath string `json:"activity_path"`
}

func newRootCmd(defaults *config.SimulateConfig) *cobra.Command {
	opts := *defaults

	cmd := &cobra.Command{
		Use:   "marketlens-simulate",
		Short: "Generate a synthetic catalog and activity log",
		Long: `marketlens-simulate writes product_catalog.json and user_activity.json.

Users prefer a few categories and brands, act a Poisson-distributed number of
times per day and buy cheaper items more often. The same seed always produces
the same files.

Examples:
  marketlens-simulate
  marketlens-simulate --users 1000 --products 5000 --days 90
  marketlens-simulate --output-dir /tmp/data --json`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			return run(opts.GeneratorConfig(), opts.OutputDir, jsonOut, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.Users, "users", opts.Users, "Number of users")
	flags.IntVar(&opts.Products, "products", opts.Products, "Number of products")
	flags.IntVar(&opts.Brands, "brands", opts.Brands, "Number of brands")
	flags.IntVar(&opts.Days, "days", opts.Days, "Days of activity to simulate")
	flags.Float64Var(&opts.AvgActions, "avg-actions", opts.AvgActions, "Mean actions per user per day")
	flags.Uint64Var(&opts.Seed, "seed", opts.Seed, "Random seed")
	flags.StringVar(&opts.OutputDir, "output-dir", opts.OutputDir, "Directory for the generated files")
	flags.Bool("json", false, "Print the summary as JSON")

	return cmd
}

func run(cfg simulate.Config, outputDir string, jsonOut bool, w io.Writer) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	gen := simulate.New(cfg)
	ds := gen.Generate()

	catalogPath, activityPath, err := simulate.WriteFiles(outputDir, ds)
	if err != nil {
		return fmt.Errorf("write dataset: %w", err)
	}

	s := summary{
		Items:        len(ds.Items),
		Interactions: len(ds.Interactions),
		Users:        len(gen.Users()),
		CatalogPath:  catalogPath,
		ActivityPath: activityPath,
	}
	logging.Info().
		Int("items", s.Items).
		Int("interactions", s.Interactions).
		Int("users", s.Users).
		Msg("dataset generated")

	if jsonOut {
		return json.NewEncoder(w).Encode(s)
	}
	_, err = fmt.Fprintf(w, "Generated %d products and %d interactions for %d users\n  %s\n  %s\n",
		s.Items, s.Interactions, s.Users, s.CatalogPath, s.ActivityPath)
	return err
}
