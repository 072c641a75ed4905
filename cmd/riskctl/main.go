// riskctl is the ops companion to riskd: it warms and inspects the
// artifact cache without starting the HTTP service.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"riskd/internal/bootstrap"
	"riskd/internal/cache"
	"riskd/internal/config"
	"riskd/internal/hub"
)

var cfgPath string

func loadConfig() (config.Config, error) {
	var cfg config.Config
	if cfgPath != "" {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return cfg, err
		}
	}
	cfg.ApplyDefaults()
	return cfg, cfg.Validate()
}

func newHubClient(cfg config.Config) (hub.Client, error) {
	creds := hub.Credentials{
		AccessKey: os.Getenv("RISKD_HUB_ACCESS_KEY"),
		SecretKey: os.Getenv("RISKD_HUB_SECRET_KEY"),
		Token:     os.Getenv("RISKD_HUB_TOKEN"),
	}
	return hub.New(cfg.HubBackend, cfg.HubEndpoint, creds, cfg.HubUseSSL)
}

func newPrefetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prefetch",
		Short: "Download all artifacts into the local cache",
		Long:  "Warms a persistent cache mount ahead of a deploy so service bootstrap is a pure cache hit.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client, err := newHubClient(cfg)
			if err != nil {
				return err
			}
			root, err := cache.Resolve(cfg.PersistentDir, cfg.ScratchDir)
			if err != nil {
				return err
			}
			logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
			mgr := bootstrap.New(bootstrap.Config{
				Client:    client,
				CacheRoot: root,
				Attempts:  cfg.FetchAttempts,
				Backoff:   time.Duration(cfg.FetchBackoffMS) * time.Millisecond,
				IDColumn:  cfg.IDColumn,
				Logger:    logger,
			})
			if err := mgr.Prefetch(context.Background(), bootstrap.DefaultSpecs(cfg)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cache warmed at %s\n", root)
			return nil
		},
	}
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Report which artifacts are present in the local cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			root, err := cache.Resolve(cfg.PersistentDir, cfg.ScratchDir)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "cache root: %s\n", root)
			for _, spec := range bootstrap.DefaultSpecs(cfg) {
				local := spec.LocalPath(root)
				fi, err := os.Stat(local)
				switch {
				case err == nil && fi.Size() > 0:
					fmt.Fprintf(out, "  %-24s cached  %8d bytes  %s\n", spec.Name, fi.Size(), local)
				default:
					fmt.Fprintf(out, "  %-24s missing %s\n", spec.Name, local)
				}
			}
			return nil
		},
	}
}

func main() {
	root := &cobra.Command{
		Use:           "riskctl",
		Short:         "Operations CLI for the riskd artifact cache",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", os.Getenv("RISKD_CONFIG"), "Path to config file (.yaml/.json/.toml)")
	root.AddCommand(newPrefetchCmd(), newInspectCmd())
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
