package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/hashmap-kz/quantd/config"
	"github.com/hashmap-kz/quantd/internal/logger"
	"github.com/hashmap-kz/quantd/internal/version"
)

func App() *cli.Command {
	configFlag := &cli.StringFlag{
		Name:    "config",
		Usage:   "Path to config file",
		Aliases: []string{"c"},
		Sources: cli.EnvVars("QUANTD_CONFIG_PATH"),
	}

	app := &cli.Command{
		Name:    "quantd",
		Usage:   "Stock-scanning daemon with a loadable dashboard script",
		Version: version.Version,
		Commands: []*cli.Command{
			{
				Name:  "daemon",
				Usage: "Run the dashboard daemon: loader, scheduled scans, REST API",
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{
						Name:  "entry-file",
						Usage: "Override the entry file the script directory is derived from",
					},
				},
				Action: func(_ context.Context, c *cli.Command) error {
					loadConfig(c)
					RunDaemon(&DaemonOpts{
						EntryFile: c.String("entry-file"),
					})
					return nil
				},
			},

			{
				Name:  "scan",
				Usage: "Run one universe scan and print the ranked candidates",
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{
						Name:  "sector",
						Usage: "Sector to scan (overrides the config)",
					},
					&cli.BoolFlag{
						Name:  "no-store",
						Usage: "Do not persist a snapshot",
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					loadConfig(c)
					return RunScan(ctx, &ScanCmdOpts{
						Sector:  c.String("sector"),
						NoStore: c.Bool("no-store"),
					})
				},
			},

			{
				Name:  "backtest",
				Usage: "Backtest a strategy against one ticker",
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{
						Name:     "ticker",
						Usage:    "Ticker symbol",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "strategy",
						Usage:    "Strategy key (see 'quantd strategies')",
						Required: true,
					},
					&cli.FloatFlag{
						Name:  "capital",
						Usage: "Initial capital",
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					loadConfig(c)
					return RunBacktest(ctx, &BacktestCmdOpts{
						Ticker:         c.String("ticker"),
						Strategy:       c.String("strategy"),
						InitialCapital: c.Float("capital"),
					})
				},
			},

			{
				Name:  "strategies",
				Usage: "List the built-in strategies",
				Action: func(_ context.Context, _ *cli.Command) error {
					return printJSON(os.Stdout, defaultRegistry().List())
				},
			},

			{
				Name:  "validate",
				Usage: "Validate the config file without running the application",
				Flags: []cli.Flag{
					configFlag,
				},
				Action: func(_ context.Context, c *cli.Command) error {
					_ = loadConfig(c)
					fmt.Println("Configuration is valid.")
					return nil
				},
			},
		},
	}

	return app
}

func loadConfig(c *cli.Command) *config.Config {
	configPath := c.String("config")

	// 1) if -c flag is set -> must read config from file
	// 2) if $QUANTD_CONFIG_PATH is set -> must read config from file
	// 3) read config with go-envconfig otherwise
	var cfg *config.Config
	if configPath != "" {
		cfg = config.MustLoad(configPath)
	} else {
		cfg = config.MustEnvconfig()
	}

	// debug config (NOTE: sensitive fields are hidden)
	_, _ = fmt.Fprintf(os.Stderr, "STARTING WITH CONFIGURATION (%s):\n%s\n\n",
		filepath.ToSlash(configPath),
		cfg.String(),
	)

	logger.Init(&logger.Opts{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		AddSource: cfg.Log.AddSource,
	})
	return cfg
}

func printJSON(w *os.File, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
