// Command dupscan finds near-duplicate code across a Java or Go source
// tree and recommends how to de-duplicate it.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/e4c5/dupscan/internal/config"
	"github.com/e4c5/dupscan/internal/orchestrator"
)

func loadConfig(c *cli.Context) (config.Settings, error) {
	cfg := config.Default
	path := c.String("config")
	if path != "" {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			loaded, err := config.Load(path)
			if err != nil {
				return config.Settings{}, fmt.Errorf("load config %s: %w", path, err)
			}
			cfg = loaded
		}
	}
	if target := c.String("target-class"); target != "" {
		cfg.TargetClass = target
	}
	return cfg, nil
}

func main() {
	app := &cli.App{
		Name:  "dupscan",
		Usage: "detect near-duplicate code and recommend extractions",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "config file path (.kdl or .toml)",
				Value:   ".dupscan.kdl",
			},
			&cli.StringFlag{
				Name:  "target-class",
				Usage: "restrict the printed report to clusters touching this class",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "analyze",
				Usage:     "run per-file duplicate detection over a directory",
				ArgsUsage: "<dir>",
				Action:    runAnalyze,
			},
			{
				Name:      "analyze-project",
				Usage:     "run whole-project duplicate detection, sharing one candidate index across files",
				ArgsUsage: "<dir>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "watch",
						Usage: "keep running and re-scan on file changes",
					},
				},
				Action: runAnalyzeProject,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "dupscan:", err)
		os.Exit(1)
	}
}

func runAnalyze(c *cli.Context) error {
	dir := c.Args().First()
	if dir == "" {
		return cli.Exit("analyze requires a directory argument", 1)
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	units, diagnostics, err := discoverUnits(dir, cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	for _, u := range units {
		report := orchestrator.RunFile(ctx, u, cfg, nil)
		report.Diagnostics = append(report.Diagnostics, diagnostics...)
		printReport(os.Stdout, report, cfg, dir)
	}
	return nil
}

func runAnalyzeProject(c *cli.Context) error {
	dir := c.Args().First()
	if dir == "" {
		return cli.Exit("analyze-project requires a directory argument", 1)
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.Bool("watch") {
		cfg.Performance.WatchMode = true
	}

	ctx := context.Background()
	scan := func() {
		units, diagnostics, err := discoverUnits(dir, cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, "dupscan:", err)
			return
		}
		report := orchestrator.RunProject(ctx, units, cfg, nil)
		report.Diagnostics = append(report.Diagnostics, diagnostics...)
		printReport(os.Stdout, report, cfg, dir)
	}
	scan()

	if !cfg.Performance.WatchMode {
		return nil
	}

	stop := make(chan struct{})
	return watchAndRescan(dir, cfg, stop, scan)
}
