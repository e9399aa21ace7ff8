package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rubiojr/diplomatarium/pkg/shards"
	"github.com/rubiojr/diplomatarium/pkg/storage"
	"github.com/urfave/cli/v3"
)

// StatsCommand creates the stats command
func StatsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Load the collection and show statistics",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print statistics as JSON",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return showStats(ctx, c.String("config"), c.Bool("json"))
		},
	}
}

// showStats loads every shard and displays corpus statistics
func showStats(ctx context.Context, configPath string, asJSON bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	e, err := newEngine(cfg)
	if err != nil {
		return err
	}
	if err := e.loadAll(ctx); err != nil {
		return fmt.Errorf("loading letters: %w", err)
	}

	stats := e.corpus.Stats()
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Corpus   storage.Stats   `json:"corpus"`
			Progress shards.Progress `json:"progress"`
		}{stats, e.loader.Progress()})
	}
	fmt.Print(formatStats(stats, e.loader.Progress()))
	return nil
}
