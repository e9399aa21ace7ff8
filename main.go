package main

import (
	"context"
	"os"

	"github.com/rubiojr/diplomatarium/cmd"
	"github.com/rubiojr/diplomatarium/pkg/config"
	"github.com/rubiojr/diplomatarium/pkg/log"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := log.ForService("main")

	app := &cli.Command{
		Name:  "diplomatarium",
		Usage: "Search a collection of medieval letters published as JSON shards",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
				Value: false,
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Configuration file path",
				Value: getDefaultConfigPathOrExit(logger),
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			if c.Bool("debug") {
				log.SetGlobalDebug(true)
			}
			return ctx, nil
		},
		Commands: []*cli.Command{
			cmd.InitCommand(),
			cmd.SearchCommand(),
			cmd.ServeCommand(),
			cmd.StatsCommand(),
			cmd.SplitCommand(),
			cmd.VersionCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("%v", err)
	}
}

func getDefaultConfigPathOrExit(logger *log.Logger) string {
	path, err := config.GetDefaultConfigPath()
	if err != nil {
		logger.Fatalf("Failed to get default config path: %v", err)
	}
	return path
}
