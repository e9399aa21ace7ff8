package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rubiojr/diplomatarium/pkg/shards"
	"github.com/urfave/cli/v3"
)

// SplitCommand creates the split command
func SplitCommand() *cli.Command {
	return &cli.Command{
		Name:      "split",
		Usage:     "Split a CSV export into a metadata file and JSON shards",
		ArgsUsage: "<letters.csv>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "out",
				Usage: "Output directory",
				Value: "data",
			},
			&cli.IntFlag{
				Name:  "size",
				Usage: "Letters per shard",
				Value: shards.DefaultShardSize,
			},
			&cli.StringFlag{
				Name:  "compress",
				Usage: "Shard compression: none, gzip or zstd",
				Value: "none",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return fmt.Errorf("expected one CSV file, got %d arguments", c.Args().Len())
			}
			return splitExport(c.Args().First(), c.String("out"), c.Int("size"), c.String("compress"))
		},
	}
}

// splitExport writes the shards of a CSV export below out
func splitExport(csvPath, out string, size int, compression string) error {
	comp, err := shards.ParseCompression(compression)
	if err != nil {
		return err
	}

	f, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("opening export: %w", err)
	}
	defer f.Close()

	desc, err := shards.Split(f, out, shards.SplitOptions{ShardSize: size, Compression: comp})
	if err != nil {
		return fmt.Errorf("splitting %s: %w", csvPath, err)
	}

	for i := 0; i < desc.Shards; i++ {
		n := desc.ShardSize
		if i == desc.Shards-1 && desc.Letters%desc.ShardSize != 0 {
			n = desc.Letters % desc.ShardSize
		}
		fmt.Printf("Wrote %s with %s letters\n", fmt.Sprintf(shards.DefaultPattern, i), formatNumber(n))
	}
	fmt.Printf("\nTotal: %s letters in %d shards below %s\n", formatNumber(desc.Letters), desc.Shards, out)
	return nil
}
