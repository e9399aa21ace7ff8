package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rubiojr/diplomatarium/pkg/core"
	"github.com/rubiojr/diplomatarium/pkg/search"
	"github.com/urfave/cli/v3"
)

// SearchCommand creates the search command
func SearchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search the letters",
		ArgsUsage: "<query>",
		Description: `Queries combine terms with AND (implicit) and OR, negate with -term or NOT,
scope terms with sted:, sammendrag:, brevtekst:, kilde:, dn:, rn: or sdn:,
quote phrases and restrict dates with year:1340..1360, before:, after: and on:.`,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "field",
				Usage: "Limit unscoped terms to a field (sammendrag, brevtekst, sted, kilde). Can be used multiple times",
			},
			&cli.StringFlag{
				Name:  "from",
				Usage: "Earliest date (YYYY, YYYY-MM or YYYY-MM-DD)",
			},
			&cli.StringFlag{
				Name:  "to",
				Usage: "Latest date (YYYY, YYYY-MM or YYYY-MM-DD)",
			},
			&cli.BoolFlag{
				Name:  "exact",
				Usage: "Match exactly the period given by --from",
			},
			&cli.IntFlag{
				Name:  "page",
				Usage: "Page to show",
				Value: 1,
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Hits per page (0 uses the configured page size)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the page as JSON",
			},
			&cli.BoolFlag{
				Name:  "no-pager",
				Usage: "Disable pager and output directly to terminal",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			fields, err := parseFields(c.StringSlice("field"))
			if err != nil {
				return err
			}
			params := search.SearchParams{
				Query:  strings.Join(c.Args().Slice(), " "),
				Fields: fields,
				From:   c.String("from"),
				To:     c.String("to"),
				Exact:  c.Bool("exact"),
				Page:   c.Int("page"),
				Limit:  c.Int("limit"),
			}
			return searchLetters(ctx, c.String("config"), params, c.Bool("json"), c.Bool("no-pager"))
		},
	}
}

func parseFields(names []string) ([]core.Field, error) {
	var fields []core.Field
	for _, name := range names {
		f, ok := core.ParseField(name)
		if !ok || f.Exact() {
			return nil, fmt.Errorf("%w: %q", search.ErrUnknownField, name)
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// searchLetters loads the collection, runs the query and prints one page
func searchLetters(ctx context.Context, configPath string, params search.SearchParams, asJSON, noPager bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if params.Limit <= 0 {
		params.Limit = cfg.Search.PageSize
	}
	if len(params.Fields) == 0 {
		params.Fields = cfg.SearchFields()
	}

	e, err := newEngine(cfg)
	if err != nil {
		return err
	}
	if err := e.loadAll(ctx); err != nil {
		return fmt.Errorf("loading letters: %w", err)
	}

	result := e.search.Search(params)
	page := result.Page(params.Page, params.Limit)

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(page)
	}

	output := formatPage(result.Query, page)
	if noPager || !isTerminal(os.Stdout) {
		fmt.Print(output)
		return nil
	}
	return displayWithPager(output)
}

// displayWithPager displays content using a pager
func displayWithPager(content string) error {
	// Try to find a suitable pager
	pagerCmd := os.Getenv("PAGER")
	if pagerCmd == "" {
		// Try common pagers in order of preference
		pagers := []string{"less", "more"}
		for _, pager := range pagers {
			if _, err := exec.LookPath(pager); err == nil {
				pagerCmd = pager
				break
			}
		}
	}

	if pagerCmd == "" {
		// No pager found, output directly
		fmt.Print(content)
		return nil
	}

	// Set up less with good defaults if it's available
	args := []string{}
	if strings.Contains(pagerCmd, "less") {
		args = []string{"-R", "-S", "-F", "-X"}
	}

	cmd := exec.Command(pagerCmd, args...)
	cmd.Stdin = strings.NewReader(content)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run()
}
