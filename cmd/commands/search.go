package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/agentcore/runtime/internal/search"
)

// NewSearchCommand returns the search subcommand, a thin CLI wrapper over
// the universal search aggregator (spec §4.8).
func NewSearchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search across every loaded skill",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Usage: "Maximum total results", Value: search.DefaultTotalLimit},
			&cli.BoolFlag{Name: "json", Usage: "Print results as JSON"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() < 1 {
				return fmt.Errorf("usage: agent search <query>")
			}
			query := cmd.Args().Get(0)

			rt, err := bootRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			results := search.Aggregate(ctx, rt.skills.SearchProviders(), query, search.Options{
				TotalLimit: cmd.Int("limit"),
			})

			if cmd.Bool("json") {
				b, err := json.MarshalIndent(results, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(b))
				return nil
			}

			for _, r := range results {
				fmt.Printf("[%.2f] %-16s %-10s %s\n", r.Score, r.Skill, r.Type, r.Content)
			}
			return nil
		},
	}
}
