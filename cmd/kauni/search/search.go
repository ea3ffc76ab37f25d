// Package searchcmder provides the search command for semantic search over
// the document store.
package searchcmder

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	apiclient "github.com/papercomputeco/kauni/api/client"
	apisearch "github.com/papercomputeco/kauni/api/search"
	"github.com/papercomputeco/kauni/cmd/kauni/stack"
	"github.com/papercomputeco/kauni/pkg/cliui"
	"github.com/papercomputeco/kauni/pkg/config"
	"github.com/papercomputeco/kauni/pkg/utils"
	"github.com/papercomputeco/kauni/pkg/vector"
)

type searchCommander struct {
	topK      int
	quiet     bool
	apiTarget string
	out       io.Writer
}

const searchLongDesc string = `Search the document store via the kauni API.

Returns the documents nearest to the query text. Requires a running kauni
API server. When ranked search is unavailable the server falls back to an
unranked scan, and the degraded stages are listed under the results.

Use --quiet to output only document IDs, one per line.

Example:
  kauni search "대전 빵집"
  kauni search "엑스포 과학공원" --top 10
  kauni search "한밭수목원" --api-target http://localhost:8000`

const searchShortDesc string = "Search the document store"

func NewSearchCmd() *cobra.Command {
	cmder := &searchCommander{}

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: searchShortDesc,
		Long:  searchLongDesc,
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := stack.LoadConfig(cmd, []string{config.FlagAPITarget})
			if err != nil {
				return err
			}
			cmder.apiTarget = cfg.Client.APITarget
			cmder.out = cmd.OutOrStdout()
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return cmder.run(ctx, args[0])
		},
	}

	cmd.Flags().IntVarP(&cmder.topK, "top", "k", apisearch.DefaultK, "Number of results to return")
	cmd.Flags().BoolVarP(&cmder.quiet, "quiet", "q", false, "Output only document IDs, one per line (for piping)")
	config.AddStringFlag(cmd, config.Flags, config.FlagAPITarget, &cmder.apiTarget)

	return cmd
}

func (c *searchCommander) run(ctx context.Context, query string) error {
	client, err := apiclient.New(c.apiTarget)
	if err != nil {
		return err
	}

	output, err := client.Search(ctx, query, c.topK)
	if err != nil {
		return err
	}

	if c.quiet {
		for _, r := range output.Results {
			fmt.Fprintln(c.out, r.ID)
		}
		return nil
	}

	if output.Count == 0 {
		fmt.Fprintln(c.out, "No results found.")
	} else {
		fmt.Fprintf(c.out, "\n%s %s\n\n",
			cliui.HeaderStyle.Render("Search Results for:"),
			cliui.KeyStyle.Render(fmt.Sprintf("%q", output.Query)))
		for i, r := range output.Results {
			c.printResult(i+1, r)
		}
	}

	for _, d := range output.Degraded {
		fmt.Fprintf(c.out, "  %s %s\n",
			cliui.WarnStyle.Render("degraded "+string(d.Stage)+":"),
			cliui.DimStyle.Render(d.Reason))
	}
	return nil
}

func (c *searchCommander) printResult(rank int, r vector.QueryResult) {
	fmt.Fprintf(c.out, "  %s  %s  %s\n",
		cliui.SuccessStyle.Render(fmt.Sprintf("#%d", rank)),
		cliui.StepStyle.Render(fmt.Sprintf("distance: %.4f", r.Distance)),
		cliui.KeyStyle.Render(r.ID))

	preview := strings.ReplaceAll(utils.Truncate(r.Content, 80), "\n", " ")
	fmt.Fprintf(c.out, "  %s\n", cliui.ValueStyle.Render(preview))

	if source := r.SourceLabel(); source != "" {
		fmt.Fprintf(c.out, "  %s\n", cliui.DimStyle.Render("source: "+source))
	}
	fmt.Fprintln(c.out)
}
