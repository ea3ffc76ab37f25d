package ingestcmder

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/kauni/pkg/cliui"
	"github.com/papercomputeco/kauni/pkg/config"
	"github.com/papercomputeco/kauni/pkg/vector"
)

const ktoLongDesc string = `Fetch and index KTO open-data tourism records.

Reads the regional hub and related attraction lists from the Korea Tourism
Organization open-data API, normalizes each record into a document and
indexes it. The service key is read from credentials.toml (kauni auth kto)
or the KTO_SERVICE_KEY environment variable.

Examples:
  kauni ingest kto
  kauni ingest kto --num-rows 50 --max-pages 3`

const ktoShortDesc string = "Index KTO open-data tourism records"

func newKTOCmd() *cobra.Command {
	cmder := &ingestCommander{}

	var numRows, maxPages uint
	flagKeys := append([]string{config.FlagKTONumRows, config.FlagKTOMaxPages}, storeFlags...)

	cmd := &cobra.Command{
		Use:   "kto",
		Short: ktoShortDesc,
		Long:  ktoLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.preRun(cmd, flagKeys)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.runKTO(cmd.Context())
		},
	}

	cmder.addStoreFlags(cmd)
	config.AddUintFlag(cmd, config.Flags, config.FlagKTONumRows, &numRows)
	config.AddUintFlag(cmd, config.Flags, config.FlagKTOMaxPages, &maxPages)

	return cmd
}

func (c *ingestCommander) runKTO(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	client, err := s.KTO()
	if err != nil {
		return err
	}

	var docs []vector.Document
	err = cliui.Step(os.Stdout, "Fetching KTO records", func() error {
		var err error
		docs, err = client.Fetch(ctx)
		return err
	})
	if err != nil {
		return err
	}

	var indexed int
	err = cliui.Step(os.Stdout, fmt.Sprintf("Indexing %d records", len(docs)), func() error {
		var err error
		indexed, err = s.Indexer.Index(ctx, docs)
		return err
	})
	if err != nil {
		return fmt.Errorf("indexed %d of %d records: %w", indexed, len(docs), err)
	}

	fmt.Printf("\n  %s Indexed %s records\n\n",
		cliui.SuccessMark,
		cliui.ValueStyle.Render(fmt.Sprint(indexed)),
	)
	return nil
}
