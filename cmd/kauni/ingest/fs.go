package ingestcmder

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/kauni/pkg/cliui"
	"github.com/papercomputeco/kauni/pkg/ingest"
	"github.com/papercomputeco/kauni/pkg/vector"
)

const fsLongDesc string = `Index the .txt and .md files below a path.

Every matching file becomes one document whose metadata records its path
and file name. Other files are skipped.

Examples:
  kauni ingest fs ./docs
  kauni ingest fs ./docs --store-provider sqlite --store-target ./kauni.db`

const fsShortDesc string = "Index text and markdown files"

func newFSCmd() *cobra.Command {
	cmder := &ingestCommander{}

	cmd := &cobra.Command{
		Use:   "fs <path>",
		Short: fsShortDesc,
		Long:  fsLongDesc,
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.preRun(cmd, storeFlags)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.runFS(cmd.Context(), args[0])
		},
	}

	cmder.addStoreFlags(cmd)

	return cmd
}

func (c *ingestCommander) runFS(ctx context.Context, root string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var docs []vector.Document
	err := cliui.Step(os.Stdout, "Reading "+root, func() error {
		var err error
		docs, err = ingest.ReadTextFiles(root)
		return err
	})
	if err != nil {
		return err
	}

	s, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	var indexed int
	err = cliui.Step(os.Stdout, fmt.Sprintf("Indexing %d documents", len(docs)), func() error {
		var err error
		indexed, err = s.Indexer.Index(ctx, docs)
		return err
	})
	if err != nil {
		return fmt.Errorf("indexed %d of %d documents: %w", indexed, len(docs), err)
	}

	fmt.Printf("\n  %s Indexed %s documents\n\n",
		cliui.SuccessMark,
		cliui.ValueStyle.Render(fmt.Sprint(indexed)),
	)
	return nil
}
