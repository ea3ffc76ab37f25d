package ingestcmder

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/kauni/pkg/ingest"
	"github.com/papercomputeco/kauni/pkg/ingest/watch"
	"github.com/papercomputeco/kauni/pkg/ingest/worker"
)

const watchLongDesc string = `Keep a directory of text and markdown files indexed.

Indexes every .txt and .md file below the directory once, then re-indexes
files as they are created or changed. A changed file replaces its previous
document. Runs until interrupted.

Examples:
  kauni ingest watch ./docs
  kauni ingest watch ./docs --workers 5`

const watchShortDesc string = "Keep a directory indexed as files change"

func newWatchCmd() *cobra.Command {
	cmder := &ingestCommander{}

	var workers uint

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: watchShortDesc,
		Long:  watchLongDesc,
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.preRun(cmd, storeFlags)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.runWatch(cmd.Context(), args[0], workers)
		},
	}

	cmder.addStoreFlags(cmd)
	cmd.Flags().UintVar(&workers, "workers", 3, "Number of indexing workers")

	return cmd
}

func (c *ingestCommander) runWatch(ctx context.Context, root string, workers uint) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	pool, err := worker.NewPool(&worker.Config{
		Indexer:    s.Indexer,
		NumWorkers: workers,
		Logger:     c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating worker pool: %w", err)
	}
	defer pool.Close()

	watcher, err := watch.New(watch.Config{Root: root, Logger: c.logger}, pool)
	if err != nil {
		return fmt.Errorf("watching %s: %w", root, err)
	}

	docs, err := ingest.ReadTextFiles(root)
	if err != nil {
		return err
	}
	for i := range docs {
		path, _ := docs[i].Metadata["path"].(string)
		docs[i].ID = watch.DocumentID(path)
	}
	if !pool.Enqueue(worker.Job{Source: root, Docs: docs}) {
		c.logger.Warn("initial index job dropped", "root", root)
	}

	c.logger.Info("initial index queued", "root", root, "documents", len(docs))

	err = watcher.Run(ctx)
	c.logger.Info("watch stopped",
		"indexed", pool.Indexed(),
		"failed", pool.Failed(),
	)
	return err
}
