// Package ingestcmder provides the ingest command for loading documents into
// the document store from local files or the KTO open-data API.
package ingestcmder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/kauni/cmd/kauni/stack"
	"github.com/papercomputeco/kauni/pkg/config"
	"github.com/papercomputeco/kauni/pkg/logger"
)

const ingestLongDesc string = `Load documents into the kauni document store.

Each document is embedded with the configured embedding model and upserted
into the configured store. Use subcommands to choose a source:
  kauni ingest fs <path>       Index .txt and .md files below a path
  kauni ingest kto             Fetch and index KTO open-data tourism records
  kauni ingest watch <dir>     Keep a directory indexed as files change`

const ingestShortDesc string = "Load documents into the document store"

var storeFlags = []string{
	config.FlagStoreProv,
	config.FlagStoreTgt,
	config.FlagStoreTable,
	config.FlagEmbeddingProv,
	config.FlagEmbeddingTgt,
	config.FlagEmbeddingModel,
	config.FlagEmbeddingDims,
}

func NewIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: ingestShortDesc,
		Long:  ingestLongDesc,
	}

	cmd.AddCommand(newFSCmd())
	cmd.AddCommand(newKTOCmd())
	cmd.AddCommand(newWatchCmd())

	return cmd
}

// ingestCommander carries the state shared by every ingest subcommand.
type ingestCommander struct {
	configDir string
	debug     bool

	storeProv, storeTgt, storeTable string
	embProv, embTgt, embModel       string
	embDims                         uint

	cfg    *config.Config
	logger *slog.Logger
}

func (c *ingestCommander) addStoreFlags(cmd *cobra.Command) {
	config.AddStringFlag(cmd, config.Flags, config.FlagStoreProv, &c.storeProv)
	config.AddStringFlag(cmd, config.Flags, config.FlagStoreTgt, &c.storeTgt)
	config.AddStringFlag(cmd, config.Flags, config.FlagStoreTable, &c.storeTable)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingProv, &c.embProv)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingTgt, &c.embTgt)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingModel, &c.embModel)
	config.AddUintFlag(cmd, config.Flags, config.FlagEmbeddingDims, &c.embDims)
}

func (c *ingestCommander) preRun(cmd *cobra.Command, flagKeys []string) error {
	c.configDir, _ = cmd.Flags().GetString("config-dir")

	var err error
	c.debug, err = cmd.Flags().GetBool("debug")
	if err != nil {
		return fmt.Errorf("could not get debug flag: %w", err)
	}

	c.cfg, err = stack.LoadConfig(cmd, flagKeys)
	if err != nil {
		return err
	}

	c.logger = logger.New(logger.WithDebug(c.debug), logger.WithPretty(true), logger.WithComponent("ingest"))
	return nil
}

func (c *ingestCommander) open(ctx context.Context) (*stack.Stack, error) {
	return stack.Open(ctx, c.cfg, stack.Options{
		ConfigDir: c.configDir,
		Logger:    c.logger,
	})
}
