// Package stack resolves configuration and constructs the shared components
// used by the serve and ingest commands.
package stack

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/kauni/pkg/config"
	"github.com/papercomputeco/kauni/pkg/credentials"
	"github.com/papercomputeco/kauni/pkg/embeddings"
	embeddingutils "github.com/papercomputeco/kauni/pkg/embeddings/utils"
	"github.com/papercomputeco/kauni/pkg/ingest"
	"github.com/papercomputeco/kauni/pkg/ingest/kto"
	"github.com/papercomputeco/kauni/pkg/vector"
	vectorutils "github.com/papercomputeco/kauni/pkg/vector/utils"
)

// LoadConfig resolves the kauni configuration for cmd, binding the given
// registry flags so they take precedence over env and config.toml values.
func LoadConfig(cmd *cobra.Command, flagKeys []string) (*config.Config, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")

	v, err := config.InitViper(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	config.BindRegisteredFlags(v, cmd, config.Flags, flagKeys)

	cfg := config.FromViper(v)
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Options controls how Open treats store failures.
type Options struct {
	ConfigDir string

	// TolerateStore substitutes an unavailable driver when the store cannot
	// be reached, so a server can still start and report it.
	TolerateStore bool

	Logger *slog.Logger
}

// Stack holds the components built from one Config.
type Stack struct {
	Config      *config.Config
	Credentials *credentials.Manager
	Embedder    embeddings.Embedder
	Driver      vector.Driver
	Indexer     *ingest.Indexer

	logger *slog.Logger
}

// Open builds the embedder, the document store driver and the indexer.
func Open(ctx context.Context, cfg *config.Config, opts Options) (*Stack, error) {
	log := opts.Logger

	creds, err := credentials.NewManager(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("loading credentials: %w", err)
	}

	embedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: cfg.Embedding.Provider,
		TargetURL:    cfg.Embedding.Target,
		Model:        cfg.Embedding.Model,
		CacheSize:    int(cfg.Embedding.CacheSize),
	})
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	driver, err := vectorutils.NewVectorDriver(ctx, &vectorutils.NewVectorDriverOpts{
		ProviderType:  cfg.Store.Provider,
		Target:        cfg.Store.Target,
		Table:         cfg.Store.Table,
		MatchFunction: cfg.Store.MatchFunction,
		Dimensions:    cfg.Embedding.Dimensions,
		APIKey:        creds.Resolve("qdrant"),
		Logger:        log,
	})
	if err != nil {
		if !opts.TolerateStore || !errors.Is(err, vector.ErrStore) {
			_ = embedder.Close()
			return nil, fmt.Errorf("creating document store: %w", err)
		}
		log.Warn("document store unavailable, serving degraded",
			"provider", cfg.Store.Provider,
			"error", err,
		)
		driver = &vector.UnavailableDriver{Err: err}
	}

	indexer := ingest.NewIndexer(ingest.IndexerConfig{
		Embedder:   embedder,
		Driver:     driver,
		Logger:     log,
		Dimensions: int(cfg.Embedding.Dimensions),
	})

	log.Info("components ready",
		"store", cfg.Store.Provider,
		"table", cfg.Store.Table,
		"embedding_model", cfg.Embedding.Model,
	)

	return &Stack{
		Config:      cfg,
		Credentials: creds,
		Embedder:    embedder,
		Driver:      driver,
		Indexer:     indexer,
		logger:      log,
	}, nil
}

// KTO returns the open-data client, or a configuration error when no
// service key is stored or exported.
func (s *Stack) KTO() (*kto.Client, error) {
	return kto.NewClient(kto.Config{
		ServiceKey: s.Credentials.Resolve("kto"),
		NumRows:    int(s.Config.KTO.NumRows),
		MaxPages:   int(s.Config.KTO.MaxPages),
		Rate:       s.Config.KTO.Rate,
	}, s.logger)
}

// Close releases the driver and the embedder.
func (s *Stack) Close() {
	if err := s.Driver.Close(); err != nil {
		s.logger.Warn("closing document store", "error", err)
	}
	if err := s.Embedder.Close(); err != nil {
		s.logger.Warn("closing embedder", "error", err)
	}
}
