// Package servecmder provides the serve command that runs the kauni API
// server with its MCP endpoint and the optional directory watcher.
package servecmder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/kauni/api"
	"github.com/papercomputeco/kauni/api/mcp"
	"github.com/papercomputeco/kauni/cmd/kauni/stack"
	"github.com/papercomputeco/kauni/pkg/config"
	"github.com/papercomputeco/kauni/pkg/dotdir"
	eventstreamutils "github.com/papercomputeco/kauni/pkg/eventstream/utils"
	"github.com/papercomputeco/kauni/pkg/ingest/watch"
	"github.com/papercomputeco/kauni/pkg/ingest/worker"
	"github.com/papercomputeco/kauni/pkg/llm"
	"github.com/papercomputeco/kauni/pkg/logger"
	"github.com/papercomputeco/kauni/pkg/rag"
)

type serveCommander struct {
	listen    string
	watchDir  string
	logFile   string
	configDir string
	debug     bool

	cfg    *config.Config
	logger *slog.Logger
}

const serveLongDesc string = `Run the kauni API server.

The server answers tourism questions over HTTP and MCP, serves semantic
search over the document store, and accepts ingestion requests. When the
document store cannot be reached at startup the server still starts;
answers degrade to the fallback response and /api/db/health reports the
error.

Use --watch to keep a directory of text and markdown files indexed while
the server runs.

Examples:
  kauni serve
  kauni serve --listen :9000 --store-provider sqlite --store-target ./kauni.db
  kauni serve --watch ./docs
  kauni serve --log-file ./kauni.log`

const serveShortDesc string = "Run the kauni API server"

var serveFlags = []string{
	config.FlagListen,
	config.FlagStoreProv,
	config.FlagStoreTgt,
	config.FlagStoreTable,
	config.FlagEmbeddingProv,
	config.FlagEmbeddingTgt,
	config.FlagEmbeddingModel,
	config.FlagEmbeddingDims,
	config.FlagLLMProv,
	config.FlagLLMModel,
	config.FlagLLMTgt,
	config.FlagTopK,
	config.FlagEventsProv,
	config.FlagEventsBrokers,
	config.FlagEventsTopic,
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	var (
		storeProv, storeTgt, storeTable     string
		embProv, embTgt, embModel           string
		llmProv, llmModel, llmTgt           string
		eventsProv, eventsBrokers, eventsTp string
		embDims, topK                       uint
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			cfg, err := stack.LoadConfig(cmd, serveFlags)
			if err != nil {
				return err
			}
			cmder.cfg = cfg
			cmder.listen = cfg.API.Listen
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagStoreProv, &storeProv)
	config.AddStringFlag(cmd, config.Flags, config.FlagStoreTgt, &storeTgt)
	config.AddStringFlag(cmd, config.Flags, config.FlagStoreTable, &storeTable)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingProv, &embProv)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingTgt, &embTgt)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingModel, &embModel)
	config.AddUintFlag(cmd, config.Flags, config.FlagEmbeddingDims, &embDims)
	config.AddStringFlag(cmd, config.Flags, config.FlagLLMProv, &llmProv)
	config.AddStringFlag(cmd, config.Flags, config.FlagLLMModel, &llmModel)
	config.AddStringFlag(cmd, config.Flags, config.FlagLLMTgt, &llmTgt)
	config.AddUintFlag(cmd, config.Flags, config.FlagTopK, &topK)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventsProv, &eventsProv)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventsBrokers, &eventsBrokers)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventsTopic, &eventsTp)
	cmd.Flags().StringVarP(&cmder.watchDir, "watch", "w", "", "Directory to watch and keep indexed")
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also append JSON logs to this file")

	return cmd
}

func (c *serveCommander) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.logger = logger.New(logger.WithDebug(c.debug), logger.WithPretty(true), logger.WithComponent("serve"))
	if c.logFile != "" {
		fileLogger, closer, err := logger.OpenFile(c.logFile, logger.WithDebug(c.debug), logger.WithComponent("serve"))
		if err != nil {
			return err
		}
		defer closer.Close()
		c.logger = logger.Multi(c.logger, fileLogger)
	}
	cfg := c.cfg

	s, err := stack.Open(ctx, cfg, stack.Options{
		ConfigDir:     c.configDir,
		TolerateStore: true,
		Logger:        c.logger,
	})
	if err != nil {
		return err
	}
	defer s.Close()

	caller, err := llm.NewCaller(llm.CallerConfig{
		Provider: cfg.LLM.Provider,
		Model:    cfg.LLM.Model,
		APIKey:   s.Credentials.Resolve(cfg.LLM.Provider),
		BaseURL:  cfg.LLM.Target,
	})
	if err != nil {
		return fmt.Errorf("creating llm caller: %w", err)
	}

	publisher, err := eventstreamutils.NewPublisher(&eventstreamutils.NewPublisherOpts{
		ProviderType: cfg.Events.Provider,
		Brokers:      cfg.Events.Brokers,
		Topic:        cfg.Events.Topic,
		Logger:       c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating event publisher: %w", err)
	}
	defer publisher.Close()

	personas := rag.NewPersonaStore(c.loadPersona())

	timeout := cfg.RAG.TimeoutDuration()
	retriever := rag.NewRetriever(rag.RetrieverConfig{
		Embedder: s.Embedder,
		Driver:   s.Driver,
		Logger:   c.logger,
		Timeout:  timeout,
	})
	pipeline := rag.NewPipeline(rag.PipelineConfig{
		Retriever: retriever,
		Generator: rag.NewGenerator(rag.GeneratorConfig{
			Caller:  caller,
			Logger:  c.logger,
			Timeout: timeout,
		}),
		Personas:  personas,
		Publisher: publisher,
		Logger:    c.logger,
		TopK:      int(cfg.RAG.TopK),
	})

	mcpServer, err := mcp.NewServer(mcp.Config{
		Retriever: retriever,
		Pipeline:  pipeline,
		Logger:    c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}

	apiConfig := api.Config{
		ListenAddr:   c.listen,
		Pipeline:     pipeline,
		Retriever:    retriever,
		Personas:     personas,
		PersonaSaver: c.savePersona,
		Indexer:      s.Indexer,
		Driver:       s.Driver,
		Table:        cfg.Store.Table,
		Publisher:    publisher,
		MCP:          mcpServer.Handler(),
	}

	ktoClient, err := s.KTO()
	if err != nil {
		c.logger.Info("KTO ingestion disabled", "reason", err)
	} else {
		apiConfig.KTO = ktoClient
	}

	apiServer, err := api.NewServer(apiConfig, c.logger)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	errChan := make(chan error, 2)

	if c.watchDir != "" {
		pool, err := worker.NewPool(&worker.Config{
			Indexer: s.Indexer,
			Logger:  c.logger,
		})
		if err != nil {
			return fmt.Errorf("creating worker pool: %w", err)
		}
		defer pool.Close()

		watcher, err := watch.New(watch.Config{Root: c.watchDir, Logger: c.logger}, pool)
		if err != nil {
			return fmt.Errorf("watching %s: %w", c.watchDir, err)
		}

		watchDone := make(chan struct{})
		defer func() {
			cancel()
			<-watchDone
		}()

		go func() {
			defer close(watchDone)
			if err := watcher.Run(ctx); err != nil {
				errChan <- fmt.Errorf("watcher error: %w", err)
			}
		}()
	}

	go func() {
		if err := apiServer.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", "signal", sig.String())
		cancel()
		return apiServer.Shutdown()
	}
}

// loadPersona applies a persisted override over the built-in persona.
func (c *serveCommander) loadPersona() rag.Persona {
	persona := rag.DefaultPersona()

	state, err := dotdir.NewManager().LoadPersonaState(c.configDir)
	if err != nil {
		c.logger.Warn("ignoring persona override", "error", err)
		return persona
	}
	if state == nil {
		return persona
	}

	if state.System != "" {
		persona.System = state.System
	}
	if state.Style != "" {
		persona.Style = state.Style
	}
	return persona
}

func (c *serveCommander) savePersona(p rag.Persona) error {
	return dotdir.NewManager().SavePersonaState(&dotdir.PersonaState{
		System: p.System,
		Style:  p.Style,
	}, c.configDir)
}
