package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Avinash-Amudala/llm-incident-copilot/internal/config"
	"github.com/Avinash-Amudala/llm-incident-copilot/internal/embedder"
	"github.com/Avinash-Amudala/llm-incident-copilot/internal/ingest"
	"github.com/Avinash-Amudala/llm-incident-copilot/internal/llm"
	"github.com/Avinash-Amudala/llm-incident-copilot/internal/server"
	"github.com/Avinash-Amudala/llm-incident-copilot/internal/storage"
	"github.com/Avinash-Amudala/llm-incident-copilot/internal/vectorstore"
)

// NewServeCmd creates the serve command.
func NewServeCmd(cfgFile, logLevel *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the incident copilot HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, cfgFile, logLevel)
		},
	}

	cmd.Flags().Bool("hot-reload", true, "enable hot-reload of config file")

	return cmd
}

// services bundles the collaborators behind the API and the one-shot
// ingest command.
type services struct {
	embedder embedder.Embedder
	store    vectorstore.Store
	chat     llm.ChatService
	audit    *llm.AuditLogger
	ingester *ingest.Service
}

func buildServices(cfg *config.Config, log zerolog.Logger) (*services, error) {
	store, err := vectorstore.New(cfg.VectorStore)
	if err != nil {
		return nil, fmt.Errorf("creating vector store: %w", err)
	}

	emb := embedder.NewOllamaEmbedder(cfg.Embedding)
	audit := llm.NewAuditLogger(cfg.Audit)

	return &services{
		embedder: emb,
		store:    store,
		chat:     llm.New(cfg.Chat),
		audit:    audit,
		ingester: ingest.New(cfg.Chunking, emb, store, audit, log),
	}, nil
}

func resolveLogLevel(flag string, cfg *config.Config) string {
	if flag != "" {
		return flag
	}
	return cfg.LogLevel
}

func runServe(cmd *cobra.Command, cfgFile, logLevel *string) error {
	cfg, err := config.Load(*cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := SetupLogging(resolveLogLevel(*logLevel, cfg))

	svcs, err := buildServices(cfg, log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := svcs.store.Start(ctx); err != nil {
		return fmt.Errorf("starting vector store: %w", err)
	}

	srv := server.New(cfg.Server, server.Deps{
		Ingester: svcs.ingester,
		Embedder: svcs.embedder,
		Store:    svcs.store,
		Chat:     svcs.chat,
		Audit:    svcs.audit,
		Uploads:  storage.NewUploads(cfg.Storage.Dir),
	}, log)

	log.Info().
		Int("port", cfg.Server.Port).
		Str("vectorstore", svcs.store.Name()).
		Str("chat_provider", svcs.chat.Provider()).
		Msg("starting incident copilot")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	hotReloadEnabled, _ := cmd.Flags().GetBool("hot-reload")
	if *cfgFile != "" && hotReloadEnabled {
		startConfigWatcher(ctx, *cfgFile, svcs.ingester, log)
	}

	go handleSignals(ctx, cancel, sigChan, *cfgFile, svcs.ingester, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Start(gctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// No-op outside systemd units.
	if _, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		log.Debug().Err(err).Msg("sd_notify ready failed")
	}

	err = g.Wait()

	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)

	if stopErr := svcs.store.Stop(context.Background()); stopErr != nil {
		log.Error().Err(stopErr).Msg("stopping vector store")
	}
	if closeErr := svcs.audit.Close(); closeErr != nil {
		log.Error().Err(closeErr).Msg("closing audit log")
	}

	if err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	log.Info().Msg("incident copilot stopped")
	return nil
}

func startConfigWatcher(ctx context.Context, cfgFile string, ingester *ingest.Service, log zerolog.Logger) {
	watcher := config.NewWatcher(cfgFile, log)
	if err := watcher.Start(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to start config watcher")
		return
	}

	log.Info().Str("config", cfgFile).Msg("hot-reload enabled")

	go func() {
		for {
			select {
			case newCfg := <-watcher.Changes():
				ingester.Reconfigure(newCfg.Chunking)
				log.Info().Msg("chunking parameters reloaded")
			case err := <-watcher.Errors():
				log.Error().Err(err).Msg("config watcher error")
			case <-ctx.Done():
				return
			}
		}
	}()
}

func handleSignals(ctx context.Context, cancel context.CancelFunc, sigChan <-chan os.Signal, cfgFile string, ingester *ingest.Service, log zerolog.Logger) {
	for {
		select {
		case sig := <-sigChan:
			switch sig {
			case syscall.SIGHUP:
				log.Info().Msg("received SIGHUP, reloading config")
				newCfg, err := config.Load(cfgFile)
				if err != nil {
					log.Error().Err(err).Msg("failed to reload config")
					continue
				}
				ingester.Reconfigure(newCfg.Chunking)
			case syscall.SIGINT, syscall.SIGTERM:
				log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
				cancel()
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
