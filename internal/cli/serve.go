package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bridgeware/agentbridge/internal/agent"
	"github.com/bridgeware/agentbridge/internal/config"
	"github.com/bridgeware/agentbridge/internal/gateway"
	"github.com/bridgeware/agentbridge/internal/logging"
	"github.com/bridgeware/agentbridge/internal/platform"
	"github.com/bridgeware/agentbridge/internal/storage"
	"github.com/bridgeware/agentbridge/internal/store"
	"github.com/bridgeware/agentbridge/internal/tools"
)

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the gateway server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if port != 0 {
				cfg.Server.Port = port
			}

			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				for _, issue := range issues {
					log.Error().Str("path", issue.Path).Msg(issue.Message)
				}
				return fmt.Errorf("config validation failed with %d issue(s)", len(issues))
			}

			if cfg.Logging.Style == "json" {
				log = logging.New(os.Stderr, cfg.Logging.Level)
			} else if logLevel == "" && cfg.Logging.Level != "" {
				log = logging.New(nil, cfg.Logging.Level)
			}

			cred, err := platform.ResolveCredential(
				cfg.Platform.APIKey, cfg.Platform.TenantID,
				cfg.Platform.ClientID, cfg.Platform.ClientSecret, cfg.Platform.Scope,
			)
			if err != nil {
				return err
			}
			client, err := platform.NewHTTPClient(cfg.Platform.Endpoint, cfg.Platform.APIVersion, cred, log)
			if err != nil {
				return err
			}

			// Blob storage is optional; turns that need it fail per-request.
			var blobs storage.Store
			if cfg.Blob.ConnectionString != "" {
				azure, err := storage.NewAzureStore(cfg.Blob.ConnectionString, cfg.Blob.Container, log)
				if err != nil {
					return err
				}
				blobs = azure
				log.Info().Str("container", cfg.Blob.Container).Msg("blob storage configured")
			} else {
				log.Warn().Msg("no blob storage configured, attachments and file relay disabled")
			}

			var history store.History
			if cfg.History.Store == "sqlite" {
				db, err := store.Open(cfg.History.Path, log)
				if err != nil {
					return fmt.Errorf("opening database: %w", err)
				}
				defer db.Close()
				history = db
			} else {
				history = store.NewMemoryHistory()
				log.Info().Msg("using in-memory turn history")
			}

			reg := tools.NewRegistry(log)
			reg.Register(tools.CityWeather{})
			reg.Register(tools.Forecast{})

			orch := agent.NewOrchestrator(client, blobs, reg, history, &cfg, log)
			srv := gateway.NewServer(orch, &cfg, log)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errs := make(chan error, 1)
			go func() { errs <- srv.Start() }()

			select {
			case err := <-errs:
				return err
			case <-ctx.Done():
			}

			log.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides config)")
	return cmd
}
