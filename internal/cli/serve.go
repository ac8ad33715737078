package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/cityfeed/cityfeed/internal/logger"
	"github.com/cityfeed/cityfeed/internal/pipeline"
	"github.com/cityfeed/cityfeed/internal/server"
	"github.com/cityfeed/cityfeed/internal/store"
)

// serveCmd runs the HTTP server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the ingestion HTTP server",
	Long: `Start the HTTP server exposing ingestion triggers, run introspection,
submission moderation, health, and metrics endpoints.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		s, err := store.Open(cfg.Database.Path)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()
		if err := s.Migrate(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		pipe := pipeline.New(cfg, s)
		srv := server.New(cfg.Server.Addr, s, pipe)
		logger.Info("starting server",
			zap.String("addr", cfg.Server.Addr),
			zap.String("database", cfg.Database.Path))
		return srv.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides config)")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	rootCmd.AddCommand(serveCmd)
}
