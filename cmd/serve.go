package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/pathfinder/internal/logger"
	"github.com/spigell/pathfinder/internal/server"
	"github.com/spigell/pathfinder/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web chat assistant",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("addr", "a", "", "listen address (default :8080)")

	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig(viper.GetViper())
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the pathfinder server", zap.String("version", version))

	deps, err := buildComponents(ctx, config, logger)
	if err != nil {
		logger.Fatal("configuring clients", zap.Error(err),
			zap.String("hint", "credentials can be set in the environment, a .env file or pathfinder.yaml"),
		)
	}

	opts := server.Options{
		Chat:          deps.router,
		Store:         session.NewStore(config.Server.SessionTTL),
		Logger:        logger,
		SecureCookies: config.Server.SecureCookies,
	}
	// Typed nil pointers must not reach the optional interfaces.
	if deps.classifier != nil {
		opts.Classifier = deps.classifier
	}
	if deps.transcriber != nil {
		opts.Transcriber = deps.transcriber
		opts.Speaker = deps.speaker
	}

	srv, err := server.New(opts)
	if err != nil {
		logger.Fatal("creating a server", zap.Error(err))
	}

	if err := srv.Run(ctx, config.Server.Addr); err != nil {
		logger.Fatal("serving", zap.Error(err))
	}

	logger.Info("server stopped")
}
