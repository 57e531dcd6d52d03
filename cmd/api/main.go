package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"radiology-portal/internal/assignment"
	"radiology-portal/internal/config"
	"radiology-portal/internal/db"
	"radiology-portal/internal/middleware"
	"radiology-portal/internal/models"
	"radiology-portal/internal/prefs"
	"radiology-portal/internal/store"
	"radiology-portal/internal/viewstate"
	"radiology-portal/internal/windows"
	"radiology-portal/ui"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "portal",
		Short: "Radiology portal server",
	}
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the portal HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the Postgres schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return errors.New("DATABASE_URL is not set")
			}
			conn, err := db.Open(cmd.Context(), cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer conn.Close()
			return db.New(conn).Migrate(cmd.Context())
		},
	}
}

func openPrefs(cfg *config.Config, props config.Properties, logger zerolog.Logger) (prefs.Store, func(), error) {
	defaults := prefs.Defaults{
		Theme: models.ThemeLight,
		Geometry: map[models.WindowRole]models.WindowGeometry{
			models.RoleReporting: props.Geometry(models.RoleReporting),
			models.RoleViewer:    props.Geometry(models.RoleViewer),
		},
	}
	if cfg.RedisURL == "" {
		return prefs.NewMemoryStore(defaults), func() {}, nil
	}
	client, err := prefs.NewRedisClient(cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	logger.Info().Msg("preferences stored in redis")
	return prefs.NewRedisStore(client, defaults), func() { client.Close() }, nil
}

func runServer(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := cfg.NewLogger(os.Stdout)

	loader := config.NewPropertiesLoader(logger, 5*time.Minute)
	props := loader.Load(ctx, cfg.PropertiesSource)

	exams, closeStore, err := store.Open(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open exam store")
	}
	defer closeStore()

	prefStore, closePrefs, err := openPrefs(cfg, props, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open preferences store")
	}
	defer closePrefs()

	renderer, err := ui.NewRenderer(ui.FS(cfg.TemplateDir))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse templates")
	}

	engine := assignment.NewEngine(exams)
	if _, err := engine.Recount(ctx); err != nil {
		logger.Fatal().Err(err).Msg("initial doctor recount failed")
	}

	srv := &server{
		logger:     logger,
		store:      exams,
		engine:     engine,
		view:       viewstate.NewCoordinator(exams, logger),
		windows:    windows.NewManager(windows.ChannelOpener{Buffer: 16}, prefStore, logger),
		prefs:      prefStore,
		ui:         renderer,
		properties: func(ctx context.Context) config.Properties { return loader.Load(ctx, cfg.PropertiesSource) },
		reloadProperties: func(ctx context.Context) config.Properties {
			return loader.Reload(ctx, cfg.PropertiesSource)
		},
		now: time.Now,
	}
	if _, err := srv.view.Refresh(ctx); err != nil {
		logger.Fatal().Err(err).Msg("initial worklist load failed")
	}

	httpServer := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: middleware.Chain(srv.routes(),
			middleware.Recovery(logger),
			middleware.Logger(logger),
			middleware.CSRF(!cfg.IsDev()),
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", httpServer.Addr).Msg("portal server started")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	if err := srv.windows.CloseAll(); err != nil {
		logger.Warn().Err(err).Msg("closing popup windows")
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}
