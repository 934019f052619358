package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/spf13/cobra"

	"go-storefront/clock"
	"go-storefront/config"
	"go-storefront/database"
	"go-storefront/utils"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the storefront REST API.

The database is created and migrated on start and the default categories are
inserted if missing. Order events go to MongoDB when MONGO_URI is set.

Example:
  go-storefront serve --db ./storefront.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func openArchive(ctx context.Context, cfg *config.Config) (utils.OrderArchive, error) {
	if cfg.MongoURI == "" {
		log.Println("MONGO_URI is not set, order events are not archived")
		return utils.NoopArchive{}, nil
	}
	return utils.ConnectArchive(ctx, cfg.MongoURI, cfg.MongoDatabase)
}

// corsHandler allows the browser front end to call the API.
func corsHandler(cfg *config.Config, next http.Handler) http.Handler {
	return handlers.CORS(
		handlers.AllowedOrigins(cfg.CORSOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)(next)
}

func serve(ctx context.Context, cfg *config.Config) error {
	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	clk := clock.NewRealClock()
	if _, err := database.SeedCategories(ctx, db, clk); err != nil {
		return err
	}

	archive, err := openArchive(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := archive.Close(context.Background()); err != nil {
			log.Printf("Error closing order archive: %v", err)
		}
	}()

	emailService, err := utils.NewEmailServiceFromConfig(cfg)
	if err != nil {
		return err
	}

	app := NewApp(db, cfg, clk, emailService, archive)
	handler := handlers.CombinedLoggingHandler(os.Stdout, corsHandler(cfg, app.Router))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server is running on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
		log.Println("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	// Let in-flight emails and archive writes finish.
	app.Jobs.Wait()
	return nil
}
