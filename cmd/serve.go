package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/amiibo-sheets/internal/config"
	"github.com/kozaktomas/amiibo-sheets/internal/templates"
	"github.com/kozaktomas/amiibo-sheets/internal/templates/postgres"
	"github.com/kozaktomas/amiibo-sheets/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the Amiibo Sheets web server.
The server exposes the layout, template and render API and the browser UI.
Templates are stored in PostgreSQL when DATABASE_URL is set and kept in
memory otherwise.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Port to listen on (default WEB_PORT or 8080)")
	serveCmd.Flags().String("host", "", "Host to bind to (default WEB_HOST or 0.0.0.0)")
}

// resolveServeHostPort lets flags override the configured host and port.
func resolveServeHostPort(cmd *cobra.Command, cfg *config.Config) {
	if port := mustGetInt(cmd, "port"); port > 0 {
		cfg.Web.Port = port
	}
	if host := mustGetString(cmd, "host"); host != "" {
		cfg.Web.Host = host
	}
}

// openTemplateStore connects the PostgreSQL backend when configured and
// returns the active template store.
func openTemplateStore(cfg *config.Config) (templates.Store, error) {
	if cfg.Database.URL == "" {
		return templates.GetStore(), nil
	}
	fmt.Printf("Connecting to PostgreSQL database...\n")
	if err := postgres.Initialize(&cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	return templates.GetStore(), nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	resolveServeHostPort(cmd, cfg)

	store, err := openTemplateStore(cfg)
	if err != nil {
		return err
	}
	if templates.IsPersistent() {
		fmt.Printf("Template storage: PostgreSQL\n")
	} else {
		fmt.Printf("Template storage: in memory (set DATABASE_URL to persist templates)\n")
	}
	if cfg.Assets.Base() == "" {
		fmt.Printf("Warning: ASSET_DIR and ASSET_BASE_URL are not set, image back designs will be blank\n")
	}

	server, err := web.NewServer(cfg, store)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
		if pool := postgres.GetGlobalPool(); pool != nil {
			pool.Close()
		}
	}()

	fmt.Printf("Starting Amiibo Sheets on http://%s:%d\n", cfg.Web.Host, cfg.Web.Port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
