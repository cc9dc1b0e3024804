package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"subsctl/internal/sandbox"
	"time"

	"github.com/spf13/cobra"
)

var sandboxCmd = &cobra.Command{
	Use:   "sandbox",
	Short: "Run a local subscriptions API for development",
	Long: `Serve the subscriptions API from a local SQLite database.
Log in with admin@example.com / secret after pointing server-url at it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		dsn, _ := cmd.Flags().GetString("db")
		seed, _ := cmd.Flags().GetInt("seed")

		ctx := contextOrBackground(cmd.Context())

		store, err := sandbox.Open(ctx, dsn)
		if err != nil {
			return fmt.Errorf("error opening sandbox database: %w", err)
		}
		defer store.Close()

		if seed > 0 {
			if err := store.Seed(ctx, seed, time.Now().UnixNano()); err != nil {
				return fmt.Errorf("error seeding sandbox database: %w", err)
			}
		}

		srv := &http.Server{
			Addr:              addr,
			Handler:           sandbox.NewServer(store, sandbox.Options{Logger: logger}).Routes(),
			ReadHeaderTimeout: 5 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.ListenAndServe()
		}()

		fmt.Printf("Sandbox API listening on %s (Ctrl+C to stop)\n", addr)
		fmt.Println("Log in with admin@example.com / secret")

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("sandbox server failed: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error stopping sandbox server: %w", err)
		}

		fmt.Println("Sandbox stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sandboxCmd)

	sandboxCmd.Flags().String("addr", ":8080", "Address to listen on")
	sandboxCmd.Flags().String("db", ":memory:", "SQLite database file")
	sandboxCmd.Flags().Int("seed", 40, "Number of generated subscriptions to insert at startup")
}
