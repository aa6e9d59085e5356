package cli

import (
	"context"
	"fmt"

	"github.com/me/tos/internal/config"
	"github.com/me/tos/internal/server"
	"github.com/me/tos/internal/store"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cfg := config.DefaultServeConfig()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve recorded traces over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.DBPath == "" {
				return fmt.Errorf("--db is required")
			}

			st, err := store.NewSQLiteStore(cfg.DBPath, logger)
			if err != nil {
				return fmt.Errorf("open trace db: %w", err)
			}
			defer st.Close()
			if err := st.Migrate(context.Background()); err != nil {
				return fmt.Errorf("migrate trace db: %w", err)
			}

			srv := server.New(cfg, st, logger)
			return srv.ListenAndServe()
		},
	}

	cmd.Flags().StringVar(&cfg.Addr, "addr", cfg.Addr, "Listen address")
	cmd.Flags().StringVar(&cfg.DBPath, "db", "", "SQLite trace database path")

	return cmd
}
