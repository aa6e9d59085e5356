package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/me/tos/internal/config"
	"github.com/me/tos/internal/sim"
	"github.com/me/tos/internal/store"
	"github.com/me/tos/pkg/model"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	cfg := config.DefaultSimConfig()

	cmd := &cobra.Command{
		Use:   "run <workload.yaml>",
		Short: "Run a scheduling workload and print its trace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := sim.LoadWorkload(args[0])
			if err != nil {
				return err
			}

			quantum := cfg.Quantum
			if w.Quantum > 0 {
				quantum = w.Quantum
			}

			kernel := sim.NewKernel(quantum, os.Stdout, logger)

			// Attach the run recorder when a trace database is given.
			var rec *store.Recorder
			var st store.Store
			if cfg.DBPath != "" {
				ctx := context.Background()
				st, err = store.NewSQLiteStore(cfg.DBPath, logger)
				if err != nil {
					return fmt.Errorf("open trace db: %w", err)
				}
				defer st.Close()
				if err := st.Migrate(ctx); err != nil {
					return fmt.Errorf("migrate trace db: %w", err)
				}

				run := &model.Run{
					ID:          "run_" + uuid.New().String(),
					Workload:    w.Name,
					CreatedAt:   time.Now().UTC(),
					ThreadCount: len(w.Threads),
				}
				if err := st.CreateRun(ctx, run); err != nil {
					return fmt.Errorf("create run: %w", err)
				}
				rec = store.NewRecorder(st, run.ID)
				kernel.Tracer().SetSink(rec)
				logger.Info("recording run", "run_id", run.ID, "db", cfg.DBPath)
			}

			summary := kernel.Run(w)

			if rec != nil {
				if err := rec.Flush(context.Background(), time.Now().UTC(), summary.TotalTicks); err != nil {
					return fmt.Errorf("flush trace: %w", err)
				}
			}

			fmt.Fprintf(os.Stderr, "workload %q: %d threads, %s events, %s ticks\n",
				summary.Workload, summary.Threads,
				humanize.Comma(int64(summary.Events)), humanize.Comma(summary.TotalTicks))
			return nil
		},
	}

	cmd.Flags().Int64Var(&cfg.Quantum, "quantum", cfg.Quantum, "Time slice in ticks for the lowest band (workload may override)")
	cmd.Flags().StringVar(&cfg.DBPath, "record", "", "Record the trace into this SQLite database")

	return cmd
}
