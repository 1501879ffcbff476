package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/Lokesh1028/agentjobs/internal/app"
	"github.com/Lokesh1028/agentjobs/internal/seed"
	"github.com/Lokesh1028/agentjobs/internal/store"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the fallback job catalogue into an empty database",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
			res, err := seed.Run(ctx, a.Store, time.Now().UTC())
			if err != nil {
				return err
			}
			return printJSON(res)
		})
	},
}

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the full-text search index from active jobs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
			start := time.Now()
			n, err := a.Store.RebuildIndex(ctx)
			if err != nil {
				return err
			}
			return printJSON(map[string]any{"indexed": n, "duration_ms": time.Since(start).Milliseconds()})
		})
	},
}

var deactivateCmd = &cobra.Command{
	Use:   "deactivate JOB_ID...",
	Short: "Mark jobs inactive and drop them from the search index",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
			return printJSON(deactivate(ctx, a.Store, args))
		})
	},
}

func init() {
	rootCmd.AddCommand(seedCmd, reindexCmd, deactivateCmd)
}

type deactivateResult struct {
	ID    string `json:"id"`
	Found bool   `json:"found"`
	Error string `json:"error,omitempty"`
}

func deactivate(ctx context.Context, st *store.Store, ids []string) []deactivateResult {
	out := make([]deactivateResult, len(ids))
	for i, id := range ids {
		found, err := st.Deactivate(ctx, id)
		out[i] = deactivateResult{ID: id, Found: found}
		if err != nil {
			out[i].Error = err.Error()
		}
	}
	return out
}

// withApp wires the services for one command and closes them afterwards.
func withApp(ctx context.Context, fn func(context.Context, *app.App) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := app.New(ctx, loadConfig(), newLogger())
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}
