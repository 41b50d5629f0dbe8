// Command taskflowctl is the operator CLI for the coordination fabric:
// inspecting pending reminders, tailing a task's audit trail, and forcing
// an out-of-cycle recurring-task materialization pass. Grounded on
// internal/cli/root.go's cobra root-command pattern.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/taskflow/coordination/internal/reminder"
	"github.com/taskflow/coordination/internal/recurring"
	"github.com/taskflow/coordination/internal/taskapiclient"
	"github.com/taskflow/coordination/pkg/database"
)

var (
	databaseURL    string
	auditBaseURL   string
	taskAPIBaseURL string
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "taskflowctl",
		Short: "Operator CLI for the task coordination fabric",
	}
	root.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "Postgres connection string")
	root.PersistentFlags().StringVar(&auditBaseURL, "audit-base-url", envOr("AUDIT_BASE_URL", "http://localhost:8083"), "Audit Ingestor base URL")
	root.PersistentFlags().StringVar(&taskAPIBaseURL, "task-api-base-url", envOr("TASK_API_BASE_URL", "http://localhost:8080"), "Task API base URL")

	root.AddCommand(remindersCmd())
	root.AddCommand(auditCmd())
	root.AddCommand(recurringCmd())
	return root
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func remindersCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "reminders", Short: "Inspect the reminder schedule"}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List pending reminders scheduled to fire after now",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := database.NewPool(ctx, database.DefaultPostgresConfig(databaseURL))
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer db.Close()

			repo := reminder.NewRepository(db.Pool)
			entries, err := repo.LoadFuture(ctx, time.Now())
			if err != nil {
				return fmt.Errorf("load reminders: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), entries)
		},
	})
	return cmd
}

func auditCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "audit", Short: "Query the task audit trail"}
	var limit int
	tail := &cobra.Command{
		Use:   "tail <task-id>",
		Short: "Print the chronological audit history for a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid task id: %w", err)
			}

			url := fmt.Sprintf("%s/api/v1/audit/tasks/%s?limit=%d", auditBaseURL, taskID, limit)
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, url, nil)
			if err != nil {
				return err
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return fmt.Errorf("query auditingestor: %w", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("auditingestor returned %s", resp.Status)
			}
			_, err = io.Copy(cmd.OutOrStdout(), resp.Body)
			return err
		},
	}
	tail.Flags().IntVar(&limit, "limit", 100, "maximum number of events to return")
	cmd.AddCommand(tail)
	return cmd
}

func recurringCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "recurring", Short: "Operate on recurring task templates"}
	cmd.AddCommand(&cobra.Command{
		Use:   "trigger",
		Short: "Run one recurring-task materialization pass immediately",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := database.NewPool(ctx, database.DefaultPostgresConfig(databaseURL))
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer db.Close()

			logger := slog.New(slog.NewJSONHandler(cmd.OutOrStderr(), nil))
			repo := recurring.NewRepository(db.Pool)
			client := taskapiclient.New(taskAPIBaseURL)
			generator := recurring.NewGenerator(repo, client, logger, 0)

			if err := generator.Tick(ctx); err != nil {
				return fmt.Errorf("materialization pass: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "materialization pass complete")
			return nil
		},
	})
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
