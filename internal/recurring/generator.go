package recurring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/taskflow/coordination/internal/recurrence"
	"github.com/taskflow/coordination/internal/taskapiclient"
)

// Generator runs the 5-minute materialization tick (spec §4.2), coalescing
// missed runs and allowing at most one tick in flight at a time. Grounded
// on internal/job/scheduler.go's Run/ticker shape, generalized from a
// due-schedule poll to a template-task poll.
type Generator struct {
	repo     *Repository
	client   *taskapiclient.Client
	logger   *slog.Logger
	interval time.Duration
	running  atomic.Bool
}

// NewGenerator builds a Generator.
func NewGenerator(repo *Repository, client *taskapiclient.Client, logger *slog.Logger, interval time.Duration) *Generator {
	return &Generator{repo: repo, client: client, logger: logger, interval: interval}
}

// Run ticks Tick every interval until ctx is cancelled, skipping a tick
// outright if the previous one is still in flight (spec §4.2 step 1:
// "coalesce missed runs, max one in flight").
func (g *Generator) Run(ctx context.Context) error {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			g.tickOnce(ctx)
		}
	}
}

func (g *Generator) tickOnce(ctx context.Context) {
	if !g.running.CompareAndSwap(false, true) {
		g.logger.Info("recurring: previous tick still running, skipping")
		return
	}
	defer g.running.Store(false)

	if err := g.Tick(ctx); err != nil {
		g.logger.Error("recurring: tick failed", "error", err)
	}
}

// Tick runs one materialization pass over every template task (spec §4.2
// steps 2-4). Per-template failures are logged and skipped; the loop
// always continues (spec §4.2 "Failure semantics").
func (g *Generator) Tick(ctx context.Context) error {
	now := time.Now().UTC()
	templates, err := g.repo.ListTemplates(ctx, now)
	if err != nil {
		return err
	}

	for _, tmpl := range templates {
		if err := g.materialize(ctx, tmpl, now); err != nil {
			g.logger.Error("recurring: skipping template", "template_id", tmpl.ID, "error", err)
		}
	}
	return nil
}

// materialize checks whether today's occurrence already exists for tmpl
// and, if not, creates it via the Task API (spec §4.2 steps 3-4).
func (g *Generator) materialize(ctx context.Context, tmpl Template, now time.Time) error {
	pattern, err := recurrence.Parse(tmpl.RecurrencePattern)
	if err != nil {
		return err
	}

	occurrenceDate := truncateToDay(now)
	if !occursOn(pattern, tmpl.CreatedAt, occurrenceDate) {
		return nil
	}

	exists, err := g.repo.InstanceExists(ctx, tmpl.ID, occurrenceDate)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	_, err = g.client.CreateChildTask(ctx, tmpl.OwnerID, taskapiclient.CreateChildRequest{
		Title:                 tmpl.Title,
		Description:           tmpl.Description,
		ReminderOffset:        tmpl.ReminderOffset,
		ParentRecurringTaskID: tmpl.ID,
		OccurrenceDate:        occurrenceDate,
	})
	return err
}

// occursOn reports whether a template anchored at createdAt has an
// occurrence falling on day (spec §4.2 step 3: "compute whether an
// instance exists for today's occurrence-date under the pattern").
func occursOn(pattern *recurrence.Pattern, createdAt, day time.Time) bool {
	anchor := truncateToDay(createdAt)
	if !day.After(anchor) && !day.Equal(anchor) {
		return false
	}

	cursor := anchor
	for i := 0; i < 10000; i++ {
		if cursor.Equal(day) {
			return true
		}
		next := recurrence.NextOccurrence(pattern, cursor, nil)
		if next == nil || next.After(day) {
			return false
		}
		cursor = *next
	}
	return false
}

func truncateToDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
