package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/nerrad567/graylogic-pinpad/internal/audit"
	"github.com/nerrad567/graylogic-pinpad/internal/infrastructure/database"
	"github.com/nerrad567/graylogic-pinpad/internal/pinauth"
)

// runAudit lists, or prunes, the authentication trail.
//
//	pinpad audit [-device id] [-kind attempt|lockout] [-outcome OK|FAIL]
//	             [-since 24h] [-limit n] [-offset n] [-json]
//	pinpad audit -prune 720h
func runAudit(ctx context.Context, db *database.DB, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("audit", flag.ContinueOnError)
	fs.SetOutput(out)
	device := fs.String("device", "", "only events from this device")
	kind := fs.String("kind", "", "only attempt or lockout events")
	outcome := fs.String("outcome", "", "only OK or FAIL attempts")
	since := fs.Duration("since", 0, "only events newer than this, e.g. 24h")
	limit := fs.Int("limit", 0, "page size (default 50, max 200)")
	offset := fs.Int("offset", 0, "page offset")
	asJSON := fs.Bool("json", false, "print JSON instead of a table")
	prune := fs.Duration("prune", 0, "delete events older than this instead of listing")
	if err := fs.Parse(args); err != nil {
		return err
	}

	repo := audit.NewSQLiteRepository(db, nil)
	now := time.Now()

	if *prune > 0 {
		n, err := repo.Prune(ctx, now.Add(-*prune))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "pruned %d events\n", n)
		return nil
	}

	filter := audit.Filter{
		Kind:     *kind,
		DeviceID: *device,
		Outcome:  *outcome,
		Limit:    *limit,
		Offset:   *offset,
	}
	if *since > 0 {
		filter.Since = now.Add(-*since)
	}

	result, err := repo.List(ctx, filter)
	if err != nil {
		return err
	}

	if *asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tDEVICE\tKIND\tDETAIL")
	for _, e := range result.Events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			e.CreatedAt.Local().Format(time.DateTime), e.DeviceID, e.Kind, eventDetail(e))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("writing table: %w", err)
	}
	fmt.Fprintf(out, "%d of %d events\n", len(result.Events), result.Total)
	return nil
}

// eventDetail summarises the kind-specific columns of e.
func eventDetail(e audit.Event) string {
	if e.Kind == audit.KindLockout {
		return fmt.Sprintf("%s %ds", e.Phase, e.Seconds)
	}
	detail := fmt.Sprintf("%s %s len=%d failures=%d", e.Outcome, e.Trigger, e.Length, e.Failures)
	if e.Digest != nil {
		detail += " pin_hash=" + pinauth.FormatDigest(*e.Digest)
	}
	return detail
}

// runMigrate reports or changes the schema version.
//
//	pinpad migrate [status]   list applied and pending migrations
//	pinpad migrate up         apply pending migrations
//	pinpad migrate down       roll back the latest migration
func runMigrate(ctx context.Context, db *database.DB, args []string, out io.Writer) error {
	action := "status"
	if len(args) > 0 {
		action = args[0]
	}

	switch action {
	case "up":
		if err := db.Migrate(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "migrations applied")
	case "down":
		if err := db.MigrateDown(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "latest migration rolled back")
	case "status":
		applied, pending, err := db.GetMigrationStatus(ctx)
		if err != nil {
			return err
		}
		for _, m := range applied {
			fmt.Fprintf(out, "applied  %s  %s\n", m.Version, m.AppliedAt.Local().Format(time.DateTime))
		}
		for _, m := range pending {
			fmt.Fprintf(out, "pending  %s  %s\n", m.Version, m.Name)
		}
	default:
		return fmt.Errorf("unknown migrate action %q (want status, up or down)", action)
	}
	return nil
}
