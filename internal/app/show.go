package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"
)

// Show prints recent persisted violations.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot show violations")
	}
	if closeStore != nil {
		defer closeStore()
	}

	records, err := store.ListRecentViolations(ctx, opts.Limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(os.Stdout, "no violations found")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Time (UTC)\tKind\tSeverity\tSymbol\tParticipants")

	for _, record := range records {
		symbol := "-"
		if record.Symbol != nil {
			symbol = *record.Symbol
		}
		fmt.Fprintf(
			writer,
			"%s\t%s\t%s\t%s\t%s\n",
			record.AnchoredAt.UTC().Format(time.RFC3339),
			record.Kind,
			record.Severity,
			symbol,
			strings.Join(record.Participants, ","),
		)
	}

	writer.Flush()
	return nil
}
