// upbot-history prints the decision ledger of a running or stopped bot.
// It opens the database read-only, so it is safe to run next to the live
// process.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"upbot/internal/ledger"
)

func main() {
	path := flag.String("db", "trading_decisions.sqlite", "path to the ledger database")
	limit := flag.Int("n", 20, "number of rows, newest first (0 for all)")
	asJSON := flag.Bool("json", false, "emit JSON instead of a table")
	runs := flag.Bool("runs", false, "show run logs instead of decisions")
	flag.Parse()

	reader, err := ledger.NewReader(*path)
	if err != nil {
		log.Fatalf("opening ledger failed: %v", err)
	}
	defer reader.Close()

	ctx := context.Background()
	if *runs {
		printRunLogs(ctx, reader, *limit, *asJSON)
		return
	}
	printDecisions(ctx, reader, *limit, *asJSON)
}

func printDecisions(ctx context.Context, reader *ledger.Reader, limit int, asJSON bool) {
	records, err := reader.Decisions(ctx, limit)
	if err != nil {
		log.Fatalf("reading decisions failed: %v", err)
	}
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			log.Fatal(err)
		}
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME (UTC)\tDECISION\tPCT\tASSET\tQUOTE\tAVG BUY\tPRICE\tREASON")
	for _, rec := range records {
		fmt.Fprintf(w, "%s\t%s\t%.0f\t%.8f\t%.0f\t%.0f\t%.0f\t%s\n",
			time.UnixMilli(rec.Timestamp).UTC().Format("2006-01-02 15:04"),
			rec.Decision, rec.Percentage,
			rec.AssetBalance, rec.QuoteBalance, rec.AssetAvgBuyPrice, rec.AssetQuotePrice,
			truncate(rec.Reason, 60))
	}
	w.Flush()
}

func printRunLogs(ctx context.Context, reader *ledger.Reader, limit int, asJSON bool) {
	logs, err := reader.RunLogs(ctx, limit)
	if err != nil {
		log.Fatalf("reading run logs failed: %v", err)
	}
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(logs); err != nil {
			log.Fatal(err)
		}
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME (UTC)\tSYMBOL\tPROVIDER\tATTEMPTS\tOUTCOME\tDETAIL")
	for _, entry := range logs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			time.UnixMilli(entry.Timestamp).UTC().Format("2006-01-02 15:04"),
			entry.Symbol, entry.ProviderID, entry.Attempts, entry.Outcome,
			truncate(entry.Detail, 60))
	}
	w.Flush()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
