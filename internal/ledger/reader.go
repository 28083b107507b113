package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// Reader is a read-only view over a ledger database for tooling that runs
// alongside the live bot: the history CLI and the dashboard. It opens the
// file in SQLite read-only mode so it can never block or corrupt the
// writer.
type Reader struct {
	db *sql.DB
}

func NewReader(path string) (*Reader, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("ledger: database path is empty")
	}
	dsn := fmt.Sprintf("file:%s?mode=ro&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("ledger: opening %s read-only failed: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ledger: %s is not readable: %w", path, err)
	}
	return &Reader{db: db}, nil
}

func (r *Reader) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Decisions returns up to limit decisions, newest first. limit <= 0 means
// no limit.
func (r *Reader) Decisions(ctx context.Context, limit int) ([]Record, error) {
	query := `SELECT id, timestamp, decision, percentage, reason,
		asset_balance, quote_balance, asset_avg_buy_price, asset_quote_price
		FROM decisions ORDER BY timestamp DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.Timestamp, &rec.Decision, &rec.Percentage, &rec.Reason,
			&rec.AssetBalance, &rec.QuoteBalance, &rec.AssetAvgBuyPrice, &rec.AssetQuotePrice); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// RunLogs returns up to limit run logs, newest first.
func (r *Reader) RunLogs(ctx context.Context, limit int) ([]RunLog, error) {
	query := `SELECT id, timestamp, symbol, provider_id, system_prompt, user_prompt,
		raw_output, attempts, image_attached, outcome, detail, error
		FROM run_logs ORDER BY timestamp DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []RunLog
	for rows.Next() {
		var log RunLog
		var userPrompt []byte
		if err := rows.Scan(&log.ID, &log.Timestamp, &log.Symbol, &log.ProviderID, &log.SystemPrompt,
			&userPrompt, &log.RawOutput, &log.Attempts, &log.ImageAttached,
			&log.Outcome, &log.Detail, &log.Error); err != nil {
			return nil, err
		}
		log.UserPrompt = userPrompt
		logs = append(logs, log)
	}
	return logs, rows.Err()
}
