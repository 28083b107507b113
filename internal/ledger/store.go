// Package ledger persists decisions and run logs to SQLite. The Store is
// the single writer; read-only consumers use Reader so they never hold a
// write lock on the live database.
package ledger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type Store struct {
	db *gorm.DB
}

func NewStore(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("ledger: database path is empty")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ledger: creating %s failed: %w", dir, err)
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("ledger: opening %s failed: %w", path, err)
	}
	if err := db.AutoMigrate(&decisionModel{}, &runLogModel{}); err != nil {
		return nil, fmt.Errorf("ledger: migration failed: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(2)
	sqlDB.SetMaxIdleConns(2)
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Append writes one decision row. The row is committed atomically; a
// failed append leaves the ledger exactly as it was.
func (s *Store) Append(ctx context.Context, rec Record) (int64, error) {
	if rec.Timestamp == 0 {
		rec.Timestamp = time.Now().UnixMilli()
	}
	model := decisionModel{
		Timestamp:        rec.Timestamp,
		Decision:         rec.Decision,
		Percentage:       rec.Percentage,
		Reason:           rec.Reason,
		AssetBalance:     rec.AssetBalance,
		QuoteBalance:     rec.QuoteBalance,
		AssetAvgBuyPrice: rec.AssetAvgBuyPrice,
		AssetQuotePrice:  rec.AssetQuotePrice,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&model).Error
	})
	if err != nil {
		return 0, fmt.Errorf("ledger: append failed: %w", err)
	}
	return model.ID, nil
}

// FetchLast returns up to limit decisions, newest first. Reading never
// mutates the ledger; repeated calls return identical rows.
func (s *Store) FetchLast(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 10
	}
	var models []decisionModel
	if err := s.db.WithContext(ctx).
		Order("timestamp DESC, id DESC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("ledger: fetch failed: %w", err)
	}
	records := make([]Record, 0, len(models))
	for _, m := range models {
		records = append(records, Record(m))
	}
	return records, nil
}

// FormatRecent renders the last limit decisions as prompt text, newest
// first. It implements the requester's history source.
func (s *Store) FormatRecent(ctx context.Context, limit int) (string, error) {
	records, err := s.FetchLast(ctx, limit)
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "", nil
	}
	var b strings.Builder
	b.WriteString("Recent decisions, newest first:\n")
	for _, rec := range records {
		ts := time.UnixMilli(rec.Timestamp).UTC().Format("2006-01-02 15:04")
		fmt.Fprintf(&b, "- %s UTC: %s %.0f%% (%s); balances after: asset=%.8f quote=%.0f avg_buy=%.0f price=%.0f\n",
			ts, rec.Decision, rec.Percentage, rec.Reason,
			rec.AssetBalance, rec.QuoteBalance, rec.AssetAvgBuyPrice, rec.AssetQuotePrice)
	}
	return b.String(), nil
}

// AppendRunLog writes one run log row. Run logs are diagnostics; callers
// treat failures as non-fatal.
func (s *Store) AppendRunLog(ctx context.Context, log RunLog) error {
	if log.Timestamp == 0 {
		log.Timestamp = time.Now().UnixMilli()
	}
	model := runLogModel{
		Timestamp:     log.Timestamp,
		Symbol:        log.Symbol,
		ProviderID:    log.ProviderID,
		SystemPrompt:  log.SystemPrompt,
		UserPrompt:    log.UserPrompt,
		RawOutput:     log.RawOutput,
		Attempts:      log.Attempts,
		ImageAttached: log.ImageAttached,
		Outcome:       log.Outcome,
		Detail:        log.Detail,
		Error:         log.Error,
	}
	return s.db.WithContext(ctx).Create(&model).Error
}

// FetchRunLogs returns up to limit run logs, newest first.
func (s *Store) FetchRunLogs(ctx context.Context, limit int) ([]RunLog, error) {
	if limit <= 0 {
		limit = 20
	}
	var models []runLogModel
	if err := s.db.WithContext(ctx).
		Order("timestamp DESC, id DESC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, err
	}
	logs := make([]RunLog, 0, len(models))
	for _, m := range models {
		logs = append(logs, RunLog(m))
	}
	return logs, nil
}
