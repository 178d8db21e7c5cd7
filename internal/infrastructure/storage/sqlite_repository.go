package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"CitationWatch/internal/domain"
	"CitationWatch/internal/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS citation_alerts (
	id TEXT PRIMARY KEY,
	work_id TEXT NOT NULL,
	doc_id TEXT NOT NULL,
	title TEXT NOT NULL,
	journal TEXT NOT NULL DEFAULT '',
	published_date TEXT NOT NULL DEFAULT '',
	citation_increase INTEGER NOT NULL,
	detected_month TEXT NOT NULL,
	summary TEXT NOT NULL DEFAULT '',
	notified INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL,
	UNIQUE(work_id, detected_month)
);

CREATE INDEX IF NOT EXISTS idx_citation_alerts_pending
	ON citation_alerts(detected_month, notified);
`

// SQLiteRepository persists citation-spike alerts in a local SQLite file.
// Alerts are append-only: rows are never deleted and the notified flag only
// ever moves from 0 to 1.
type SQLiteRepository struct {
	db *sql.DB
}

var _ ports.AlertRepository = (*SQLiteRepository)(nil)

// Open creates or opens the alert database at path and migrates the schema.
// Pass ":memory:" for an ephemeral store.
func Open(path string) (*SQLiteRepository, error) {
	connStr := path
	if path == ":memory:" {
		// Shared cache plus a single connection, otherwise each pooled
		// connection would see its own empty in-memory database.
		connStr = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	} else {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enable WAL: %w", err)
		}
	}

	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// Close releases the underlying database handle.
func (r *SQLiteRepository) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Insert stores a qualified spike unless the work already has an alert for
// the detected month. Existing rows are never modified by an insert.
func (r *SQLiteRepository) Insert(ctx context.Context, candidate domain.AlertCandidate) (domain.InsertOutcome, error) {
	query, args, err := sq.Insert("citation_alerts").
		Columns("id", "work_id", "doc_id", "title", "journal", "published_date",
			"citation_increase", "detected_month", "created_at").
		Values(uuid.NewString(), candidate.WorkID, candidate.DocID, candidate.Title,
			candidate.Journal, candidate.PublishedDate, candidate.Increase,
			candidate.DetectedMonth, time.Now().UTC()).
		Suffix("ON CONFLICT(work_id, detected_month) DO NOTHING").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert alert: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.AlertDeduplicated, nil
	}
	return domain.AlertInserted, nil
}

// ListPending returns unnotified alerts for the month in insertion order.
func (r *SQLiteRepository) ListPending(ctx context.Context, detectedMonth string) ([]domain.AlertRecord, error) {
	query, args, err := sq.Select("id", "work_id", "doc_id", "title", "journal",
		"published_date", "citation_increase", "detected_month", "summary",
		"notified", "created_at").
		From("citation_alerts").
		Where(sq.Eq{"detected_month": detectedMonth, "notified": 0}).
		OrderBy("rowid ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query pending: %w", err)
	}

	return scanAlerts(rows)
}

// AttachSummary stores the digest summary for an alert.
func (r *SQLiteRepository) AttachSummary(ctx context.Context, id, summary string) error {
	query, args, err := sq.Update("citation_alerts").
		Set("summary", summary).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("attach summary: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("alert %s not found", id)
	}

	return nil
}

// MarkNotified flips the delivery flag for all ids in one transaction:
// either every requested alert is marked or none are. Re-marking an
// already-notified alert is a no-op success.
func (r *SQLiteRepository) MarkNotified(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	query, args, err := sq.Update("citation_alerts").
		Set("notified", 1).
		Where(sq.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("mark notified: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected != int64(len(ids)) {
		_ = tx.Rollback()
		return fmt.Errorf("mark notified: %d of %d alerts updated", affected, len(ids))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

func scanAlerts(rows *sql.Rows) ([]domain.AlertRecord, error) {
	var records []domain.AlertRecord
	for rows.Next() {
		var rec domain.AlertRecord
		var notified int
		if err := rows.Scan(&rec.ID, &rec.WorkID, &rec.DocID, &rec.Title,
			&rec.Journal, &rec.PublishedDate, &rec.Increase, &rec.DetectedMonth,
			&rec.Summary, &notified, &rec.CreatedAt); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		rec.Notified = notified != 0
		records = append(records, rec)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return records, nil
}
