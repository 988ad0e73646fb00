// Package audit keeps the journal of external register write batches.
//
// Every batch accepted through /mwrite or the MQTT command topic is stored
// in the register_writes table with its per-entry outcomes, so operators
// can see which client changed which register and what the unit committed.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/ventsim-core/internal/unit"
)

// List paging bounds.
const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// timeLayout is fixed-width so created_at sorts lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000Z"

// WriteBatch is one journalled write batch.
type WriteBatch struct {
	ID        string              `json:"id"`
	Source    string              `json:"source"`
	RequestID string              `json:"request_id,omitempty"`
	Entries   []unit.EntryResult  `json:"entries"`
	Skipped   []unit.SkippedEntry `json:"skipped,omitempty"`
	Applied   int                 `json:"applied"`
	Rejected  int                 `json:"rejected"`
	CreatedAt time.Time           `json:"created_at"`
}

// FromReport converts a unit write report into a journal row.
func FromReport(report unit.WriteReport) *WriteBatch {
	return &WriteBatch{
		Source:    string(report.Source),
		RequestID: report.RequestID,
		Entries:   report.Entries,
		Skipped:   report.Skipped,
		Applied:   report.Applied(),
		Rejected:  report.Rejected(),
		CreatedAt: report.Timestamp,
	}
}

// Filter controls which batches List returns.
type Filter struct {
	Source    string    // optional: http or mqtt
	RequestID string    // optional: exact request ID
	Since     time.Time // optional: only batches at or after this time
	Limit     int       // default 50, max 200
	Offset    int
}

// ListResult is one page of batches, newest first.
type ListResult struct {
	Batches []WriteBatch `json:"batches"`
	Total   int          `json:"total"`
	Limit   int          `json:"limit"`
	Offset  int          `json:"offset"`
}

// Repository stores and queries write batches.
type Repository interface {
	Create(ctx context.Context, batch *WriteBatch) error
	List(ctx context.Context, filter Filter) (*ListResult, error)
	Purge(ctx context.Context) (int, error)
}

// SQLiteRepository stores batches in the register_writes table.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a repository over db. The register_writes
// migration must already be applied.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts batch. The ID ("wr-" plus a short UUID) and CreatedAt are
// filled in when empty.
func (r *SQLiteRepository) Create(ctx context.Context, batch *WriteBatch) error {
	if batch.ID == "" {
		batch.ID = "wr-" + uuid.NewString()[:8]
	}
	if batch.CreatedAt.IsZero() {
		batch.CreatedAt = time.Now().UTC()
	}
	if batch.Entries == nil {
		batch.Entries = []unit.EntryResult{}
	}

	entriesJSON, err := json.Marshal(batch.Entries)
	if err != nil {
		return fmt.Errorf("marshalling batch entries: %w", err)
	}
	skipped := batch.Skipped
	if skipped == nil {
		skipped = []unit.SkippedEntry{}
	}
	skippedJSON, err := json.Marshal(skipped)
	if err != nil {
		return fmt.Errorf("marshalling skipped entries: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO register_writes
		   (id, source, request_id, entries, skipped, applied, rejected, skipped_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		batch.ID, batch.Source, batch.RequestID,
		string(entriesJSON), string(skippedJSON),
		batch.Applied, batch.Rejected, len(batch.Skipped),
		batch.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting register write batch: %w", err)
	}
	return nil
}

// Purge deletes every journalled batch in one transaction.
//
// Returns:
//   - int: Number of batches deleted
//   - error: If the delete or commit fails
func (r *SQLiteRepository) Purge(ctx context.Context) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning purge: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	res, err := tx.ExecContext(ctx, `DELETE FROM register_writes`)
	if err != nil {
		return 0, fmt.Errorf("deleting register write batches: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted batches: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing purge: %w", err)
	}
	return int(n), nil
}

// Record journals a unit write report. It implements unit.Journal.
func (r *SQLiteRepository) Record(ctx context.Context, report unit.WriteReport) error {
	return r.Create(ctx, FromReport(report))
}

// List returns batches matching filter, newest first.
func (r *SQLiteRepository) List(ctx context.Context, filter Filter) (*ListResult, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultLimit
	}
	if filter.Limit > MaxLimit {
		filter.Limit = MaxLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	var conditions []string
	var args []any

	if filter.Source != "" {
		conditions = append(conditions, "source = ?")
		args = append(args, filter.Source)
	}
	if filter.RequestID != "" {
		conditions = append(conditions, "request_id = ?")
		args = append(args, filter.RequestID)
	}
	if !filter.Since.IsZero() {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, filter.Since.UTC().Format(timeLayout))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT COUNT(*) FROM register_writes " + where //nolint:gosec // WHERE built from parameterised conditions
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting register write batches: %w", err)
	}

	query := "SELECT id, source, request_id, entries, skipped, applied, rejected, created_at FROM register_writes " + //nolint:gosec // WHERE built from parameterised conditions
		where + " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying register write batches: %w", err)
	}
	defer rows.Close()

	batches := []WriteBatch{}
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating register write batches: %w", err)
	}

	return &ListResult{
		Batches: batches,
		Total:   total,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	}, nil
}

func scanBatch(rows *sql.Rows) (WriteBatch, error) {
	var b WriteBatch
	var entriesJSON, skippedJSON, createdAt string

	if err := rows.Scan(&b.ID, &b.Source, &b.RequestID, &entriesJSON, &skippedJSON,
		&b.Applied, &b.Rejected, &createdAt); err != nil {
		return b, fmt.Errorf("scanning register write batch: %w", err)
	}
	if err := json.Unmarshal([]byte(entriesJSON), &b.Entries); err != nil {
		return b, fmt.Errorf("decoding entries of batch %s: %w", b.ID, err)
	}
	if err := json.Unmarshal([]byte(skippedJSON), &b.Skipped); err != nil {
		return b, fmt.Errorf("decoding skipped entries of batch %s: %w", b.ID, err)
	}
	if len(b.Skipped) == 0 {
		b.Skipped = nil
	}

	t, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return b, fmt.Errorf("parsing batch timestamp %q: %w", createdAt, err)
	}
	b.CreatedAt = t
	return b, nil
}
