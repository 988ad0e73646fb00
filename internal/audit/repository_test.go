package audit

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/ventsim-core/internal/infrastructure/database"
	"github.com/nerrad567/ventsim-core/internal/register"
	"github.com/nerrad567/ventsim-core/internal/unit"
	"github.com/nerrad567/ventsim-core/migrations"
)

func openTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()

	db, err := database.Open(database.Config{Path: database.MemoryPath})
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	if err := db.Migrate(context.Background(), migrations.FS); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return NewSQLiteRepository(db.DB)
}

func sampleReport(source unit.Source, requestID string, at time.Time) unit.WriteReport {
	return unit.WriteReport{
		Source:    source,
		RequestID: requestID,
		Timestamp: at,
		Entries: []unit.EntryResult{
			{Address: 1161, Requested: 3, Committed: 3, Outcome: register.OutcomeCommitted.String(), RuleApplied: true},
			{Address: 1160, Requested: 4, Committed: 0, Outcome: register.OutcomeRejectedReadOnly.String()},
		},
		Skipped: []unit.SkippedEntry{{Key: "abc", Reason: "address is not a non-negative integer"}},
	}
}

func TestRepository_RecordAndList(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	at := time.Date(2026, 10, 19, 12, 0, 0, 123456000, time.UTC)

	if err := repo.Record(ctx, sampleReport(unit.SourceHTTP, "req-1", at)); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	result, err := repo.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if result.Total != 1 || len(result.Batches) != 1 {
		t.Fatalf("List() = %+v, want one batch", result)
	}

	b := result.Batches[0]
	if !strings.HasPrefix(b.ID, "wr-") || len(b.ID) != len("wr-")+8 {
		t.Errorf("ID = %q, want wr- plus 8 characters", b.ID)
	}
	if b.Source != "http" || b.RequestID != "req-1" {
		t.Errorf("source/request = %q/%q", b.Source, b.RequestID)
	}
	if b.Applied != 1 || b.Rejected != 1 {
		t.Errorf("applied/rejected = %d/%d, want 1/1", b.Applied, b.Rejected)
	}
	if len(b.Entries) != 2 || !b.Entries[0].RuleApplied || b.Entries[1].Outcome != "rejected_read_only" {
		t.Errorf("entries = %+v", b.Entries)
	}
	if len(b.Skipped) != 1 || b.Skipped[0].Key != "abc" {
		t.Errorf("skipped = %+v", b.Skipped)
	}
	if !b.CreatedAt.Equal(at) {
		t.Errorf("CreatedAt = %v, want %v", b.CreatedAt, at)
	}
}

func TestRepository_ListFilters(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	for i, src := range []unit.Source{unit.SourceHTTP, unit.SourceMQTT, unit.SourceHTTP, unit.SourceMQTT} {
		report := sampleReport(src, "req-"+string(rune('a'+i)), base.Add(time.Duration(i)*time.Second))
		if err := repo.Record(ctx, report); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	tests := []struct {
		name      string
		filter    Filter
		wantTotal int
		wantFirst string
	}{
		{"all newest first", Filter{}, 4, "req-d"},
		{"by source", Filter{Source: "http"}, 2, "req-c"},
		{"by request", Filter{RequestID: "req-b"}, 1, "req-b"},
		{"since", Filter{Since: base.Add(2 * time.Second)}, 2, "req-d"},
		{"offset", Filter{Offset: 1, Limit: 1}, 4, "req-c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := repo.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if result.Total != tt.wantTotal {
				t.Errorf("Total = %d, want %d", result.Total, tt.wantTotal)
			}
			if len(result.Batches) == 0 || result.Batches[0].RequestID != tt.wantFirst {
				t.Errorf("first batch = %+v, want %s", result.Batches, tt.wantFirst)
			}
		})
	}
}

func TestRepository_ListLimitClamp(t *testing.T) {
	repo := openTestRepo(t)

	tests := []struct {
		limit int
		want  int
	}{
		{0, DefaultLimit},
		{-1, DefaultLimit},
		{10, 10},
		{1000, MaxLimit},
	}

	for _, tt := range tests {
		result, err := repo.List(context.Background(), Filter{Limit: tt.limit, Offset: -5})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if result.Limit != tt.want || result.Offset != 0 {
			t.Errorf("limit %d: got limit %d offset %d, want %d and 0", tt.limit, result.Limit, result.Offset, tt.want)
		}
		if result.Batches == nil {
			t.Error("Batches is nil, want empty slice")
		}
	}
}

func TestRepository_RejectsUnknownSource(t *testing.T) {
	repo := openTestRepo(t)

	err := repo.Create(context.Background(), &WriteBatch{Source: "modbus"})
	if err == nil {
		t.Error("Create() with unknown source = nil, want constraint error")
	}
}

func TestRepository_Purge(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := repo.Record(ctx, sampleReport(unit.SourceHTTP, "", time.Now())); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	n, err := repo.Purge(ctx)
	if err != nil {
		t.Fatalf("Purge() error = %v", err)
	}
	if n != 3 {
		t.Errorf("Purge() = %d, want 3", n)
	}

	result, err := repo.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if result.Total != 0 {
		t.Errorf("Total after purge = %d, want 0", result.Total)
	}
}

// mockRepository records batches and can block or fail.
type mockRepository struct {
	mu      sync.Mutex
	batches []*WriteBatch
	err     error
	gate    chan struct{}
}

func (m *mockRepository) Create(_ context.Context, b *WriteBatch) error {
	if m.gate != nil {
		<-m.gate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches = append(m.batches, b)
	return m.err
}

func (m *mockRepository) List(context.Context, Filter) (*ListResult, error) {
	return &ListResult{}, nil
}

func (m *mockRepository) Purge(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.batches)
	m.batches = nil
	return n, nil
}

func (m *mockRepository) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.batches)
}

func TestRecorder_WritesOnStop(t *testing.T) {
	repo := &mockRepository{}
	rec := NewRecorder(repo, 8, nil)

	for i := 0; i < 5; i++ {
		if err := rec.Record(context.Background(), sampleReport(unit.SourceMQTT, "", time.Now())); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}
	rec.Stop()
	rec.Stop()

	if got := repo.count(); got != 5 {
		t.Errorf("written = %d, want 5", got)
	}
	if err := rec.Record(context.Background(), unit.WriteReport{}); !errors.Is(err, ErrRecorderStopped) {
		t.Errorf("Record() after Stop error = %v, want ErrRecorderStopped", err)
	}
}

func TestRecorder_DropsWhenFull(t *testing.T) {
	repo := &mockRepository{gate: make(chan struct{})}
	rec := NewRecorder(repo, 1, nil)

	var full bool
	for i := 0; i < 10; i++ {
		if err := rec.Record(context.Background(), unit.WriteReport{Source: unit.SourceHTTP}); errors.Is(err, ErrQueueFull) {
			full = true
			break
		}
	}
	if !full {
		t.Error("Record() never reported ErrQueueFull with a blocked writer")
	}

	close(repo.gate)
	rec.Stop()
}
