package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roomlayout/inventorymap/internal/domain"
)

func newTestStore(t *testing.T) (*RowStore, context.Context) {
	t.Helper()
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "inventorymap_test.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return NewRowStore(db), ctx
}

func TestAppendAssignsContiguousPositions(t *testing.T) {
	store, ctx := newTestStore(t)

	for i := 1; i <= 3; i++ {
		pos, err := store.Append(ctx, "Items", domain.Row{"AssetID": "a"})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
		if pos != i {
			t.Fatalf("expected position %d, got %d", i, pos)
		}
	}

	// positions are independent per sheet
	pos, err := store.Append(ctx, "Sites", domain.Row{"SiteID": "s"})
	if err != nil {
		t.Fatalf("append to second sheet: %v", err)
	}
	if pos != 1 {
		t.Fatalf("expected position 1 on fresh sheet, got %d", pos)
	}
}

func TestReadReturnsRowsInOrder(t *testing.T) {
	store, ctx := newTestStore(t)

	for _, name := range []string{"first", "second", "third"} {
		if _, err := store.Append(ctx, "Items", domain.Row{"AssetName": name}); err != nil {
			t.Fatalf("append %s: %v", name, err)
		}
	}

	rows, err := store.Read(ctx, "Items")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	for i, name := range []string{"first", "second", "third"} {
		if rows[i]["AssetName"] != name {
			t.Fatalf("row %d: expected %s, got %s", i, name, rows[i]["AssetName"])
		}
	}
}

func TestReadEmptySheet(t *testing.T) {
	store, ctx := newTestStore(t)

	rows, err := store.Read(ctx, "Missing")
	if err != nil {
		t.Fatalf("read empty sheet: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
}

func TestUpdateReplacesRow(t *testing.T) {
	store, ctx := newTestStore(t)

	if _, err := store.Append(ctx, "Items", domain.Row{"AssetName": "before"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.Update(ctx, "Items", 1, domain.Row{"AssetName": "after"}); err != nil {
		t.Fatalf("update: %v", err)
	}

	rows, err := store.Read(ctx, "Items")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if rows[0]["AssetName"] != "after" {
		t.Fatalf("expected updated row, got %v", rows[0])
	}
}

func TestUpdateMissingPositionFails(t *testing.T) {
	store, ctx := newTestStore(t)

	if err := store.Update(ctx, "Items", 7, domain.Row{"AssetName": "x"}); err == nil {
		t.Fatalf("expected error for missing position")
	}
}

func TestBatchUpdateIsAtomic(t *testing.T) {
	store, ctx := newTestStore(t)

	for _, name := range []string{"a", "b"} {
		if _, err := store.Append(ctx, "Items", domain.Row{"AssetName": name}); err != nil {
			t.Fatalf("append %s: %v", name, err)
		}
	}

	err := store.BatchUpdate(ctx, "Items", []domain.RowUpdate{
		{Position: 1, Row: domain.Row{"AssetName": "a2"}},
		{Position: 9, Row: domain.Row{"AssetName": "nope"}},
	})
	if err == nil {
		t.Fatalf("expected batch update to fail on missing position")
	}

	rows, err := store.Read(ctx, "Items")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if rows[0]["AssetName"] != "a" {
		t.Fatalf("failed batch must not apply partial updates, got %v", rows[0])
	}
}

func TestDeleteRowsShiftsLaterPositionsUp(t *testing.T) {
	store, ctx := newTestStore(t)

	for _, name := range []string{"a", "b", "c", "d"} {
		if _, err := store.Append(ctx, "Items", domain.Row{"AssetName": name}); err != nil {
			t.Fatalf("append %s: %v", name, err)
		}
	}

	if err := store.DeleteRows(ctx, "Items", 2, 3); err != nil {
		t.Fatalf("delete rows: %v", err)
	}

	rows, err := store.Read(ctx, "Items")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows after delete, got %d", len(rows))
	}
	if rows[0]["AssetName"] != "a" || rows[1]["AssetName"] != "d" {
		t.Fatalf("unexpected rows after delete: %v", rows)
	}

	// the sheet stays contiguous, so the next append lands at position 3
	pos, err := store.Append(ctx, "Items", domain.Row{"AssetName": "e"})
	if err != nil {
		t.Fatalf("append after delete: %v", err)
	}
	if pos != 3 {
		t.Fatalf("expected position 3, got %d", pos)
	}
}

func TestDeleteRowsInvalidRange(t *testing.T) {
	store, ctx := newTestStore(t)

	if err := store.DeleteRows(ctx, "Items", 0, 1); err == nil {
		t.Fatalf("expected error for start below 1")
	}
	if err := store.DeleteRows(ctx, "Items", 3, 2); err == nil {
		t.Fatalf("expected error for inverted range")
	}
	if err := store.DeleteRows(ctx, "Items", 1, 1); err == nil {
		t.Fatalf("expected error for empty sheet")
	}
}
