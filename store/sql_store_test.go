package store_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"go-soilhealth/models"
	"go-soilhealth/store"
	"go-soilhealth/store/storetest"
)

func sample(location string, day int) models.SoilRecord {
	return models.SoilRecord{
		FarmLocation:    location,
		TestDate:        models.NewDate(2024, 1, day),
		NitrogenLevel:   models.Float(1.0),
		PhosphorusLevel: models.Float(2.0),
		PotassiumLevel:  models.Float(3.0),
		PHLevel:         models.Float(6.5),
		MoistureContent: models.Float(20.0),
	}
}

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	st, _ := storetest.NewSQLite(t)
	ctx := context.Background()

	if _, err := st.Insert(ctx, sample("Springfield", 1)); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := st.EnsureSchema(ctx); err != nil {
			t.Fatalf("EnsureSchema #%d: %v", i, err)
		}
	}
	n, err := st.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected existing row to survive, count = %d", n)
	}
}

func TestInsertAssignsIncreasingRecordNo(t *testing.T) {
	st, _ := storetest.NewSQLite(t)
	ctx := context.Background()

	var last int64
	for i := 1; i <= 5; i++ {
		id, err := st.Insert(ctx, sample("Farm", i))
		if err != nil {
			t.Fatalf("Insert: %v", err)
		}
		if id <= last {
			t.Fatalf("record_no %d not greater than previous %d", id, last)
		}
		last = id
	}
}

func TestInsertAndListRoundTrip(t *testing.T) {
	st, _ := storetest.NewSQLite(t)
	ctx := context.Background()

	want := sample("Springfield", 1)
	id, err := st.Insert(ctx, want)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, err := st.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 row, got %d", len(got))
	}
	rec := got[0]
	if rec.RecordNo != id || rec.FarmLocation != "Springfield" || rec.TestDate.String() != "2024-01-01" {
		t.Fatalf("unexpected row: %+v", rec)
	}
	checks := []struct {
		name string
		got  *float64
		want float64
	}{
		{"nitrogen", rec.NitrogenLevel, 1.0},
		{"phosphorus", rec.PhosphorusLevel, 2.0},
		{"potassium", rec.PotassiumLevel, 3.0},
		{"pH", rec.PHLevel, 6.5},
		{"moisture", rec.MoistureContent, 20.0},
	}
	for _, c := range checks {
		if c.got == nil || *c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestListScansNullMeasurements(t *testing.T) {
	st, db := storetest.NewSQLite(t)
	ctx := context.Background()

	if _, err := db.ExecContext(ctx,
		`INSERT INTO soil_health (farm_location, test_date) VALUES (?, ?)`, "Bare", "2024-02-02"); err != nil {
		t.Fatalf("raw insert: %v", err)
	}
	got, err := st.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 row, got %d", len(got))
	}
	if got[0].NitrogenLevel != nil || got[0].MoistureContent != nil {
		t.Fatalf("expected NULL measurements to scan as nil, got %+v", got[0])
	}
}

func TestListOrdersNewestFirstAndHonoursLimit(t *testing.T) {
	st, _ := storetest.NewSQLite(t)
	ctx := context.Background()

	for i := 1; i <= 20; i++ {
		if _, err := st.Insert(ctx, sample("Farm", 1+i%28)); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	tests := []struct {
		limit int
		want  int
	}{
		{0, 20},
		{10, 10},
		{50, 20},
		{1, 1},
	}
	for _, tt := range tests {
		got, err := st.List(ctx, tt.limit)
		if err != nil {
			t.Fatalf("List(%d): %v", tt.limit, err)
		}
		if len(got) != tt.want {
			t.Fatalf("List(%d) returned %d rows, want %d", tt.limit, len(got), tt.want)
		}
		if got[0].RecordNo != 20 {
			t.Fatalf("List(%d) first record_no = %d, want 20", tt.limit, got[0].RecordNo)
		}
		for i := 1; i < len(got); i++ {
			if got[i].RecordNo >= got[i-1].RecordNo {
				t.Fatalf("List(%d) not strictly descending at %d: %d then %d",
					tt.limit, i, got[i-1].RecordNo, got[i].RecordNo)
			}
		}
	}
}

func TestListRejectsNegativeLimit(t *testing.T) {
	st, _ := storetest.NewSQLite(t)
	if _, err := st.List(context.Background(), -1); err == nil {
		t.Fatalf("expected error for negative limit")
	}
}

func TestInsertBatchSpansSeveralStatements(t *testing.T) {
	st, _ := storetest.NewSQLite(t)
	ctx := context.Background()

	n := st.Dialect().MaxRowsPerStatement*2 + 17
	recs := make([]models.SoilRecord, n)
	for i := range recs {
		recs[i] = sample("Batch", 1+i%28)
	}
	if err := st.InsertBatch(ctx, recs); err != nil {
		t.Fatalf("InsertBatch: %v", err)
	}
	count, err := st.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != int64(n) {
		t.Fatalf("count = %d, want %d", count, n)
	}
}

func TestInsertBatchRollsBackOnFailure(t *testing.T) {
	st, _ := storetest.NewSQLite(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := st.InsertBatch(ctx, []models.SoilRecord{sample("A", 1), sample("B", 2)})
	if err == nil {
		t.Fatalf("expected error on cancelled context")
	}
	count, err := st.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no rows after failed batch, got %d", count)
	}
}

func TestInsertBatchEmptyIsNoop(t *testing.T) {
	st, _ := storetest.NewSQLite(t)
	if err := st.InsertBatch(context.Background(), nil); err != nil {
		t.Fatalf("InsertBatch(nil): %v", err)
	}
}

func TestDialectFor(t *testing.T) {
	for _, name := range []string{"mysql", "sqlite"} {
		d, err := store.DialectFor(name)
		if err != nil {
			t.Fatalf("DialectFor(%q): %v", name, err)
		}
		if !strings.Contains(d.CreateTable, "CREATE TABLE IF NOT EXISTS soil_health") {
			t.Errorf("%s DDL is not create-if-absent: %s", name, d.CreateTable)
		}
		if d.MaxRowsPerStatement <= 0 {
			t.Errorf("%s MaxRowsPerStatement = %d", name, d.MaxRowsPerStatement)
		}
	}

	if _, err := store.DialectFor("oracle"); !errors.Is(err, store.ErrUnsupportedDriver) {
		t.Fatalf("expected ErrUnsupportedDriver, got %v", err)
	}
	if _, err := store.NewSQLStore(nil, "oracle", zap.NewNop()); !errors.Is(err, store.ErrUnsupportedDriver) {
		t.Fatalf("NewSQLStore: expected ErrUnsupportedDriver, got %v", err)
	}
}
