package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"go-soilhealth/generator"
	"go-soilhealth/models"
	"go-soilhealth/services"
	"go-soilhealth/store/storetest"
)

func newSQLiteService(t *testing.T) *services.SoilService {
	t.Helper()
	st, _ := storetest.NewSQLite(t)
	gen := generator.New(generator.WithSeed(1), generator.WithClock(func() time.Time {
		return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	}))
	return services.NewSoilService(st, gen, services.DefaultLimits(), zap.NewNop())
}

func TestInsertOneThenFetchAll(t *testing.T) {
	ctx := context.Background()
	svc := newSQLiteService(t)

	res := svc.InsertOne(ctx, models.SoilInput{
		FarmLocation:    "Springfield",
		TestDate:        models.NewDate(2024, 1, 1),
		NitrogenLevel:   1.0,
		PhosphorusLevel: 2.0,
		PotassiumLevel:  3.0,
		PHLevel:         6.5,
		MoistureContent: 20.0,
	})
	if res.Notification.Severity != models.SeveritySuccess ||
		res.Notification.Text != "Soil record inserted successfully!" {
		t.Fatalf("unexpected notification %+v", res.Notification)
	}

	fetched := svc.FetchRecords(ctx, 0)
	if fetched.Notification != nil {
		t.Fatalf("fetch failed: %+v", fetched.Notification)
	}
	if len(fetched.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(fetched.Records))
	}
	rec := fetched.Records[0]
	if rec.RecordNo != 1 || rec.FarmLocation != "Springfield" || rec.TestDate.String() != "2024-01-01" {
		t.Fatalf("unexpected record %+v", rec)
	}
	got := []float64{*rec.NitrogenLevel, *rec.PhosphorusLevel, *rec.PotassiumLevel, *rec.PHLevel, *rec.MoistureContent}
	want := []float64{1.0, 2.0, 3.0, 6.5, 20.0}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("measurement %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestInsertOneNewRowHasMaxRecordNo(t *testing.T) {
	ctx := context.Background()
	svc := newSQLiteService(t)

	svc.InsertBulk(ctx, 12, 5)
	before, err := svc.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}

	res := svc.InsertOne(ctx, models.SoilInput{FarmLocation: "Shelbyville"})
	after, err := svc.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if after != before+1 {
		t.Fatalf("count went from %d to %d", before, after)
	}

	latest := svc.FetchRecords(ctx, 1)
	if len(latest.Records) != 1 || latest.Records[0].RecordNo != res.RecordNo {
		t.Fatalf("newest row %+v, inserted record_no %d", latest.Records, res.RecordNo)
	}
}

func TestInsertOneBlankLocationLeavesTableUnchanged(t *testing.T) {
	ctx := context.Background()
	svc := newSQLiteService(t)

	res := svc.InsertOne(ctx, models.SoilInput{FarmLocation: ""})
	if res.Notification.Severity != models.SeverityWarning {
		t.Fatalf("severity = %s", res.Notification.Severity)
	}
	n, err := svc.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 0 {
		t.Fatalf("table changed: %d rows", n)
	}
}

func TestInsertBulkTwentyFiveInBatchesOfTen(t *testing.T) {
	ctx := context.Background()
	svc := newSQLiteService(t)

	res := svc.InsertBulk(ctx, 25, 10)
	if res.Notification.Severity != models.SeveritySuccess || !strings.Contains(res.Notification.Text, "25") {
		t.Fatalf("unexpected notification %+v", res.Notification)
	}
	if res.BatchesPlanned != 3 || res.BatchesCommitted != 3 {
		t.Fatalf("unexpected batch counts %+v", res)
	}

	fetched := svc.FetchRecords(ctx, 0)
	if len(fetched.Records) != 25 {
		t.Fatalf("expected 25 rows, got %d", len(fetched.Records))
	}
	for i, rec := range fetched.Records {
		if want := int64(25 - i); rec.RecordNo != want {
			t.Fatalf("row %d record_no = %d, want %d", i, rec.RecordNo, want)
		}
	}
}

func TestFetchRecordsLimitTen(t *testing.T) {
	ctx := context.Background()
	svc := newSQLiteService(t)
	svc.InsertBulk(ctx, 40, 40)

	fetched := svc.FetchRecords(ctx, 10)
	if len(fetched.Records) != 10 {
		t.Fatalf("expected 10 rows, got %d", len(fetched.Records))
	}
	for i := 1; i < len(fetched.Records); i++ {
		if fetched.Records[i].RecordNo >= fetched.Records[i-1].RecordNo {
			t.Fatalf("not strictly descending at %d", i)
		}
	}
	if fetched.Records[0].RecordNo != 40 {
		t.Fatalf("first record_no = %d, want 40", fetched.Records[0].RecordNo)
	}
}
