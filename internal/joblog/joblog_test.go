package joblog

import (
	"os"
	"testing"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "raido-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM jobs`).Scan(&count); err != nil {
		t.Fatalf("jobs table missing: %v", err)
	}
}

func TestRecordAndRecent(t *testing.T) {
	db := testDB(t)
	jobs := []Job{
		{Operation: "migrate", Source: "a.docx", Target: "b.docx", Styles: 3, Status: "ok"},
		{Operation: "clean", Target: "b.docx", Removed: 1, Status: "ok"},
		{Operation: "migrate", Source: "a.docx", Target: "c.doc", Status: "error", Detail: "style \"Ghost\" not found"},
	}
	for _, j := range jobs {
		if err := db.Record(j); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := db.Recent(2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("jobs = %d, want 2", len(got))
	}
	if got[0].Operation != "migrate" || got[0].Status != "error" {
		t.Errorf("newest job = %+v, want the failed migrate", got[0])
	}
	if got[1].Operation != "clean" || got[1].Removed != 1 {
		t.Errorf("second job = %+v, want the clean", got[1])
	}
	if got[0].CreatedAt.IsZero() {
		t.Error("created_at not populated")
	}
}

func TestRecentDefaultLimit(t *testing.T) {
	db := testDB(t)
	if err := db.Record(Job{Operation: "list", Status: "ok"}); err != nil {
		t.Fatal(err)
	}
	got, err := db.Recent(0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("jobs = %d, want 1", len(got))
	}
}
