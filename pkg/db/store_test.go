package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// Ensure single connection to avoid separate in-memory DBs per connection.
	db.SetMaxOpenConns(1)
	if err := InitDB(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestInsertCardAndExists(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	id, err := InsertCard(ctx, db, Card{Simplified: "国家", Traditional: "國家", Pinyin: "guó jiā", Definition: "country"})
	if err != nil {
		t.Fatalf("insert card: %v", err)
	}
	if len(id) != 36 {
		t.Fatalf("expected uuid id, got %q", id)
	}

	ok, err := CardExists(ctx, db, "国家", "國家", "guó jiā")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !ok {
		t.Fatalf("expected card to exist")
	}
	ok, err = CardExists(ctx, db, "国家", "", "guó jiā")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if ok {
		t.Fatalf("expected no match for a different traditional form")
	}
}

func TestInsertCardRejectsEmptyHeadword(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	if _, err := InsertCard(context.Background(), db, Card{Simplified: "  "}); err == nil {
		t.Fatalf("expected error for empty headword")
	}
}

func TestLogIsAppendOnly(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := InsertCard(ctx, db, Card{Simplified: "好", Pinyin: "hǎo"}); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}
	n, err := CountCards(ctx, db)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 rows, got %d", n)
	}
	seen, err := SavedHeadwords(ctx, db)
	if err != nil {
		t.Fatalf("headwords: %v", err)
	}
	if len(seen) != 1 || !seen["好"] {
		t.Fatalf("unexpected headwords %v", seen)
	}
}

func TestRecentCards(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, w := range []string{"一", "二", "三"} {
		if _, err := InsertCard(ctx, db, Card{Simplified: w, DictionaryDigest: "abc", CreatedAt: base.Add(time.Duration(i) * time.Minute)}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	cards, err := RecentCards(ctx, db, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(cards) != 2 || cards[0].Simplified != "三" || cards[1].Simplified != "二" {
		t.Fatalf("unexpected order: %+v", cards)
	}
	if cards[0].DictionaryDigest != "abc" {
		t.Fatalf("digest not stored: %+v", cards[0])
	}
	if !cards[0].CreatedAt.Equal(base.Add(2 * time.Minute)) {
		t.Fatalf("created_at round trip: got %v", cards[0].CreatedAt)
	}
}

func TestCreateOrGetSource(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()
	id1, err := CreateOrGetSource(ctx, db, "https://example.com/a", "A")
	if err != nil {
		t.Fatalf("create source: %v", err)
	}
	id2, err := CreateOrGetSource(ctx, db, "https://example.com/a", "")
	if err != nil {
		t.Fatalf("get source: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("expected same source id, got %d and %d", id1, id2)
	}
	if _, err := CreateOrGetSource(ctx, db, " ", ""); err == nil {
		t.Fatalf("expected error for empty url")
	}
}

func TestSourceProgress(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()
	id, err := CreateOrGetSource(ctx, db, "https://example.com/b", "")
	if err != nil {
		t.Fatalf("create source: %v", err)
	}
	if p, err := GetSourceProgress(ctx, db, id); err != nil || p != 0 {
		t.Fatalf("expected progress 0, got %d, %v", p, err)
	}
	if err := UpdateSourceProgress(ctx, db, id, 7); err != nil {
		t.Fatalf("update: %v", err)
	}
	if p, err := GetSourceProgress(ctx, db, id); err != nil || p != 7 {
		t.Fatalf("expected progress 7, got %d, %v", p, err)
	}
}

func TestCreateOrGetSourceConcurrency(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	const n = 8
	ids := make(chan int64, n)
	for i := 0; i < n; i++ {
		go func() {
			id, err := CreateOrGetSource(context.Background(), db, "https://example.com/c", "Title")
			if err != nil {
				t.Errorf("create or get source: %v", err)
				ids <- 0
				return
			}
			ids <- id
		}()
	}
	var first int64
	for i := 0; i < n; i++ {
		id := <-ids
		if id == 0 {
			t.Fatalf("error in goroutine")
		}
		if i == 0 {
			first = id
		}
		if id != first {
			t.Fatalf("expected same id, got %d and %d", first, id)
		}
	}
	var cnt int
	if err := db.QueryRow(`SELECT COUNT(*) FROM sources WHERE url = ?`, "https://example.com/c").Scan(&cnt); err != nil {
		t.Fatalf("count: %v", err)
	}
	if cnt != 1 {
		t.Fatalf("expected 1 source row, got %d", cnt)
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.db")
	conn, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := InsertCard(context.Background(), conn, Card{Simplified: "书"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	conn.Close()

	conn, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer conn.Close()
	n, err := CountCards(context.Background(), conn)
	if err != nil || n != 1 {
		t.Fatalf("expected 1 card after reopen, got %d, %v", n, err)
	}
}
