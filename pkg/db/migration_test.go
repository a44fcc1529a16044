package db

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func tableColumns(t *testing.T, dbConn *sql.DB, table string) map[string]bool {
	t.Helper()
	rows, err := dbConn.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		t.Fatalf("pragmas: %v", err)
	}
	defer rows.Close()
	cols := map[string]bool{}
	for rows.Next() {
		var cid int
		var colName, ctype string
		var notnull, pk int
		var dfltVal interface{}
		if err := rows.Scan(&cid, &colName, &ctype, &notnull, &dfltVal, &pk); err != nil {
			t.Fatalf("scan col: %v", err)
		}
		cols[colName] = true
	}
	return cols
}

// TestInitDBCreatesSchema verifies a fresh database gets the cards and
// sources tables, and that applying the schema twice is harmless.
func TestInitDBCreatesSchema(t *testing.T) {
	dbConn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer dbConn.Close()
	dbConn.SetMaxOpenConns(1)

	for i := 0; i < 2; i++ {
		if err := InitDB(dbConn); err != nil {
			t.Fatalf("InitDB run %d failed: %v", i, err)
		}
	}

	cards := tableColumns(t, dbConn, "cards")
	for _, c := range []string{"id", "simplified", "traditional", "pinyin", "zhuyin", "definition", "extra_definition", "tags", "dictionary_digest", "created_at"} {
		if !cards[c] {
			t.Fatalf("expected column %s in cards, got %v", c, cards)
		}
	}
	sources := tableColumns(t, dbConn, "sources")
	if !sources["url"] || !sources["last_processed_word"] {
		t.Fatalf("expected url and last_processed_word in sources, got %v", sources)
	}
}
