package store

import (
	"database/sql"
	"testing"

	"github.com/dukerupert/familypulse/internal/database"
)

// testDB opens an in-memory database with migrations applied and seeds one
// family with two members.
func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec(`INSERT INTO families (id, name, invite_code) VALUES ('fam-1', 'Test Family', 'INVITE1')`); err != nil {
		t.Fatalf("create family: %v", err)
	}
	seedUser(t, db, "user-a", "Ada", "fam-1")
	seedUser(t, db, "user-b", "Ben", "fam-1")
	return db
}

func seedUser(t *testing.T, db *sql.DB, id, name, familyID string) {
	t.Helper()
	if _, err := db.Exec(
		`INSERT INTO users (id, name, email, family_id) VALUES (?, ?, ?, ?)`,
		id, name, id+"@example.com", familyID,
	); err != nil {
		t.Fatalf("create user %s: %v", id, err)
	}
}
