package store

import "testing"

func TestListMembersOrderedByID(t *testing.T) {
	db := testDB(t)
	// Insert out of lexicographic order; the round-robin depends on the
	// store sorting, not insertion order.
	seedUser(t, db, "user-z", "Zoe", "fam-1")
	seedUser(t, db, "user-0", "Omar", "fam-1")

	fs := NewFamilyStore(db)
	members, err := fs.ListMembers("fam-1")
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 4 {
		t.Fatalf("members = %d, want 4", len(members))
	}
	want := []string{"user-0", "user-a", "user-b", "user-z"}
	for i, m := range members {
		if m.ID != want[i] {
			t.Errorf("members[%d] = %s, want %s", i, m.ID, want[i])
		}
	}
}

func TestGetUser(t *testing.T) {
	fs := NewFamilyStore(testDB(t))

	u, err := fs.GetUser("user-a")
	if err != nil || u == nil {
		t.Fatalf("get user: %v", err)
	}
	if u.Name != "Ada" || u.FamilyID != "fam-1" {
		t.Errorf("user = %+v", u)
	}

	ghost, err := fs.GetUser("nobody")
	if err != nil {
		t.Fatalf("get unknown user: %v", err)
	}
	if ghost != nil {
		t.Errorf("expected nil for unknown user, got %+v", ghost)
	}
}

func TestListFamilyIDs(t *testing.T) {
	db := testDB(t)
	if _, err := db.Exec(`INSERT INTO families (id, name, invite_code) VALUES ('fam-2', 'Second', 'INVITE2')`); err != nil {
		t.Fatalf("create family: %v", err)
	}

	fs := NewFamilyStore(db)
	ids, err := fs.ListFamilyIDs()
	if err != nil {
		t.Fatalf("list family ids: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("ids = %v, want 2 families", ids)
	}
}
