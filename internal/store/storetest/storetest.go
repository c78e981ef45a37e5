// Package storetest holds behaviour checks shared by every store
// implementation.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/tatianab/ripple-realms/internal/models"
	"github.com/tatianab/ripple-realms/internal/store"
)

// Run exercises s against the store contract. newStore must return an
// empty store.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("realms", func(t *testing.T) { testRealms(t, newStore(t)) })
	t.Run("stale update", func(t *testing.T) { testStale(t, newStore(t)) })
}

func testUsers(t *testing.T, s store.Store) {
	ctx := context.Background()

	if _, err := s.GetUserByEmail(ctx, "ada@example.com"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("missing user err = %v", err)
	}

	u := models.User{ID: "u1", Email: "ada@example.com", DisplayName: "Ada", AgeMode: models.AgeTeen}
	if _, err := s.InsertUser(ctx, u); err != nil {
		t.Fatalf("InsertUser: %v", err)
	}
	got, err := s.GetUserByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if got != u {
		t.Errorf("got %+v, want %+v", got, u)
	}
	if _, err := s.InsertUser(ctx, u); !errors.Is(err, store.ErrDuplicate) {
		t.Errorf("duplicate insert err = %v", err)
	}
}

// NewRealm returns a starter realm for userID.
func NewRealm(t *testing.T, userID string) models.Realm {
	t.Helper()
	r, err := models.NewRealm("realm-"+userID, userID, models.RealmNature, []string{"kind", "bold", "curious"})
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func testRealms(t *testing.T, s store.Store) {
	ctx := context.Background()

	if _, err := s.GetRealmByUser(ctx, "u1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("missing realm err = %v", err)
	}

	inserted, err := s.InsertRealm(ctx, NewRealm(t, "u1"))
	if err != nil {
		t.Fatalf("InsertRealm: %v", err)
	}
	if _, err := s.InsertRealm(ctx, NewRealm(t, "u1")); !errors.Is(err, store.ErrDuplicate) {
		t.Errorf("second realm err = %v", err)
	}

	r, err := s.GetRealmByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("GetRealmByUser: %v", err)
	}
	if r.Version != inserted.Version {
		t.Errorf("version = %d, want %d", r.Version, inserted.Version)
	}
	if len(r.Traits) != len(models.TraitVocabulary()) {
		t.Errorf("traits = %v", r.Traits)
	}

	r.Traits["wise"] = true
	r.State.Quests = append(r.State.Quests, "flickering_orb")
	r.State.NPC = append(r.State.NPC, models.Companion{Name: "Watcher Orb", Type: "mystic"})
	r.State.Resources["gold"] = 2
	updated, err := s.UpdateRealm(ctx, r)
	if err != nil {
		t.Fatalf("UpdateRealm: %v", err)
	}
	if updated.Version != r.Version+1 {
		t.Errorf("version after update = %d, want %d", updated.Version, r.Version+1)
	}

	again, err := s.GetRealmByUser(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if !again.Traits["wise"] || !again.Completed("flickering_orb") || len(again.Companions()) != 1 {
		t.Errorf("update not persisted: %+v %+v", again.Traits, again.State)
	}
	if again.State.Resources["gold"] != 2 {
		t.Errorf("resources = %v", again.State.Resources)
	}
	if again.Version != updated.Version {
		t.Errorf("stored version = %d, want %d", again.Version, updated.Version)
	}
}

func testStale(t *testing.T, s store.Store) {
	ctx := context.Background()
	if _, err := s.InsertRealm(ctx, NewRealm(t, "u2")); err != nil {
		t.Fatal(err)
	}
	a, _ := s.GetRealmByUser(ctx, "u2")
	b, _ := s.GetRealmByUser(ctx, "u2")

	a.Traits["wise"] = true
	if _, err := s.UpdateRealm(ctx, a); err != nil {
		t.Fatalf("first writer: %v", err)
	}
	b.Traits["agile"] = true
	if _, err := s.UpdateRealm(ctx, b); !errors.Is(err, store.ErrStaleRealm) {
		t.Fatalf("second writer err = %v, want ErrStaleRealm", err)
	}

	cur, _ := s.GetRealmByUser(ctx, "u2")
	if !cur.Traits["wise"] || cur.Traits["agile"] {
		t.Errorf("stale write leaked: %v", cur.Traits)
	}
}
