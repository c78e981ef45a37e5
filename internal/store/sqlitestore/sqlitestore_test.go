package sqlitestore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/tatianab/ripple-realms/internal/store"
	"github.com/tatianab/ripple-realms/internal/store/storetest"
)

func open(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "db", "realms.sqlite"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return open(t) })
}

func TestUpdateMissingRealm(t *testing.T) {
	s := open(t)
	r := storetest.NewRealm(t, "ghost")
	if _, err := s.UpdateRealm(context.Background(), r); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "realms.sqlite")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.InsertRealm(ctx, storetest.NewRealm(t, "u1")); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	r, err := s2.GetRealmByUser(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if r.Zone() != "village" || r.Version != 1 {
		t.Errorf("realm = %q v%d", r.Zone(), r.Version)
	}
}

func TestEmptyPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Error("empty path accepted")
	}
}
