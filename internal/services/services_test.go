package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/tatianab/ripple-realms/internal/config"
	"github.com/tatianab/ripple-realms/internal/engine"
	"github.com/tatianab/ripple-realms/internal/logging"
	"github.com/tatianab/ripple-realms/internal/models"
	"github.com/tatianab/ripple-realms/internal/store/cachestore"
)

func TestOpenStoreKinds(t *testing.T) {
	dir := t.TempDir()
	tests := []config.StoreConfig{
		{Kind: config.StoreMemory},
		{Kind: config.StoreFile, File: filepath.Join(dir, "realms.yaml")},
		{Kind: config.StoreSQLite, SQLite: filepath.Join(dir, "realms.db")},
		{Kind: config.StoreREST, RESTURL: "http://localhost:1"},
	}
	for _, tt := range tests {
		t.Run(tt.Kind, func(t *testing.T) {
			st, err := OpenStore(tt)
			if err != nil {
				t.Fatal(err)
			}
			s := &Services{Store: st}
			if err := s.Close(); err != nil {
				t.Errorf("Close: %v", err)
			}
		})
	}
	if _, err := OpenStore(config.StoreConfig{Kind: "mongo"}); err == nil {
		t.Error("unknown kind accepted")
	}
}

func TestOpenStoreCache(t *testing.T) {
	st, err := OpenStore(config.StoreConfig{Kind: config.StoreMemory, CacheSize: 8})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := st.(*cachestore.Store); !ok {
		t.Errorf("store = %T, want cache in front", st)
	}
}

func TestNewPlaysAQuest(t *testing.T) {
	cfg := config.Default()
	cfg.Store = config.StoreConfig{Kind: config.StoreFile, File: filepath.Join(t.TempDir(), "realms.json"), CacheSize: 4}

	svc, err := New(&cfg, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}
	defer svc.Close()

	ctx := context.Background()
	u, _, err := svc.Accounts.Login(ctx, "ada@example.com", "Ada", models.AgeAdult)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Accounts.CreateRealm(ctx, u.ID, models.RealmNature, []string{"kind", "bold", "curious"}); err != nil {
		t.Fatal(err)
	}
	p, err := svc.Engine.PresentOrAdvance(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if p.Kind != engine.KindQuest || p.Quest.ID != "flickering_orb" {
		t.Fatalf("presentation %+v", p)
	}
	out, err := svc.Engine.SubmitChoice(ctx, u.ID, "Speak to it")
	if err != nil {
		t.Fatal(err)
	}
	if !out.Realm.Traits["clever"] {
		t.Error("clever not granted")
	}
}

func TestNewRejectsBadCatalog(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Kind = config.StoreMemory
	cfg.Game.Catalog = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := New(&cfg, logging.Discard()); err == nil {
		t.Error("missing catalog accepted")
	}
}
