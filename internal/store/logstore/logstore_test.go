package logstore

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/tatianab/ripple-realms/internal/logging"
	"github.com/tatianab/ripple-realms/internal/store"
	"github.com/tatianab/ripple-realms/internal/store/memstore"
	"github.com/tatianab/ripple-realms/internal/store/storetest"
)

func TestContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return New(memstore.New())
	})
}

func TestLogsFailuresOnly(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	var buf bytes.Buffer
	logging.Setup(&buf, slog.LevelInfo, "text")

	s := New(memstore.New())
	if _, err := s.GetRealmByUser(t.Context(), "nobody"); err == nil {
		t.Fatal("expected not found")
	}
	if buf.Len() != 0 {
		t.Errorf("not found was logged: %s", buf.String())
	}

	if _, err := s.UpdateRealm(t.Context(), storetest.NewRealm(t, "nobody")); err == nil {
		t.Fatal("expected update error")
	}
	if !strings.Contains(buf.String(), "op=update_realm") {
		t.Errorf("update failure not logged: %s", buf.String())
	}
}
