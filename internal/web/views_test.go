package web

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tatianab/ripple-realms/internal/models"
)

func TestPageEscapesText(t *testing.T) {
	var b strings.Builder
	if err := page("<Village>", `<script>alert("x")</script>`, dashboardView()).Render(context.Background(), &b); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := b.String()
	if strings.Contains(out, "<script>") || strings.Contains(out, "<Village>") {
		t.Errorf("unescaped text in page:\n%s", out)
	}
	if !strings.Contains(out, "&lt;script&gt;") {
		t.Errorf("flash missing from page:\n%s", out)
	}
}

type failingWriter struct {
	writes int
	after  int
}

var errWrite = errors.New("connection reset")

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.writes >= w.after {
		return 0, errWrite
	}
	w.writes++
	return len(p), nil
}

func TestWithPanelReportsWriteErrors(t *testing.T) {
	realm, err := models.NewRealm("r1", "u1", models.RealmNature, []string{"kind", "bold", "curious"})
	if err != nil {
		t.Fatal(err)
	}
	for after := 0; after < 4; after++ {
		w := &failingWriter{after: after}
		if err := withPanel(realm, dashboardView()).Render(context.Background(), w); !errors.Is(err, errWrite) {
			t.Errorf("write %d failing: err = %v, want %v", after, err, errWrite)
		}
	}
}
