package web

import (
	"bytes"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/tatianab/ripple-realms/internal/accounts"
	"github.com/tatianab/ripple-realms/internal/engine"
	"github.com/tatianab/ripple-realms/internal/logging"
	"github.com/tatianab/ripple-realms/internal/minigames"
	"github.com/tatianab/ripple-realms/internal/models"
	"github.com/tatianab/ripple-realms/internal/quests"
	"github.com/tatianab/ripple-realms/internal/services"
	"github.com/tatianab/ripple-realms/internal/store/memstore"
)

type client struct {
	t    *testing.T
	base string
	http *http.Client
}

func newClient(t *testing.T) *client {
	t.Helper()
	st := memstore.New()
	log := logging.Discard()
	svc := &services.Services{
		Store:    st,
		Catalog:  quests.Default(),
		Engine:   engine.New(st, quests.Default(), minigames.NewRunner(), engine.WithLogger(log)),
		Accounts: accounts.New(st, log),
	}
	srv := httptest.NewServer(New(svc, log))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &client{t: t, base: srv.URL, http: &http.Client{Jar: jar}}
}

func (c *client) get(path string) (int, string) {
	c.t.Helper()
	resp, err := c.http.Get(c.base + path)
	if err != nil {
		c.t.Fatal(err)
	}
	return read(c.t, resp)
}

func (c *client) post(path string, form url.Values) (int, string) {
	c.t.Helper()
	resp, err := c.http.PostForm(c.base+path, form)
	if err != nil {
		c.t.Fatal(err)
	}
	return read(c.t, resp)
}

func read(t *testing.T, resp *http.Response) (int, string) {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, string(b)
}

func expect(t *testing.T, body string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(body, want) {
			t.Errorf("body lacks %q:\n%s", want, body)
		}
	}
}

func (c *client) signUp() {
	c.t.Helper()
	code, body := c.post("/login", url.Values{"email": {"ada@example.com"}, "display_name": {"Ada"}, "age_mode": {"teen"}})
	if code != http.StatusOK {
		c.t.Fatalf("login status %d", code)
	}
	expect(c.t, body, "Shape your realm", "Ada")

	code, body = c.post("/realm", url.Values{"realm_type": {"Mystic"}, "traits": {"kind", "bold", "curious"}})
	if code != http.StatusOK {
		c.t.Fatalf("create realm status %d: %s", code, body)
	}
	expect(c.t, body, "Continue your journey", "Mystic realm")
}

func TestPlayThroughVillage(t *testing.T) {
	c := newClient(t)

	_, body := c.get("/")
	expect(t, body, "Display name", `action="/login"`)

	c.signUp()

	_, body = c.post("/quest", nil)
	expect(t, body, "The Flickering Orb", "Investigate the orb")

	code, body := c.post("/choice", url.Values{"choice": {"Speak to it"}})
	if code != http.StatusOK {
		t.Fatalf("choice status %d", code)
	}
	expect(t, body, "You feel clever.", "Gained: trait clever")

	_, body = c.post("/quest", nil)
	expect(t, body, "The Lost Creature")

	_, body = c.post("/choice", url.Values{"choice": {"Offer it food"}})
	m := regexp.MustCompile(`class="scrambled">([A-Z]+)<`).FindStringSubmatch(body)
	if m == nil {
		t.Fatalf("no scrambled word in:\n%s", body)
	}
	answer := unscramble(t, strings.ToLower(m[1]), []string{"herbs", "bread", "grain"})

	_, body = c.post("/minigame", url.Values{"answer": {answer}})
	expect(t, body, "Correct!", "Your generosity pays off", "Thankful Creature")

	_, body = c.post("/quest", nil)
	expect(t, body, "Unlock the next zone", "Travel to the Forest")

	_, body = c.post("/advance", nil)
	expect(t, body, "Whispers in the Trees", "The Forest")
}

func unscramble(t *testing.T, scrambled string, words []string) string {
	t.Helper()
	key := []rune(scrambled)
	slices.Sort(key)
	for _, w := range words {
		r := []rune(w)
		slices.Sort(r)
		if string(r) == string(key) {
			return w
		}
	}
	t.Fatalf("cannot solve %q", scrambled)
	return ""
}

func TestFlashMessages(t *testing.T) {
	c := newClient(t)

	code, body := c.post("/login", url.Values{"email": {""}, "display_name": {"Ada"}})
	if code != http.StatusBadRequest {
		t.Errorf("missing email status %d", code)
	}
	expect(t, body, "email is required")

	c.post("/login", url.Values{"email": {"ada@example.com"}, "display_name": {"Ada"}})
	code, body = c.post("/realm", url.Values{"realm_type": {"Tech"}, "traits": {"kind", "bold"}})
	if code != http.StatusBadRequest {
		t.Errorf("two traits status %d", code)
	}
	expect(t, body, "Pick exactly three traits.")

	c.post("/realm", url.Values{"realm_type": {"Tech"}, "traits": {"kind", "bold", "clever"}})

	code, body = c.post("/choice", url.Values{"choice": {"Speak to it"}})
	if code != http.StatusBadRequest {
		t.Errorf("choice before quest status %d", code)
	}
	expect(t, body, "no longer on offer", "The Flickering Orb")

	code, body = c.post("/choice", url.Values{"choice": {"Speak"}})
	if code != http.StatusBadRequest {
		t.Errorf("bad label status %d", code)
	}
	expect(t, body, "Did you mean", "Speak to it")

	code, body = c.post("/advance", nil)
	if code != http.StatusBadRequest {
		t.Errorf("early advance status %d", code)
	}
	expect(t, body, "still quests")
}

func TestChronicleAndLogout(t *testing.T) {
	c := newClient(t)
	c.signUp()

	resp, err := c.http.Get(c.base + "/chronicle.pdf")
	if err != nil {
		t.Fatal(err)
	}
	code, body := read(t, resp)
	if code != http.StatusOK || resp.Header.Get("Content-Type") != "application/pdf" {
		t.Fatalf("chronicle status %d type %q", code, resp.Header.Get("Content-Type"))
	}
	if !bytes.HasPrefix([]byte(body), []byte("%PDF")) {
		t.Errorf("not a PDF: %.20q", body)
	}

	_, body = c.post("/logout", nil)
	expect(t, body, "Display name")
}

func TestHealthz(t *testing.T) {
	c := newClient(t)
	code, body := c.get("/healthz")
	if code != http.StatusOK || body != "ok" {
		t.Errorf("healthz = %d %q", code, body)
	}
}

func TestWriteChronicleWithoutName(t *testing.T) {
	realm, err := models.NewRealm("r1", "u1", models.RealmShadow, []string{"kind", "bold", "curious"})
	if err != nil {
		t.Fatal(err)
	}
	realm.State.Quests = append(realm.State.Quests, "flickering_orb", "retired_quest")

	var buf bytes.Buffer
	if err := writeChronicle(&buf, quests.Default(), "", realm); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Error("not a PDF")
	}
}
