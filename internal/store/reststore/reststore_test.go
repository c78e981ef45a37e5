package reststore

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/tatianab/ripple-realms/internal/models"
	"github.com/tatianab/ripple-realms/internal/store"
	"github.com/tatianab/ripple-realms/internal/store/storetest"
)

// fakeREST serves the subset of PostgREST the store uses.
type fakeREST struct {
	mu     sync.Mutex
	users  []models.User
	realms []models.Realm
	calls  []string
}

func (f *fakeREST) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.Header.Get("apikey") != "secret" || r.Header.Get("Authorization") != "Bearer secret" {
		http.Error(w, `{"message":"no api key"}`, http.StatusUnauthorized)
		return
	}
	f.calls = append(f.calls, r.Method+" "+r.URL.Path)

	q := r.URL.Query()
	match := func(field, value string) bool {
		want := q.Get(field)
		return want == "" || want == "eq."+value
	}

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.URL.Path == "/rest/v1/users" && r.Method == http.MethodGet:
		out := []models.User{}
		for _, u := range f.users {
			if match("email", u.Email) {
				out = append(out, u)
			}
		}
		json.NewEncoder(w).Encode(out)

	case r.URL.Path == "/rest/v1/users" && r.Method == http.MethodPost:
		var u models.User
		json.NewDecoder(r.Body).Decode(&u)
		for _, x := range f.users {
			if x.Email == u.Email {
				http.Error(w, `{"code":"23505"}`, http.StatusConflict)
				return
			}
		}
		f.users = append(f.users, u)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode([]models.User{u})

	case r.URL.Path == "/rest/v1/realms" && r.Method == http.MethodGet:
		out := []models.Realm{}
		for _, x := range f.realms {
			if match("user_id", x.UserID) && match("id", x.ID) {
				out = append(out, x)
			}
		}
		json.NewEncoder(w).Encode(out)

	case r.URL.Path == "/rest/v1/realms" && r.Method == http.MethodPost:
		var x models.Realm
		json.NewDecoder(r.Body).Decode(&x)
		for _, y := range f.realms {
			if y.UserID == x.UserID {
				http.Error(w, `{"code":"23505"}`, http.StatusConflict)
				return
			}
		}
		f.realms = append(f.realms, x)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode([]models.Realm{x})

	case r.URL.Path == "/rest/v1/realms" && r.Method == http.MethodPatch:
		var patch models.Realm
		json.NewDecoder(r.Body).Decode(&patch)
		out := []models.Realm{}
		for i, x := range f.realms {
			if match("id", x.ID) && match("version", strconv.Itoa(x.Version)) {
				x.RealmType = patch.RealmType
				x.Traits = patch.Traits
				x.State = patch.State
				x.Version = patch.Version
				f.realms[i] = x
				out = append(out, x)
			}
		}
		json.NewEncoder(w).Encode(out)

	default:
		http.NotFound(w, r)
	}
}

func newServer(t *testing.T) (*fakeREST, *Store) {
	t.Helper()
	fake := &fakeREST{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return fake, New(srv.URL+"/", "secret", WithHTTPClient(srv.Client()))
}

func TestContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		_, s := newServer(t)
		return s
	})
}

func TestUpdateMissingRealm(t *testing.T) {
	_, s := newServer(t)
	_, err := s.UpdateRealm(context.Background(), storetest.NewRealm(t, "ghost"))
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestStatusErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, strings.Repeat("x", 500), http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := New(srv.URL, "secret")
	_, err := s.GetUserByEmail(context.Background(), "ada@example.com")
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want StatusError", err)
	}
	if se.Code != http.StatusInternalServerError || len(se.Body) != 200 {
		t.Errorf("StatusError = %d, body %d bytes", se.Code, len(se.Body))
	}
}

func TestMalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"oops":`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "secret").GetRealmByUser(context.Background(), "u1")
	if err == nil || !strings.Contains(err.Error(), "malformed") {
		t.Errorf("err = %v", err)
	}
}

func TestWrongKeyIsUnauthorized(t *testing.T) {
	fake := &fakeREST{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	_, err := New(srv.URL, "wrong").GetUserByEmail(context.Background(), "a@b.c")
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusUnauthorized {
		t.Errorf("err = %v", err)
	}
}
