// Package reststore talks to a hosted PostgREST backend (for example
// Supabase) exposing users and realms tables.
package reststore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tatianab/ripple-realms/internal/models"
	"github.com/tatianab/ripple-realms/internal/store"
)

const restPrefix = "/rest/v1/"

type Store struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// Option configures a Store.
type Option func(*Store)

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(c *http.Client) Option {
	return func(s *Store) { s.client = c }
}

func New(baseURL, apiKey string, opts ...Option) *Store {
	s := &Store{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Method string
	Table  string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Table, e.Code, e.Body)
}

func (s *Store) do(ctx context.Context, method, table string, query url.Values, body any, out any) error {
	u := s.baseURL + restPrefix + table
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if method != http.MethodGet {
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, table, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt := string(data)
		if len(excerpt) > 200 {
			excerpt = excerpt[:200]
		}
		return &StatusError{Method: method, Table: table, Code: resp.StatusCode, Body: excerpt}
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: malformed response: %w", method, table, err)
	}
	return nil
}

func eq(v string) string {
	return "eq." + v
}

func isConflict(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusConflict
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var users []models.User
	q := url.Values{"email": {eq(email)}, "select": {"*"}}
	if err := s.do(ctx, http.MethodGet, "users", q, nil, &users); err != nil {
		return models.User{}, err
	}
	if len(users) == 0 {
		return models.User{}, fmt.Errorf("user %q: %w", email, store.ErrNotFound)
	}
	return users[0], nil
}

func (s *Store) InsertUser(ctx context.Context, user models.User) (models.User, error) {
	var users []models.User
	err := s.do(ctx, http.MethodPost, "users", nil, user, &users)
	if isConflict(err) {
		return models.User{}, fmt.Errorf("user %q: %w", user.Email, store.ErrDuplicate)
	}
	if err != nil {
		return models.User{}, err
	}
	if len(users) == 0 {
		return user, nil
	}
	return users[0], nil
}

func (s *Store) GetRealmByUser(ctx context.Context, userID string) (models.Realm, error) {
	var realms []models.Realm
	q := url.Values{"user_id": {eq(userID)}, "select": {"*"}, "limit": {"1"}}
	if err := s.do(ctx, http.MethodGet, "realms", q, nil, &realms); err != nil {
		return models.Realm{}, err
	}
	if len(realms) == 0 {
		return models.Realm{}, fmt.Errorf("realm for user %q: %w", userID, store.ErrNotFound)
	}
	return realms[0], nil
}

func (s *Store) InsertRealm(ctx context.Context, realm models.Realm) (models.Realm, error) {
	realm.Version = 1
	var realms []models.Realm
	err := s.do(ctx, http.MethodPost, "realms", nil, realm, &realms)
	if isConflict(err) {
		return models.Realm{}, fmt.Errorf("realm for user %q: %w", realm.UserID, store.ErrDuplicate)
	}
	if err != nil {
		return models.Realm{}, err
	}
	if len(realms) == 0 {
		return realm, nil
	}
	return realms[0], nil
}

type realmPatch struct {
	RealmType models.RealmType   `json:"realm_type"`
	Traits    map[string]bool    `json:"traits"`
	State     *models.RealmState `json:"realm_state"`
	Version   int                `json:"version"`
}

func (s *Store) UpdateRealm(ctx context.Context, realm models.Realm) (models.Realm, error) {
	patch := realmPatch{
		RealmType: realm.RealmType,
		Traits:    realm.Traits,
		State:     realm.State,
		Version:   realm.Version + 1,
	}
	q := url.Values{"id": {eq(realm.ID)}, "version": {eq(strconv.Itoa(realm.Version))}}

	var realms []models.Realm
	if err := s.do(ctx, http.MethodPatch, "realms", q, patch, &realms); err != nil {
		return models.Realm{}, err
	}
	if len(realms) > 0 {
		return realms[0], nil
	}

	// Nothing matched: tell a missing realm apart from a version clash.
	var cur []struct {
		Version int `json:"version"`
	}
	q = url.Values{"id": {eq(realm.ID)}, "select": {"version"}}
	if err := s.do(ctx, http.MethodGet, "realms", q, nil, &cur); err != nil {
		return models.Realm{}, err
	}
	if len(cur) == 0 {
		return models.Realm{}, fmt.Errorf("realm %q: %w", realm.ID, store.ErrNotFound)
	}
	return models.Realm{}, fmt.Errorf("realm %q at version %d, have %d: %w", realm.ID, cur[0].Version, realm.Version, store.ErrStaleRealm)
}
