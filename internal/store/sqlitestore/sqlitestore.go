// Package sqlitestore persists users and realms in a SQLite database.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/tatianab/ripple-realms/internal/models"
	"github.com/tatianab/ripple-realms/internal/store"
)

type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path. ":memory:" is accepted.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			display_name TEXT NOT NULL,
			age_mode TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS realms (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL UNIQUE,
			realm_type TEXT NOT NULL,
			traits TEXT NOT NULL,
			realm_state TEXT NOT NULL,
			version INTEGER NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, display_name, age_mode FROM users WHERE email = ?`, email,
	).Scan(&u.ID, &u.Email, &u.DisplayName, &u.AgeMode)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, fmt.Errorf("user %q: %w", email, store.ErrNotFound)
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

func (s *Store) InsertUser(ctx context.Context, user models.User) (models.User, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, display_name, age_mode) VALUES (?, ?, ?, ?)`,
		user.ID, user.Email, user.DisplayName, string(user.AgeMode),
	)
	if isUniqueViolation(err) {
		return models.User{}, fmt.Errorf("user %q: %w", user.Email, store.ErrDuplicate)
	}
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (s *Store) GetRealmByUser(ctx context.Context, userID string) (models.Realm, error) {
	var (
		r             models.Realm
		traits, state string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, realm_type, traits, realm_state, version FROM realms WHERE user_id = ?`, userID,
	).Scan(&r.ID, &r.UserID, &r.RealmType, &traits, &state, &r.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Realm{}, fmt.Errorf("realm for user %q: %w", userID, store.ErrNotFound)
	}
	if err != nil {
		return models.Realm{}, err
	}
	if err := json.Unmarshal([]byte(traits), &r.Traits); err != nil {
		return models.Realm{}, fmt.Errorf("realm %q traits: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(state), &r.State); err != nil {
		return models.Realm{}, fmt.Errorf("realm %q state: %w", r.ID, err)
	}
	return r, nil
}

func encodeRealm(r models.Realm) (traits, state string, err error) {
	t, err := json.Marshal(r.Traits)
	if err != nil {
		return "", "", err
	}
	st, err := json.Marshal(r.State)
	if err != nil {
		return "", "", err
	}
	return string(t), string(st), nil
}

func (s *Store) InsertRealm(ctx context.Context, realm models.Realm) (models.Realm, error) {
	traits, state, err := encodeRealm(realm)
	if err != nil {
		return models.Realm{}, err
	}
	realm.Version = 1
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO realms (id, user_id, realm_type, traits, realm_state, version) VALUES (?, ?, ?, ?, ?, ?)`,
		realm.ID, realm.UserID, string(realm.RealmType), traits, state, realm.Version,
	)
	if isUniqueViolation(err) {
		return models.Realm{}, fmt.Errorf("realm for user %q: %w", realm.UserID, store.ErrDuplicate)
	}
	if err != nil {
		return models.Realm{}, err
	}
	return realm, nil
}

func (s *Store) UpdateRealm(ctx context.Context, realm models.Realm) (models.Realm, error) {
	traits, state, err := encodeRealm(realm)
	if err != nil {
		return models.Realm{}, err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE realms SET realm_type = ?, traits = ?, realm_state = ?, version = version + 1
		 WHERE id = ? AND version = ?`,
		string(realm.RealmType), traits, state, realm.ID, realm.Version,
	)
	if err != nil {
		return models.Realm{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return models.Realm{}, err
	}
	if n == 0 {
		var cur int
		err := s.db.QueryRowContext(ctx, `SELECT version FROM realms WHERE id = ?`, realm.ID).Scan(&cur)
		if errors.Is(err, sql.ErrNoRows) {
			return models.Realm{}, fmt.Errorf("realm %q: %w", realm.ID, store.ErrNotFound)
		}
		if err != nil {
			return models.Realm{}, err
		}
		return models.Realm{}, fmt.Errorf("realm %q at version %d, have %d: %w", realm.ID, cur, realm.Version, store.ErrStaleRealm)
	}
	realm.Version++
	return realm, nil
}
