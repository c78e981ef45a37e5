// Package filestore keeps every user and realm in a single local file.
// Files ending in .yaml or .yml are written as YAML, anything else as JSON.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tatianab/ripple-realms/internal/models"
	"github.com/tatianab/ripple-realms/internal/store"
	"gopkg.in/yaml.v3"
)

type document struct {
	Users  []models.User  `json:"users" yaml:"users"`
	Realms []models.Realm `json:"realms" yaml:"realms"`
}

type Store struct {
	mu   sync.Mutex
	path string
	yaml bool
	doc  document
}

// Open loads path, creating its directory if needed. A missing file is an
// empty store.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("filestore: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	ext := strings.ToLower(filepath.Ext(path))
	s := &Store{path: path, yaml: ext == ".yaml" || ext == ".yml"}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return s, nil
	}
	if s.yaml {
		err = yaml.Unmarshal(data, &s.doc)
	} else {
		err = json.Unmarshal(data, &s.doc)
	}
	if err != nil {
		return nil, fmt.Errorf("filestore: parse %s: %w", path, err)
	}
	return s, nil
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// save writes the document next to the target and renames it into place.
func (s *Store) save() error {
	var (
		data []byte
		err  error
	)
	if s.yaml {
		data, err = yaml.Marshal(s.doc)
	} else {
		data, err = json.MarshalIndent(s.doc, "", "  ")
	}
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".realms-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.doc.Users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, fmt.Errorf("user %q: %w", email, store.ErrNotFound)
}

func (s *Store) InsertUser(ctx context.Context, user models.User) (models.User, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.doc.Users {
		if u.Email == user.Email {
			return models.User{}, fmt.Errorf("user %q: %w", user.Email, store.ErrDuplicate)
		}
	}
	s.doc.Users = append(s.doc.Users, user)
	if err := s.save(); err != nil {
		s.doc.Users = s.doc.Users[:len(s.doc.Users)-1]
		return models.User{}, err
	}
	return user, nil
}

func (s *Store) GetRealmByUser(ctx context.Context, userID string) (models.Realm, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.doc.Realms {
		if r.UserID == userID {
			return r.Clone(), nil
		}
	}
	return models.Realm{}, fmt.Errorf("realm for user %q: %w", userID, store.ErrNotFound)
}

func (s *Store) InsertRealm(ctx context.Context, realm models.Realm) (models.Realm, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.doc.Realms {
		if r.UserID == realm.UserID {
			return models.Realm{}, fmt.Errorf("realm for user %q: %w", realm.UserID, store.ErrDuplicate)
		}
	}
	realm.Version = 1
	s.doc.Realms = append(s.doc.Realms, realm.Clone())
	if err := s.save(); err != nil {
		s.doc.Realms = s.doc.Realms[:len(s.doc.Realms)-1]
		return models.Realm{}, err
	}
	return realm, nil
}

func (s *Store) UpdateRealm(ctx context.Context, realm models.Realm) (models.Realm, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, cur := range s.doc.Realms {
		if cur.ID != realm.ID {
			continue
		}
		if cur.Version != realm.Version {
			return models.Realm{}, fmt.Errorf("realm %q at version %d, have %d: %w", realm.ID, cur.Version, realm.Version, store.ErrStaleRealm)
		}
		realm.Version++
		s.doc.Realms[i] = realm.Clone()
		if err := s.save(); err != nil {
			s.doc.Realms[i] = cur
			return models.Realm{}, err
		}
		return realm, nil
	}
	return models.Realm{}, fmt.Errorf("realm %q: %w", realm.ID, store.ErrNotFound)
}
