// Package memstore keeps users and realms in process memory.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/tatianab/ripple-realms/internal/models"
	"github.com/tatianab/ripple-realms/internal/store"
)

type Store struct {
	mu       sync.RWMutex
	users    map[string]models.User  // by email
	realms   map[string]models.Realm // by user id
	failNext error
}

func New() *Store {
	return &Store{
		users:  make(map[string]models.User),
		realms: make(map[string]models.Realm),
	}
}

// FailNextUpdate makes the next UpdateRealm call return err. It exists
// for exercising write failures.
func (s *Store) FailNextUpdate(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = err
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[email]
	if !ok {
		return models.User{}, fmt.Errorf("user %q: %w", email, store.ErrNotFound)
	}
	return u, nil
}

func (s *Store) InsertUser(ctx context.Context, user models.User) (models.User, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.Email]; ok {
		return models.User{}, fmt.Errorf("user %q: %w", user.Email, store.ErrDuplicate)
	}
	s.users[user.Email] = user
	return user, nil
}

func (s *Store) GetRealmByUser(ctx context.Context, userID string) (models.Realm, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.realms[userID]
	if !ok {
		return models.Realm{}, fmt.Errorf("realm for user %q: %w", userID, store.ErrNotFound)
	}
	return r.Clone(), nil
}

func (s *Store) InsertRealm(ctx context.Context, realm models.Realm) (models.Realm, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.realms[realm.UserID]; ok {
		return models.Realm{}, fmt.Errorf("realm for user %q: %w", realm.UserID, store.ErrDuplicate)
	}
	realm.Version = 1
	s.realms[realm.UserID] = realm.Clone()
	return realm, nil
}

func (s *Store) UpdateRealm(ctx context.Context, realm models.Realm) (models.Realm, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failNext; err != nil {
		s.failNext = nil
		return models.Realm{}, err
	}
	cur, ok := s.realms[realm.UserID]
	if !ok || cur.ID != realm.ID {
		return models.Realm{}, fmt.Errorf("realm %q: %w", realm.ID, store.ErrNotFound)
	}
	if cur.Version != realm.Version {
		return models.Realm{}, fmt.Errorf("realm %q at version %d, have %d: %w", realm.ID, cur.Version, realm.Version, store.ErrStaleRealm)
	}
	realm.Version++
	s.realms[realm.UserID] = realm.Clone()
	return realm, nil
}
