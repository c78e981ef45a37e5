// Package cachestore puts an LRU cache of realms in front of another store.
package cachestore

import (
	"context"

	lru "github.com/hashicorp/golang-lru"

	"github.com/tatianab/ripple-realms/internal/models"
	"github.com/tatianab/ripple-realms/internal/store"
)

const DefaultSize = 1024

type Store struct {
	next  store.Store
	cache *lru.Cache // user id -> models.Realm
}

// New wraps next. Non-positive sizes use DefaultSize.
func New(next store.Store, size int) (*Store, error) {
	if size <= 0 {
		size = DefaultSize
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &Store{next: next, cache: cache}, nil
}

// Len reports how many realms are cached.
func (s *Store) Len() int {
	return s.cache.Len()
}

func (s *Store) Close() error {
	if c, ok := s.next.(store.Closer); ok {
		return c.Close()
	}
	return nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	return s.next.GetUserByEmail(ctx, email)
}

func (s *Store) InsertUser(ctx context.Context, user models.User) (models.User, error) {
	return s.next.InsertUser(ctx, user)
}

func (s *Store) GetRealmByUser(ctx context.Context, userID string) (models.Realm, error) {
	if v, ok := s.cache.Get(userID); ok {
		return v.(models.Realm).Clone(), nil
	}
	r, err := s.next.GetRealmByUser(ctx, userID)
	if err != nil {
		return models.Realm{}, err
	}
	s.cache.Add(userID, r.Clone())
	return r, nil
}

func (s *Store) InsertRealm(ctx context.Context, realm models.Realm) (models.Realm, error) {
	r, err := s.next.InsertRealm(ctx, realm)
	if err != nil {
		return models.Realm{}, err
	}
	s.cache.Add(r.UserID, r.Clone())
	return r, nil
}

func (s *Store) UpdateRealm(ctx context.Context, realm models.Realm) (models.Realm, error) {
	r, err := s.next.UpdateRealm(ctx, realm)
	if err != nil {
		// The write may have landed or another writer may have moved the
		// realm on; refetch next time.
		s.cache.Remove(realm.UserID)
		return models.Realm{}, err
	}
	s.cache.Add(r.UserID, r.Clone())
	return r, nil
}
