// Package logstore times every call to a store and logs it.
package logstore

import (
	"context"
	"errors"
	"time"

	"github.com/tatianab/ripple-realms/internal/logging"
	"github.com/tatianab/ripple-realms/internal/models"
	"github.com/tatianab/ripple-realms/internal/store"
)

type Store struct {
	next store.Store
}

func New(next store.Store) *Store {
	return &Store{next: next}
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	start := time.Now()
	u, err := s.next.GetUserByEmail(ctx, email)
	logging.Store("get_user", time.Since(start), ignoreNotFound(err))
	return u, err
}

func (s *Store) InsertUser(ctx context.Context, user models.User) (models.User, error) {
	start := time.Now()
	u, err := s.next.InsertUser(ctx, user)
	logging.Store("insert_user", time.Since(start), err)
	return u, err
}

func (s *Store) GetRealmByUser(ctx context.Context, userID string) (models.Realm, error) {
	start := time.Now()
	r, err := s.next.GetRealmByUser(ctx, userID)
	logging.Store("get_realm", time.Since(start), ignoreNotFound(err))
	return r, err
}

func (s *Store) InsertRealm(ctx context.Context, realm models.Realm) (models.Realm, error) {
	start := time.Now()
	r, err := s.next.InsertRealm(ctx, realm)
	logging.Store("insert_realm", time.Since(start), err)
	return r, err
}

func (s *Store) UpdateRealm(ctx context.Context, realm models.Realm) (models.Realm, error) {
	start := time.Now()
	r, err := s.next.UpdateRealm(ctx, realm)
	logging.Store("update_realm", time.Since(start), err)
	return r, err
}

// Close closes the wrapped store if it holds resources.
func (s *Store) Close() error {
	if c, ok := s.next.(store.Closer); ok {
		return c.Close()
	}
	return nil
}

// ignoreNotFound keeps lookups of absent records out of the error log.
func ignoreNotFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}
