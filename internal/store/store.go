// Package store defines the persistence collaborator the game reads and
// writes users and realms through.
//
// Every implementation is atomic per record only. Realm updates use the
// realm's Version for optimistic concurrency: an update whose version does
// not match the stored one fails with ErrStaleRealm and the stored realm is
// left untouched. This guards against two sessions on the same realm
// silently overwriting each other.
package store

import (
	"context"
	"errors"

	"github.com/tatianab/ripple-realms/internal/models"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrDuplicate  = errors.New("already exists")
	ErrStaleRealm = errors.New("stale realm")
)

// Store is implemented by memstore, filestore, sqlitestore and reststore.
type Store interface {
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	InsertUser(ctx context.Context, user models.User) (models.User, error)
	GetRealmByUser(ctx context.Context, userID string) (models.Realm, error)
	InsertRealm(ctx context.Context, realm models.Realm) (models.Realm, error)
	// UpdateRealm stores realm if realm.Version matches the stored version
	// and returns it with the version incremented.
	UpdateRealm(ctx context.Context, realm models.Realm) (models.Realm, error)
}

// Closer is implemented by stores holding resources.
type Closer interface {
	Close() error
}
