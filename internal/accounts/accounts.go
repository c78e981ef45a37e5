// Package accounts signs players in and creates their realm.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/tatianab/ripple-realms/internal/models"
	"github.com/tatianab/ripple-realms/internal/store"
)

var (
	ErrMissingEmail = errors.New("email is required")
	ErrMissingName  = errors.New("display name is required")
	ErrRealmExists  = errors.New("user already has a realm")
)

type Service struct {
	store store.Store
	log   *slog.Logger
	newID func() string
}

func New(st store.Store, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: st, log: log, newID: uuid.NewString}
}

// Login returns the user registered under email, creating it when absent.
// The bool reports whether the user was created. Existing users keep their
// stored display name and age mode.
func (s *Service) Login(ctx context.Context, email, displayName string, age models.AgeMode) (models.User, bool, error) {
	email = strings.TrimSpace(email)
	displayName = strings.TrimSpace(displayName)
	if email == "" {
		return models.User{}, false, ErrMissingEmail
	}
	if displayName == "" {
		return models.User{}, false, ErrMissingName
	}

	u, err := s.store.GetUserByEmail(ctx, email)
	if err == nil {
		return u, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return models.User{}, false, fmt.Errorf("looking up %s: %w", email, err)
	}

	if age == "" {
		age = models.AgeChild
	}
	u, err = s.store.InsertUser(ctx, models.User{
		ID:          s.newID(),
		Email:       email,
		DisplayName: displayName,
		AgeMode:     age,
	})
	if errors.Is(err, store.ErrDuplicate) {
		// Lost a race with a concurrent signup.
		u, err = s.store.GetUserByEmail(ctx, email)
		if err != nil {
			return models.User{}, false, fmt.Errorf("looking up %s: %w", email, err)
		}
		return u, false, nil
	}
	if err != nil {
		return models.User{}, false, fmt.Errorf("creating user %s: %w", email, err)
	}
	s.log.Info("user created", "user", u.ID)
	return u, true, nil
}

// Realm returns the realm of userID, or store.ErrNotFound.
func (s *Service) Realm(ctx context.Context, userID string) (models.Realm, error) {
	return s.store.GetRealmByUser(ctx, userID)
}

// CreateRealm creates the one realm userID may own.
func (s *Service) CreateRealm(ctx context.Context, userID string, realmType models.RealmType, traits []string) (models.Realm, error) {
	parsed, err := models.ParseRealmType(string(realmType))
	if err != nil {
		return models.Realm{}, err
	}
	realm, err := models.NewRealm(s.newID(), userID, parsed, traits)
	if err != nil {
		return models.Realm{}, err
	}

	_, err = s.store.GetRealmByUser(ctx, userID)
	switch {
	case err == nil:
		return models.Realm{}, ErrRealmExists
	case !errors.Is(err, store.ErrNotFound):
		return models.Realm{}, fmt.Errorf("looking up realm of %s: %w", userID, err)
	}

	saved, err := s.store.InsertRealm(ctx, realm)
	if errors.Is(err, store.ErrDuplicate) {
		return models.Realm{}, ErrRealmExists
	}
	if err != nil {
		return models.Realm{}, fmt.Errorf("creating realm: %w", err)
	}
	s.log.Info("realm created", "user", userID, "realm", saved.ID, "type", string(parsed))
	return saved, nil
}
