package accounts

import (
	"context"
	"errors"
	"testing"

	"github.com/tatianab/ripple-realms/internal/models"
	"github.com/tatianab/ripple-realms/internal/store/memstore"
)

func TestLogin(t *testing.T) {
	ctx := context.Background()
	s := New(memstore.New(), nil)

	u, created, err := s.Login(ctx, "  ada@example.com ", "Ada", models.AgeTeen)
	if err != nil {
		t.Fatal(err)
	}
	if !created || u.ID == "" || u.Email != "ada@example.com" || u.AgeMode != models.AgeTeen {
		t.Errorf("first login = %+v, created %v", u, created)
	}

	again, created, err := s.Login(ctx, "ada@example.com", "Someone Else", models.AgeAdult)
	if err != nil {
		t.Fatal(err)
	}
	if created || again.ID != u.ID || again.DisplayName != "Ada" || again.AgeMode != models.AgeTeen {
		t.Errorf("second login = %+v, created %v", again, created)
	}
}

func TestLoginValidation(t *testing.T) {
	s := New(memstore.New(), nil)
	tests := []struct {
		email, name string
		want        error
	}{
		{"", "Ada", ErrMissingEmail},
		{"   ", "Ada", ErrMissingEmail},
		{"ada@example.com", "", ErrMissingName},
	}
	for _, tt := range tests {
		if _, _, err := s.Login(context.Background(), tt.email, tt.name, ""); !errors.Is(err, tt.want) {
			t.Errorf("Login(%q, %q) err = %v, want %v", tt.email, tt.name, err, tt.want)
		}
	}
}

func TestLoginDefaultsAgeMode(t *testing.T) {
	s := New(memstore.New(), nil)
	u, _, err := s.Login(context.Background(), "kid@example.com", "Kid", "")
	if err != nil {
		t.Fatal(err)
	}
	if u.AgeMode != models.AgeChild {
		t.Errorf("age mode = %q", u.AgeMode)
	}
}

func TestCreateRealm(t *testing.T) {
	ctx := context.Background()
	s := New(memstore.New(), nil)
	u, _, _ := s.Login(ctx, "ada@example.com", "Ada", models.AgeAdult)

	r, err := s.CreateRealm(ctx, u.ID, models.RealmMystic, []string{"kind", "clever", "mysterious"})
	if err != nil {
		t.Fatal(err)
	}
	if r.UserID != u.ID || r.Zone() != models.StartZone || r.Version != 1 {
		t.Errorf("realm = %+v", r)
	}
	if len(r.Companions()) != 0 || len(r.CompletedQuests()) != 0 || len(r.State.Resources) != 0 {
		t.Errorf("realm state not empty: %+v", r.State)
	}
	if len(r.Traits) != len(models.TraitVocabulary()) {
		t.Errorf("traits = %v", r.Traits)
	}

	if _, err := s.CreateRealm(ctx, u.ID, models.RealmTech, []string{"kind", "bold", "curious"}); !errors.Is(err, ErrRealmExists) {
		t.Errorf("second realm err = %v, want ErrRealmExists", err)
	}

	got, err := s.Realm(ctx, u.ID)
	if err != nil || got.ID != r.ID {
		t.Errorf("Realm = %+v, %v", got, err)
	}
}

func TestCreateRealmValidation(t *testing.T) {
	s := New(memstore.New(), nil)
	ctx := context.Background()
	if _, err := s.CreateRealm(ctx, "u1", "Space", []string{"kind", "bold", "curious"}); err == nil {
		t.Error("unknown realm type accepted")
	}
	if _, err := s.CreateRealm(ctx, "u1", models.RealmNature, []string{"kind", "bold"}); !errors.Is(err, models.ErrStarterTraits) {
		t.Errorf("two traits err = %v", err)
	}
}

func TestCreateRealmNormalizesType(t *testing.T) {
	ctx := context.Background()
	s := New(memstore.New(), nil)

	r, err := s.CreateRealm(ctx, "u1", " nature ", []string{"kind", "bold", "curious"})
	if err != nil {
		t.Fatal(err)
	}
	if r.RealmType != models.RealmNature {
		t.Errorf("realm type = %q, want %q", r.RealmType, models.RealmNature)
	}
	got, err := s.Realm(ctx, "u1")
	if err != nil || got.RealmType != models.RealmNature {
		t.Errorf("stored realm type = %q, %v", got.RealmType, err)
	}
}
