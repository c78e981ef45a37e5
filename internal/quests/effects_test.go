package quests

import (
	"reflect"
	"testing"

	"github.com/tatianab/ripple-realms/internal/models"
)

func newRealm(t *testing.T) models.Realm {
	t.Helper()
	r, err := models.NewRealm("r", "u", models.RealmMystic, []string{"kind", "bold", "curious"})
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestTraitGrantIsIdempotent(t *testing.T) {
	once := newRealm(t)
	twice := newRealm(t)
	grant := []Effect{TraitGrant{Trait: "clever"}}

	ApplyEffects(&once, grant)
	ApplyEffects(&twice, grant)
	ApplyEffects(&twice, grant)

	if !once.Traits["clever"] || !twice.Traits["clever"] {
		t.Fatal("clever not granted")
	}
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("second application changed state:\n%+v\n%+v", once, twice)
	}
}

func TestCompanionGrantAppends(t *testing.T) {
	realm := newRealm(t)
	orb := models.Companion{Name: "Watcher Orb", Type: "mystic"}
	grant := []Effect{CompanionGrant{Companion: orb}}

	ApplyEffects(&realm, grant)
	ApplyEffects(&realm, grant)

	want := []models.Companion{orb, orb}
	if !reflect.DeepEqual(realm.Companions(), want) {
		t.Errorf("companions = %v, want %v", realm.Companions(), want)
	}
}

func TestResourceDeltaAndNoOp(t *testing.T) {
	realm := newRealm(t)
	realm.State.Resources = nil
	ApplyEffects(&realm, []Effect{ResourceDelta{Resource: "gold", Amount: 5}, NoOp{}, ResourceDelta{Resource: "gold", Amount: -2}})
	if realm.State.Resources["gold"] != 3 {
		t.Errorf("gold = %d", realm.State.Resources["gold"])
	}

	before := realm.Clone()
	if !ApplyEffects(&realm, []Effect{NoOp{}}) {
		t.Error("NoOp on a valid realm reported malformed")
	}
	if !ApplyEffects(&realm, nil) {
		t.Error("empty effects on a valid realm reported malformed")
	}
	if !reflect.DeepEqual(before, realm) {
		t.Error("NoOp changed the realm")
	}
}

func TestApplyEffectsMalformedRealm(t *testing.T) {
	grant := []Effect{TraitGrant{Trait: "wise"}, CompanionGrant{Companion: models.Companion{Name: "x"}}}

	noState := newRealm(t)
	noState.State = nil
	if ApplyEffects(&noState, grant) {
		t.Error("realm without state accepted effects")
	}
	if noState.Traits["wise"] {
		t.Error("traits changed on malformed realm")
	}

	noTraits := newRealm(t)
	noTraits.Traits = nil
	if ApplyEffects(&noTraits, grant) {
		t.Error("realm without traits accepted effects")
	}
	if len(noTraits.Companions()) != 0 {
		t.Error("companions changed on malformed realm")
	}

	if ApplyEffects(nil, grant) {
		t.Error("nil realm accepted effects")
	}
}

func TestDescribe(t *testing.T) {
	tests := map[string]Effect{
		"trait wise":               TraitGrant{Trait: "wise"},
		"companion Sprite (guide)": CompanionGrant{Companion: models.Companion{Name: "Sprite", Type: "guide"}},
		"+2 gold":                  ResourceDelta{Resource: "gold", Amount: 2},
		"nothing":                  NoOp{},
	}
	for want, e := range tests {
		if got := Describe(e); got != want {
			t.Errorf("Describe(%#v) = %q, want %q", e, got, want)
		}
	}
}
