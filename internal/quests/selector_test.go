package quests

import (
	"errors"
	"testing"

	"github.com/tatianab/ripple-realms/internal/models"
)

func TestSelectNextScenario(t *testing.T) {
	q, ok := Default().SelectNext("village", map[string]bool{}, nil)
	if !ok || q.ID != "flickering_orb" {
		t.Fatalf("SelectNext = %q, %v; want flickering_orb", q.ID, ok)
	}
	q, ok = Default().SelectNext("village", map[string]bool{}, []string{"flickering_orb"})
	if !ok || q.ID != "lost_creature" {
		t.Fatalf("SelectNext = %q, %v; want lost_creature", q.ID, ok)
	}
	if _, ok := Default().SelectNext("village", nil, []string{"flickering_orb", "lost_creature"}); ok {
		t.Error("village should be complete")
	}
	if _, ok := Default().SelectNext("moon", nil, nil); ok {
		t.Error("unknown zone returned a quest")
	}
}

func TestSelectNextNeverReturnsCompleted(t *testing.T) {
	c := Default()
	traits := map[string]bool{}
	for _, zone := range c.Zones() {
		var completed []string
		for {
			q, ok := c.SelectNext(zone, traits, completed)
			if !ok {
				break
			}
			for _, id := range completed {
				if id == q.ID {
					t.Fatalf("%s: returned completed quest %q", zone, q.ID)
				}
			}
			// Duplicates in the completed list are tolerated.
			completed = append(completed, q.ID, q.ID)
		}
		if n := c.Remaining(zone, completed); n != 0 {
			t.Errorf("%s: %d quests remain", zone, n)
		}
	}
}

func gatedCatalog(t *testing.T, reqs ...Requirement) *Catalog {
	t.Helper()
	c, err := NewCatalog(map[string][]Quest{
		"forest": {
			{ID: "gated", Choices: []Choice{{Label: "go"}}, Requirements: reqs},
			{ID: "open", Choices: []Choice{{Label: "go"}}},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestSelectNextRequirements(t *testing.T) {
	c := gatedCatalog(t, TraitRequirement{Trait: "bold", Want: true})

	q, _ := c.SelectNext("forest", map[string]bool{"bold": true}, nil)
	if q.ID != "gated" {
		t.Errorf("bold realm got %q", q.ID)
	}
	q, _ = c.SelectNext("forest", map[string]bool{"bold": false}, nil)
	if q.ID != "open" {
		t.Errorf("timid realm got %q, want the ungated quest", q.ID)
	}
}

func TestSelectNextFailsOpen(t *testing.T) {
	boom := RequirementFunc(func(map[string]bool) (bool, error) {
		return false, errors.New("boom")
	})
	c := gatedCatalog(t, boom)

	traitSets := []map[string]bool{nil, {}, {"bold": true}, {"bold": false, "kind": true}}
	for _, traits := range traitSets {
		q, ok := c.SelectNext("forest", traits, nil)
		if !ok || q.ID != "gated" {
			t.Errorf("traits %v: got %q, %v; erroring requirement blocked selection", traits, q.ID, ok)
		}
	}

	// A trait requirement on a key the realm does not track also fails open.
	c = gatedCatalog(t, TraitRequirement{Trait: "sneaky", Want: true, Optional: true})
	if q, _ := c.SelectNext("forest", map[string]bool{"bold": true}, nil); q.ID != "gated" {
		t.Errorf("missing trait blocked selection, got %q", q.ID)
	}
}

func TestSelectNextWithStarterRealm(t *testing.T) {
	realm, err := models.NewRealm("r", "u", models.RealmNature, []string{"kind", "bold", "curious"})
	if err != nil {
		t.Fatal(err)
	}
	q, ok := Default().SelectNext(realm.Zone(), realm.Traits, realm.CompletedQuests())
	if !ok || q.ID != "flickering_orb" {
		t.Errorf("got %q", q.ID)
	}
}
