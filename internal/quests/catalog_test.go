package quests

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tatianab/ripple-realms/internal/minigames"
	"github.com/tatianab/ripple-realms/internal/zones"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()

	wantCounts := map[string]int{"village": 2, "forest": 2, "temple": 2, "tower": 2, "ruins": 1}
	for zone, n := range wantCounts {
		if got := len(c.QuestsFor(zone)); got != n {
			t.Errorf("%s has %d quests, want %d", zone, got, n)
		}
	}
	if got := c.Zones(); len(got) != len(zones.Order()) {
		t.Errorf("Zones = %v", got)
	}

	orb, ok := c.Quest("village", "flickering_orb")
	if !ok {
		t.Fatal("flickering_orb missing")
	}
	if orb.Title != "The Flickering Orb" || orb.Image != "orb.png" {
		t.Errorf("orb = %+v", orb)
	}
	if len(orb.Choices) != 3 {
		t.Fatalf("orb has %d choices", len(orb.Choices))
	}
	ignore, _ := orb.Choice("Ignore it")
	if len(ignore.Effects) != 1 {
		t.Fatalf("ignore effects = %v", ignore.Effects)
	}
	if _, ok := ignore.Effects[0].(NoOp); !ok {
		t.Errorf("ignore effect = %T, want NoOp", ignore.Effects[0])
	}

	creature, _ := c.Quest("village", "lost_creature")
	comfort, _ := creature.Choice("Comfort the creature")
	if len(comfort.Effects) != 2 {
		t.Fatalf("comfort effects = %v", comfort.Effects)
	}
	if g, ok := comfort.Effects[0].(TraitGrant); !ok || g.Trait != "kind" {
		t.Errorf("first effect = %#v", comfort.Effects[0])
	}
	if g, ok := comfort.Effects[1].(CompanionGrant); !ok || g.Companion.Name != "Grateful Creature" {
		t.Errorf("second effect = %#v", comfort.Effects[1])
	}

	food, _ := creature.Choice("Offer it food")
	if !food.HasMinigame() || food.Minigame.Type != minigames.KindUnscramble {
		t.Fatalf("food minigame = %+v", food.Minigame)
	}
	if len(food.Minigame.Words) != 3 {
		t.Errorf("words = %v", food.Minigame.Words)
	}
	if food.FailureEffects != nil {
		t.Errorf("failure effects = %v, want none", food.FailureEffects)
	}

	rhythm, _ := c.Quest("tower", "arcane_rhythm")
	if rhythm.Choices[0].Minigame.Type != minigames.KindReflex {
		t.Errorf("arcane rhythm minigame = %+v", rhythm.Choices[0].Minigame)
	}
}

func TestQuestsForUnknownZone(t *testing.T) {
	qs := Default().QuestsFor("moon")
	if qs == nil || len(qs) != 0 {
		t.Errorf("QuestsFor(moon) = %#v, want empty", qs)
	}
}

func TestLoadRejectsDuplicateIDs(t *testing.T) {
	data := []byte(`
zones:
  village:
    - id: same
      title: One
      description: first
      choices:
        - label: Go
          message: ok
    - id: same
      title: Two
      description: second
      choices:
        - label: Go
          message: ok
`)
	_, err := Load(data)
	var cerr *ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("err = %v, want ConfigError", err)
	}
	if cerr.Quest != "same" {
		t.Errorf("ConfigError = %+v", cerr)
	}
}

func TestLoadRejectsInvalidContent(t *testing.T) {
	tests := map[string]string{
		"unknown zone": `
zones:
  moon:
    - id: a
      title: A
      description: d
      choices: [{label: Go}]
`,
		"schema: no choices": `
zones:
  village:
    - id: a
      title: A
      description: d
      choices: []
`,
		"schema: unknown effect key": `
zones:
  village:
    - id: a
      title: A
      description: d
      choices: [{label: Go, effects: {gold: 3}}]
`,
		"duplicate label": `
zones:
  village:
    - id: a
      title: A
      description: d
      choices: [{label: Go}, {label: Go}]
`,
		"unknown trait requirement": `
zones:
  village:
    - id: a
      title: A
      description: d
      requirements: [{trait: sneaky}]
      choices: [{label: Go}]
`,
		"not yaml": "zones: [",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Load([]byte(data)); err == nil {
				t.Errorf("expected error")
			}
		})
	}
}

func TestLoadOptionalRequirementAndResources(t *testing.T) {
	data := []byte(`
zones:
  forest:
    - id: a
      title: A
      description: d
      requirements:
        - {trait: sneaky, optional: true}
        - {trait: bold, is: false}
      choices:
        - label: Trade
          effects: {resources: {gold: 3, herbs: -1}}
          message: traded
`)
	c, err := Load(data)
	if err != nil {
		t.Fatal(err)
	}
	q, _ := c.Quest("forest", "a")
	if len(q.Requirements) != 2 {
		t.Fatalf("requirements = %v", q.Requirements)
	}
	if r := q.Requirements[1].(TraitRequirement); r.Want {
		t.Errorf("is: false not honoured: %+v", r)
	}
	eff := q.Choices[0].Effects
	if len(eff) != 2 {
		t.Fatalf("effects = %v", eff)
	}
	if d := eff[0].(ResourceDelta); d.Resource != "gold" || d.Amount != 3 {
		t.Errorf("first delta = %+v", d)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, defaultCatalog, 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(c.QuestsFor("ruins")) != 1 {
		t.Error("ruins quest missing")
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestNewCatalogValidates(t *testing.T) {
	_, err := NewCatalog(map[string][]Quest{
		"village": {{ID: "a", Choices: []Choice{{Label: "x"}}}, {ID: "a", Choices: []Choice{{Label: "y"}}}},
	})
	if err == nil {
		t.Error("duplicate ids accepted")
	}
	_, err = NewCatalog(map[string][]Quest{"village": {{ID: "a"}}})
	if err == nil {
		t.Error("quest without choices accepted")
	}
}

func TestWords(t *testing.T) {
	words := Default().Words()
	want := map[string]bool{"bread": false, "vine": false, "wizard": false, "legend": false}
	for _, w := range words {
		if _, ok := want[w]; ok {
			want[w] = true
		}
	}
	for w, seen := range want {
		if !seen {
			t.Errorf("Words missing %q", w)
		}
	}
}
