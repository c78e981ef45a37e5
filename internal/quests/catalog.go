package quests

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tatianab/ripple-realms/internal/minigames"
	"github.com/tatianab/ripple-realms/internal/models"
	"github.com/tatianab/ripple-realms/internal/zones"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

//go:embed catalog.schema.json
var catalogSchema string

// ConfigError reports invalid catalog content.
type ConfigError struct {
	Zone  string
	Quest string
	Msg   string
}

func (e *ConfigError) Error() string {
	switch {
	case e.Quest != "":
		return fmt.Sprintf("catalog: zone %q quest %q: %s", e.Zone, e.Quest, e.Msg)
	case e.Zone != "":
		return fmt.Sprintf("catalog: zone %q: %s", e.Zone, e.Msg)
	default:
		return "catalog: " + e.Msg
	}
}

// Catalog maps zones to their ordered quests. It is immutable after
// construction and safe to share.
type Catalog struct {
	byZone map[string][]Quest
}

// NewCatalog validates byZone and builds a catalog from it.
func NewCatalog(byZone map[string][]Quest) (*Catalog, error) {
	c := &Catalog{byZone: make(map[string][]Quest, len(byZone))}
	for zone, qs := range byZone {
		if !zones.Contains(zone) {
			return nil, &ConfigError{Zone: zone, Msg: "zone is not in the zone order"}
		}
		ids := make(map[string]bool, len(qs))
		for _, q := range qs {
			if q.ID == "" {
				return nil, &ConfigError{Zone: zone, Msg: "quest without id"}
			}
			if ids[q.ID] {
				return nil, &ConfigError{Zone: zone, Quest: q.ID, Msg: "duplicate quest id"}
			}
			ids[q.ID] = true
			if err := validateQuest(zone, q); err != nil {
				return nil, err
			}
		}
		c.byZone[zone] = append([]Quest(nil), qs...)
	}
	return c, nil
}

func validateQuest(zone string, q Quest) error {
	if len(q.Choices) == 0 {
		return &ConfigError{Zone: zone, Quest: q.ID, Msg: "quest has no choices"}
	}
	labels := make(map[string]bool, len(q.Choices))
	for _, ch := range q.Choices {
		if labels[ch.Label] {
			return &ConfigError{Zone: zone, Quest: q.ID, Msg: fmt.Sprintf("duplicate choice label %q", ch.Label)}
		}
		labels[ch.Label] = true
	}
	for _, req := range q.Requirements {
		tr, ok := req.(TraitRequirement)
		if !ok || tr.Optional {
			continue
		}
		if !models.KnownTrait(tr.Trait) {
			return &ConfigError{Zone: zone, Quest: q.ID, Msg: fmt.Sprintf("requirement on unknown trait %q", tr.Trait)}
		}
	}
	return nil
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
)

// Default returns the built-in catalog.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Load(defaultCatalog)
		if err != nil {
			panic(err)
		}
		defaultCat = c
	})
	return defaultCat
}

// LoadFile reads a catalog from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

type rawCatalog struct {
	Zones map[string][]rawQuest `yaml:"zones"`
}

type rawQuest struct {
	ID           string           `yaml:"id"`
	Title        string           `yaml:"title"`
	Description  string           `yaml:"description"`
	Image        string           `yaml:"image"`
	Choices      []rawChoice      `yaml:"choices"`
	Requirements []rawRequirement `yaml:"requirements"`
}

type rawChoice struct {
	Label          string          `yaml:"label"`
	Effects        *rawEffects     `yaml:"effects"`
	Message        string          `yaml:"message"`
	Minigame       *minigames.Spec `yaml:"minigame"`
	FailureEffects *rawEffects     `yaml:"failure_effects"`
	FailureMessage string          `yaml:"failure_message"`
}

type rawEffects struct {
	Trait     string            `yaml:"trait"`
	NPC       *models.Companion `yaml:"npc"`
	Resources map[string]int    `yaml:"resources"`
}

type rawRequirement struct {
	Trait    string `yaml:"trait"`
	Is       *bool  `yaml:"is"`
	Optional bool   `yaml:"optional"`
}

// Load parses YAML catalog content, checks it against the catalog schema
// and builds a Catalog.
func Load(data []byte) (*Catalog, error) {
	if err := validateSchema(data); err != nil {
		return nil, err
	}

	var raw rawCatalog
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigError{Msg: err.Error()}
	}

	byZone := make(map[string][]Quest, len(raw.Zones))
	for zone, rqs := range raw.Zones {
		qs := make([]Quest, 0, len(rqs))
		for _, rq := range rqs {
			qs = append(qs, rq.quest())
		}
		byZone[zone] = qs
	}
	return NewCatalog(byZone)
}

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func validateSchema(data []byte) error {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("catalog.schema.json", catalogSchema)
	})
	if schemaErr != nil {
		return fmt.Errorf("compile catalog schema: %w", schemaErr)
	}

	// The validator expects JSON-decoded values.
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return &ConfigError{Msg: err.Error()}
	}
	js, err := json.Marshal(doc)
	if err != nil {
		return &ConfigError{Msg: err.Error()}
	}
	var v any
	if err := json.Unmarshal(js, &v); err != nil {
		return &ConfigError{Msg: err.Error()}
	}
	if err := schema.Validate(v); err != nil {
		return &ConfigError{Msg: err.Error()}
	}
	return nil
}

func (rq rawQuest) quest() Quest {
	q := Quest{
		ID:          rq.ID,
		Title:       rq.Title,
		Description: rq.Description,
		Image:       rq.Image,
	}
	for _, rc := range rq.Choices {
		q.Choices = append(q.Choices, Choice{
			Label:          rc.Label,
			Effects:        rc.Effects.effects(),
			Message:        rc.Message,
			Minigame:       rc.Minigame,
			FailureEffects: rc.FailureEffects.effects(),
			FailureMessage: rc.FailureMessage,
		})
	}
	for _, rr := range rq.Requirements {
		want := true
		if rr.Is != nil {
			want = *rr.Is
		}
		q.Requirements = append(q.Requirements, TraitRequirement{Trait: rr.Trait, Want: want, Optional: rr.Optional})
	}
	return q
}

// effects converts the authored map shape into typed effects. A present
// but empty map becomes a single NoOp; an absent one yields nil.
func (re *rawEffects) effects() []Effect {
	if re == nil {
		return nil
	}
	var out []Effect
	if re.Trait != "" {
		out = append(out, TraitGrant{Trait: re.Trait})
	}
	if re.NPC != nil {
		out = append(out, CompanionGrant{Companion: *re.NPC})
	}
	names := make([]string, 0, len(re.Resources))
	for name := range re.Resources {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		out = append(out, ResourceDelta{Resource: name, Amount: re.Resources[name]})
	}
	if len(out) == 0 {
		out = append(out, NoOp{})
	}
	return out
}

// QuestsFor returns the quests of zone in order. Unknown zones yield an
// empty slice.
func (c *Catalog) QuestsFor(zone string) []Quest {
	qs := c.byZone[zone]
	if len(qs) == 0 {
		return []Quest{}
	}
	return append([]Quest(nil), qs...)
}

// Quest looks up a quest by zone and id.
func (c *Catalog) Quest(zone, id string) (Quest, bool) {
	for _, q := range c.byZone[zone] {
		if q.ID == id {
			return q, true
		}
	}
	return Quest{}, false
}

// Zones lists the zones that have quests, in progression order.
func (c *Catalog) Zones() []string {
	var out []string
	for _, z := range zones.Order() {
		if len(c.byZone[z]) > 0 {
			out = append(out, z)
		}
	}
	return out
}

// Words returns every word an unscramble or puzzle challenge in the
// catalog can draw.
func (c *Catalog) Words() []string {
	seen := map[string]bool{}
	var out []string
	add := func(w string) {
		if !seen[w] {
			seen[w] = true
			out = append(out, w)
		}
	}
	for _, z := range zones.Order() {
		for _, q := range c.byZone[z] {
			for _, ch := range q.Choices {
				if ch.Minigame == nil {
					continue
				}
				switch ch.Minigame.Type {
				case minigames.KindUnscramble:
					for _, w := range ch.Minigame.Words {
						add(w)
					}
				case minigames.KindPuzzle:
					for _, w := range minigames.PuzzleWords {
						add(w)
					}
				}
			}
		}
	}
	return out
}
