package models

import (
	"fmt"
	"sort"
	"strings"
)

// AgeMode is the age group a player picked at signup.
type AgeMode string

const (
	AgeChild AgeMode = "child"
	AgeTeen  AgeMode = "teen"
	AgeAdult AgeMode = "adult"
)

// AgeModes lists the selectable age groups in display order.
func AgeModes() []AgeMode {
	return []AgeMode{AgeChild, AgeTeen, AgeAdult}
}

// ParseAgeMode accepts any casing and defaults empty input to child.
func ParseAgeMode(s string) (AgeMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return AgeChild, nil
	}
	for _, m := range AgeModes() {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown age mode %q", s)
}

// RealmType is the theme chosen when a realm is created.
type RealmType string

const (
	RealmNature RealmType = "Nature"
	RealmMystic RealmType = "Mystic"
	RealmShadow RealmType = "Shadow"
	RealmTech   RealmType = "Tech"
)

// RealmTypes lists the selectable themes in display order.
func RealmTypes() []RealmType {
	return []RealmType{RealmNature, RealmMystic, RealmShadow, RealmTech}
}

// ParseRealmType matches a theme name case-insensitively.
func ParseRealmType(s string) (RealmType, error) {
	s = strings.TrimSpace(s)
	for _, t := range RealmTypes() {
		if strings.EqualFold(string(t), s) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown realm type %q", s)
}

// User is a player account. It is keyed by email.
type User struct {
	ID          string  `json:"id" yaml:"id"`
	Email       string  `json:"email" yaml:"email"`
	DisplayName string  `json:"display_name" yaml:"display_name"`
	AgeMode     AgeMode `json:"age_mode" yaml:"age_mode"`
}

// Companion is an ally befriended during a quest.
type Companion struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

// RealmState is the mutable progression part of a realm.
type RealmState struct {
	Zone      string         `json:"zone" yaml:"zone"`
	NPC       []Companion    `json:"npc" yaml:"npc"`
	Quests    []string       `json:"quests" yaml:"quests"` // completed quest ids
	Resources map[string]int `json:"resources" yaml:"resources"`
}

// Realm is a player's persistent game state.
type Realm struct {
	ID        string          `json:"id" yaml:"id"`
	UserID    string          `json:"user_id" yaml:"user_id"`
	RealmType RealmType       `json:"realm_type" yaml:"realm_type"`
	Traits    map[string]bool `json:"traits" yaml:"traits"`
	State     *RealmState     `json:"realm_state" yaml:"realm_state"`
	// Version is bumped by the store on every accepted update.
	Version int `json:"version" yaml:"version"`
}

// Zone returns the realm's current zone, or "" for a realm without state.
func (r *Realm) Zone() string {
	if r.State == nil {
		return ""
	}
	return r.State.Zone
}

// CompletedQuests returns the completed quest ids, never nil.
func (r *Realm) CompletedQuests() []string {
	if r.State == nil || r.State.Quests == nil {
		return []string{}
	}
	return r.State.Quests
}

// Completed reports whether questID is in the completed list.
func (r *Realm) Completed(questID string) bool {
	for _, id := range r.CompletedQuests() {
		if id == questID {
			return true
		}
	}
	return false
}

// Companions returns the befriended companions, never nil.
func (r *Realm) Companions() []Companion {
	if r.State == nil || r.State.NPC == nil {
		return []Companion{}
	}
	return r.State.NPC
}

// TraitList returns the names of all traits set to true, sorted.
func (r *Realm) TraitList() []string {
	var out []string
	for name, on := range r.Traits {
		if on {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Clone returns a deep copy so callers can mutate without touching r.
func (r Realm) Clone() Realm {
	out := r
	if r.Traits != nil {
		out.Traits = make(map[string]bool, len(r.Traits))
		for k, v := range r.Traits {
			out.Traits[k] = v
		}
	}
	if r.State != nil {
		st := *r.State
		if r.State.NPC != nil {
			st.NPC = make([]Companion, len(r.State.NPC))
			copy(st.NPC, r.State.NPC)
		}
		if r.State.Quests != nil {
			st.Quests = make([]string, len(r.State.Quests))
			copy(st.Quests, r.State.Quests)
		}
		if r.State.Resources != nil {
			st.Resources = make(map[string]int, len(r.State.Resources))
			for k, v := range r.State.Resources {
				st.Resources[k] = v
			}
		}
		out.State = &st
	}
	return out
}
