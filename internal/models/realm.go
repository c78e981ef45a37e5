package models

import (
	"errors"
	"fmt"
)

// StartZone is the zone every new realm begins in.
const StartZone = "village"

// StarterTraitCount is how many traits a player picks at realm creation.
const StarterTraitCount = 3

var starterTraits = []string{"kind", "bold", "curious", "mysterious", "clever"}

var earnedTraits = []string{"confident", "hothead", "wise", "humble", "agile", "legendary"}

// StarterTraits lists the traits selectable at realm creation.
func StarterTraits() []string {
	return append([]string(nil), starterTraits...)
}

// TraitVocabulary lists every trait a realm tracks, starters first.
func TraitVocabulary() []string {
	out := make([]string, 0, len(starterTraits)+len(earnedTraits))
	out = append(out, starterTraits...)
	return append(out, earnedTraits...)
}

// KnownTrait reports whether name is part of the vocabulary.
func KnownTrait(name string) bool {
	for _, t := range TraitVocabulary() {
		if t == name {
			return true
		}
	}
	return false
}

var ErrStarterTraits = errors.New("select exactly three starting traits")

// NewRealm builds a fresh realm in the starting zone. Every vocabulary
// trait is present as a key; only the selected starters are true.
func NewRealm(id, userID string, realmType RealmType, selected []string) (Realm, error) {
	if len(selected) != StarterTraitCount {
		return Realm{}, ErrStarterTraits
	}
	seen := make(map[string]bool, len(selected))
	for _, name := range selected {
		if !isStarter(name) {
			return Realm{}, fmt.Errorf("%q is not a starting trait", name)
		}
		if seen[name] {
			return Realm{}, ErrStarterTraits
		}
		seen[name] = true
	}

	traits := make(map[string]bool)
	for _, name := range TraitVocabulary() {
		traits[name] = seen[name]
	}

	return Realm{
		ID:        id,
		UserID:    userID,
		RealmType: realmType,
		Traits:    traits,
		State: &RealmState{
			Zone:      StartZone,
			NPC:       []Companion{},
			Quests:    []string{},
			Resources: map[string]int{},
		},
	}, nil
}

func isStarter(name string) bool {
	for _, t := range starterTraits {
		if t == name {
			return true
		}
	}
	return false
}
