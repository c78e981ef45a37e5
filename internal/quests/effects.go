package quests

import (
	"fmt"

	"github.com/tatianab/ripple-realms/internal/models"
)

// Effect is a mutation applied to a realm when a choice resolves.
// The set of implementations is closed: TraitGrant, CompanionGrant,
// ResourceDelta and NoOp.
type Effect interface {
	effect()
}

// TraitGrant sets a trait to true.
type TraitGrant struct {
	Trait string
}

// CompanionGrant appends a companion to the realm.
type CompanionGrant struct {
	Companion models.Companion
}

// ResourceDelta adds Amount to a named resource counter.
type ResourceDelta struct {
	Resource string
	Amount   int
}

// NoOp changes nothing.
type NoOp struct{}

func (TraitGrant) effect()     {}
func (CompanionGrant) effect() {}
func (ResourceDelta) effect()  {}
func (NoOp) effect()           {}

// ApplyEffects mutates realm in place. It returns false without touching
// anything when the realm has no traits or no state.
//
// Trait grants are idempotent. Companion grants are not: applying the
// same grant twice yields two entries.
func ApplyEffects(realm *models.Realm, effects []Effect) bool {
	if realm == nil || len(realm.Traits) == 0 || realm.State == nil {
		return false
	}
	for _, e := range effects {
		switch e := e.(type) {
		case TraitGrant:
			realm.Traits[e.Trait] = true
		case CompanionGrant:
			realm.State.NPC = append(realm.State.NPC, e.Companion)
		case ResourceDelta:
			if realm.State.Resources == nil {
				realm.State.Resources = make(map[string]int)
			}
			realm.State.Resources[e.Resource] += e.Amount
		case NoOp:
		default:
			panic(fmt.Sprintf("quests: unhandled effect %T", e))
		}
	}
	return true
}

// Describe renders an effect for logs and summaries.
func Describe(e Effect) string {
	switch e := e.(type) {
	case TraitGrant:
		return "trait " + e.Trait
	case CompanionGrant:
		return fmt.Sprintf("companion %s (%s)", e.Companion.Name, e.Companion.Type)
	case ResourceDelta:
		return fmt.Sprintf("%+d %s", e.Amount, e.Resource)
	case NoOp:
		return "nothing"
	default:
		return fmt.Sprintf("%T", e)
	}
}
