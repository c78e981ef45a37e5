package quests

import "fmt"

// Requirement gates a quest on a realm's traits. Eval returns an error
// when it cannot be evaluated; the selector treats that as satisfied.
type Requirement interface {
	Eval(traits map[string]bool) (bool, error)
}

// TraitRequirement holds when traits[Trait] == Want. Optional
// requirements may name traits outside the vocabulary.
type TraitRequirement struct {
	Trait    string
	Want     bool
	Optional bool
}

func (r TraitRequirement) Eval(traits map[string]bool) (bool, error) {
	v, ok := traits[r.Trait]
	if !ok {
		return false, fmt.Errorf("trait %q is not tracked", r.Trait)
	}
	return v == r.Want, nil
}

// RequirementFunc adapts a function to Requirement.
type RequirementFunc func(traits map[string]bool) (bool, error)

func (f RequirementFunc) Eval(traits map[string]bool) (bool, error) {
	return f(traits)
}

// Available reports whether every requirement of q holds. Requirements
// that fail to evaluate are skipped.
func (q Quest) Available(traits map[string]bool) bool {
	for _, req := range q.Requirements {
		ok, err := req.Eval(traits)
		if err != nil {
			continue
		}
		if !ok {
			return false
		}
	}
	return true
}
