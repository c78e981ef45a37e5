// Package quests holds the authored quest content, the rules that pick
// which quest a realm sees next, and the effects a choice applies.
package quests

import "github.com/tatianab/ripple-realms/internal/minigames"

// DefaultSuccessMessage is shown for choices without a message.
const DefaultSuccessMessage = "Well done."

// DefaultFailureMessage is shown when a failed minigame has no message.
const DefaultFailureMessage = "You failed the challenge."

// Quest is a single narrative decision point.
type Quest struct {
	ID           string
	Title        string
	Description  string
	Image        string
	Choices      []Choice
	Requirements []Requirement
}

// Choice is one option of a quest.
type Choice struct {
	Label          string
	Effects        []Effect
	Message        string
	Minigame       *minigames.Spec
	FailureEffects []Effect
	FailureMessage string
}

// HasMinigame reports whether the choice is gated by a minigame.
func (c Choice) HasMinigame() bool {
	return c.Minigame != nil
}

// SuccessText returns the message, falling back to DefaultSuccessMessage.
func (c Choice) SuccessText() string {
	if c.Message == "" {
		return DefaultSuccessMessage
	}
	return c.Message
}

// FailureText returns the failure message, falling back to DefaultFailureMessage.
func (c Choice) FailureText() string {
	if c.FailureMessage == "" {
		return DefaultFailureMessage
	}
	return c.FailureMessage
}

// Labels returns the choice labels in order.
func (q Quest) Labels() []string {
	out := make([]string, len(q.Choices))
	for i, c := range q.Choices {
		out[i] = c.Label
	}
	return out
}

// Choice looks up a choice by its exact label.
func (q Quest) Choice(label string) (Choice, bool) {
	for _, c := range q.Choices {
		if c.Label == label {
			return c, true
		}
	}
	return Choice{}, false
}
