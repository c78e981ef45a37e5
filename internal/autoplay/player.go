// Package autoplay plays a realm from signup to the last zone without a
// human, for simulations and smoke tests.
package autoplay

import (
	"context"
	"math/rand/v2"

	"github.com/tatianab/ripple-realms/internal/engine"
	"github.com/tatianab/ripple-realms/internal/models"
)

// Player picks a choice label for a presented quest.
type Player interface {
	Choose(ctx context.Context, quest engine.QuestView, realm models.Realm) (string, error)
}

// RandomPlayer picks uniformly among the choices.
type RandomPlayer struct {
	rng *rand.Rand
}

func NewRandomPlayer(rng *rand.Rand) *RandomPlayer {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &RandomPlayer{rng: rng}
}

func (p *RandomPlayer) Choose(_ context.Context, quest engine.QuestView, _ models.Realm) (string, error) {
	if len(quest.Choices) == 0 {
		return "", nil
	}
	return quest.Choices[p.rng.IntN(len(quest.Choices))], nil
}
