package autoplay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tatianab/ripple-realms/internal/accounts"
	"github.com/tatianab/ripple-realms/internal/engine"
	"github.com/tatianab/ripple-realms/internal/minigames"
	"github.com/tatianab/ripple-realms/internal/models"
)

// DefaultMaxTurns bounds a simulation.
const DefaultMaxTurns = 100

// Step is one line of a simulated playthrough.
type Step struct {
	Zone    string
	QuestID string
	Choice  string
	Kind    engine.OutcomeKind
	Message string
}

// Report summarises a playthrough.
type Report struct {
	Steps    []Step
	Realm    models.Realm
	Finished bool
}

// Game plays one account against an engine.
type Game struct {
	Engine   *engine.Engine
	Accounts *accounts.Service
	Player   Player
	Solver   *Solver
	MaxTurns int
	Log      *slog.Logger
	// OnStep is called after every resolved quest when set.
	OnStep func(Step)
}

// Signup describes the account and realm a simulated player creates.
type Signup struct {
	Email       string
	DisplayName string
	AgeMode     models.AgeMode
	RealmType   models.RealmType
	Traits      []string
}

// Play signs up (or back in), then plays until the last zone is complete
// or MaxTurns is spent.
func (g *Game) Play(ctx context.Context, su Signup) (Report, error) {
	if g.Solver == nil {
		g.Solver = NewSolver(g.Engine.Catalog().Words())
	}
	log := g.Log
	if log == nil {
		log = slog.Default()
	}
	maxTurns := g.MaxTurns
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}

	u, _, err := g.Accounts.Login(ctx, su.Email, su.DisplayName, su.AgeMode)
	if err != nil {
		return Report{}, err
	}
	if _, err := g.Accounts.CreateRealm(ctx, u.ID, su.RealmType, su.Traits); err != nil && !errors.Is(err, accounts.ErrRealmExists) {
		return Report{}, err
	}

	var rep Report
	for turn := 0; turn < maxTurns; turn++ {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		p, err := g.Engine.PresentOrAdvance(ctx, u.ID)
		if err != nil {
			return rep, err
		}

		switch p.Kind {
		case engine.KindComplete:
			if !p.CanAdvance {
				rep.Finished = true
				rep.Realm, err = g.Engine.Realm(ctx, u.ID)
				return rep, err
			}
			res, err := g.Engine.Advance(ctx, u.ID)
			if err != nil {
				return rep, err
			}
			log.Info("zone unlocked", "from", res.From, "to", res.To)

		case engine.KindMinigame:
			out, err := g.finishMinigame(ctx, u.ID, p.Prompt)
			if err != nil {
				return rep, err
			}
			g.record(&rep, Step{Zone: p.Zone, QuestID: out.QuestID, Kind: out.Kind, Message: out.Message})

		case engine.KindQuest:
			realm, err := g.Engine.Realm(ctx, u.ID)
			if err != nil {
				return rep, err
			}
			label, err := g.Player.Choose(ctx, *p.Quest, realm)
			if err != nil {
				return rep, fmt.Errorf("choosing for %s: %w", p.Quest.ID, err)
			}
			out, err := g.Engine.SubmitChoice(ctx, u.ID, label)
			if err != nil {
				return rep, err
			}
			if out.Kind == engine.OutcomeMinigame {
				out, err = g.finishMinigame(ctx, u.ID, out.Prompt)
				if err != nil {
					return rep, err
				}
			}
			g.record(&rep, Step{Zone: p.Zone, QuestID: p.Quest.ID, Choice: label, Kind: out.Kind, Message: out.Message})
		}
	}

	rep.Realm, err = g.Engine.Realm(ctx, u.ID)
	return rep, err
}

func (g *Game) record(rep *Report, s Step) {
	rep.Steps = append(rep.Steps, s)
	if g.OnStep != nil {
		g.OnStep(s)
	}
}

// finishMinigame answers prompts until the minigame resolves.
func (g *Game) finishMinigame(ctx context.Context, userID string, prompt *minigames.Prompt) (engine.Outcome, error) {
	for {
		out, err := g.Engine.SubmitMinigameInput(ctx, userID, g.answer(prompt))
		if err != nil {
			return engine.Outcome{}, err
		}
		if out.Kind != engine.OutcomePending {
			return out, nil
		}
		prompt = out.Prompt
	}
}

func (g *Game) answer(p *minigames.Prompt) minigames.Input {
	if p == nil {
		return minigames.Input{}
	}
	switch p.Kind {
	case minigames.KindReflex:
		if p.Stage == minigames.StageGo {
			return minigames.Input{Action: minigames.ActionReact}
		}
		return minigames.Input{Action: minigames.ActionStart}
	default:
		return minigames.Input{Answer: g.Solver.Solve(p.Scrambled), Submitted: true}
	}
}
