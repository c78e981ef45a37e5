package engine

import (
	"sync"

	"github.com/tatianab/ripple-realms/internal/minigames"
	"github.com/tatianab/ripple-realms/internal/quests"
)

// State is where a realm's interaction stands.
type State int

const (
	Idle State = iota
	Presenting
	AwaitingMinigame
	Resolved
)

func (s State) String() string {
	switch s {
	case Presenting:
		return "presenting"
	case AwaitingMinigame:
		return "awaiting-minigame"
	case Resolved:
		return "resolved"
	default:
		return "idle"
	}
}

// InFlight is a minigame-gated choice waiting for its minigame to resolve.
type InFlight struct {
	QuestID        string
	Zone           string
	Minigame       minigames.Spec
	SuccessEffects []quests.Effect
	FailureEffects []quests.Effect
	SuccessMessage string
	FailureMessage string

	// resolved holds a finished minigame whose commit was not acknowledged.
	resolved *minigames.Outcome
}

// Uncommitted reports whether the minigame finished but saving failed.
func (f *InFlight) Uncommitted() bool {
	return f.resolved != nil
}

// session is the engine-owned interaction state of one realm.
type session struct {
	mu       sync.Mutex
	state    State
	zone     string
	questID  string // presented quest
	inFlight *InFlight
	realmID  string
	gameKey  string
	// unacked is the label of a plain choice whose save returned an
	// error; the write may still have landed.
	unacked string
	refs    int // guarded by Engine.mu
}

func (s *session) present(zone, questID string) {
	s.state = Presenting
	s.zone = zone
	s.questID = questID
	s.unacked = ""
}

func (s *session) await(f *InFlight, key string) {
	s.state = AwaitingMinigame
	s.inFlight = f
	s.gameKey = key
}

func (s *session) resolve() {
	s.state = Resolved
	s.questID = ""
	s.inFlight = nil
	s.gameKey = ""
	s.unacked = ""
}

func (s *session) reset() {
	s.state = Idle
	s.questID = ""
	s.inFlight = nil
	s.gameKey = ""
	s.unacked = ""
}

// Session is a read-only snapshot of a realm's interaction state.
type Session struct {
	RealmID  string
	State    State
	Zone     string
	QuestID  string
	InFlight *InFlight
}

func (s *session) snapshot() Session {
	out := Session{RealmID: s.realmID, State: s.state, Zone: s.zone, QuestID: s.questID}
	if s.inFlight != nil {
		f := *s.inFlight
		out.InFlight = &f
	}
	return out
}

func minigameKey(realmID, questID string) string {
	return "mg_" + realmID + "_" + questID
}
