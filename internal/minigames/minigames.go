// Package minigames implements the short challenges that gate some quest
// choices. Each challenge is driven one interaction at a time and reports
// Pending until it resolves to Success or Failure.
package minigames

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
)

// Kind names a minigame variant.
type Kind string

const (
	KindUnscramble Kind = "unscramble"
	KindReflex     Kind = "reflex"
	KindPuzzle     Kind = "puzzle"
)

// Spec describes the minigame attached to a quest choice.
type Spec struct {
	Type  Kind     `json:"type" yaml:"type"`
	Words []string `json:"words,omitempty" yaml:"words,omitempty"`
}

// Result is the tri-state outcome of one interaction.
type Result int

const (
	Pending Result = iota
	Success
	Failure
)

func (r Result) String() string {
	switch r {
	case Success:
		return "success"
	case Failure:
		return "failure"
	default:
		return "pending"
	}
}

// Action is a reflex trigger.
type Action string

const (
	ActionNone  Action = ""
	ActionStart Action = "start"
	ActionReact Action = "react"
)

// Input is what the player did since the last interaction.
type Input struct {
	Answer    string
	Submitted bool
	Action    Action
}

// Stage is the reflex state machine position.
type Stage string

const (
	StageReady Stage = "ready"
	StageGo    Stage = "go"
)

// Prompt is plain data for the presentation layer.
type Prompt struct {
	Kind      Kind
	Scrambled string
	Stage     Stage
	Feedback  string
	Elapsed   time.Duration
}

// Outcome pairs a result with what to show the player.
type Outcome struct {
	Result Result
	Prompt Prompt
}

// PuzzleWords is the fixed word list used by puzzle challenges.
var PuzzleWords = []string{"temple", "tower", "ruins", "magic", "energy"}

// DefaultReflexLimit is the reaction time a reflex challenge must beat.
const DefaultReflexLimit = time.Second

var ErrUnknownMinigame = errors.New("unknown minigame type")

type wordState struct {
	word      string
	scrambled string
}

type reflexState struct {
	stage Stage
	start time.Time
}

// Runner keeps per-challenge state keyed by a session key. State lives
// only until the challenge resolves.
type Runner struct {
	mu     sync.Mutex
	rng    *rand.Rand
	now    func() time.Time
	limit  time.Duration
	words  map[string]*wordState
	reflex map[string]*reflexState
}

// Option configures a Runner.
type Option func(*Runner)

// WithRand sets the source used to pick and shuffle words.
func WithRand(rng *rand.Rand) Option {
	return func(r *Runner) { r.rng = rng }
}

// WithClock sets the clock used to time reflex challenges.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// WithReflexLimit overrides DefaultReflexLimit. Non-positive values are ignored.
func WithReflexLimit(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.limit = d
		}
	}
}

func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		now:    time.Now,
		limit:  DefaultReflexLimit,
		words:  make(map[string]*wordState),
		reflex: make(map[string]*reflexState),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run advances the challenge stored under key by one interaction.
func (r *Runner) Run(spec Spec, key string, in Input) (Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch spec.Type {
	case KindUnscramble:
		return r.unscramble(KindUnscramble, spec.Words, key, in), nil
	case KindPuzzle:
		return r.unscramble(KindPuzzle, PuzzleWords, key, in), nil
	case KindReflex:
		return r.runReflex(key, in), nil
	default:
		r.resetLocked(key)
		return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownMinigame, spec.Type)
	}
}

// Reset drops any state held under key.
func (r *Runner) Reset(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resetLocked(key)
}

// Active reports whether a challenge is in progress under key.
func (r *Runner) Active(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, w := r.words[key]
	_, x := r.reflex[key]
	return w || x
}

func (r *Runner) resetLocked(key string) {
	delete(r.words, key)
	delete(r.reflex, key)
}

func (r *Runner) unscramble(kind Kind, words []string, key string, in Input) Outcome {
	if len(words) == 0 {
		r.resetLocked(key)
		return Outcome{Result: Failure, Prompt: Prompt{Kind: kind, Feedback: "There is nothing to unscramble."}}
	}

	st, ok := r.words[key]
	if !ok {
		word := words[r.rng.IntN(len(words))]
		st = &wordState{word: word, scrambled: r.scramble(word)}
		r.words[key] = st
	}

	p := Prompt{Kind: kind, Scrambled: st.scrambled}
	if !in.Submitted {
		return Outcome{Result: Pending, Prompt: p}
	}

	delete(r.words, key)
	if strings.EqualFold(strings.TrimSpace(in.Answer), st.word) {
		p.Feedback = "Correct!"
		return Outcome{Result: Success, Prompt: p}
	}
	p.Feedback = fmt.Sprintf("Incorrect. The correct word was '%s'.", st.word)
	return Outcome{Result: Failure, Prompt: p}
}

// scramble shuffles the letters, retrying a few times so that words with
// distinct letters are not shown unscrambled.
func (r *Runner) scramble(word string) string {
	letters := []rune(word)
	for range 4 {
		r.rng.Shuffle(len(letters), func(i, j int) {
			letters[i], letters[j] = letters[j], letters[i]
		})
		if string(letters) != word {
			break
		}
	}
	return string(letters)
}

func (r *Runner) runReflex(key string, in Input) Outcome {
	st, ok := r.reflex[key]
	if !ok {
		st = &reflexState{stage: StageReady}
		r.reflex[key] = st
	}

	switch st.stage {
	case StageReady:
		if in.Action == ActionStart {
			st.stage = StageGo
			st.start = r.now()
		}
	case StageGo:
		if in.Action == ActionReact {
			elapsed := r.now().Sub(st.start)
			delete(r.reflex, key)
			p := Prompt{Kind: KindReflex, Stage: StageReady, Elapsed: elapsed}
			if elapsed < r.limit {
				p.Feedback = "Great reflexes!"
				return Outcome{Result: Success, Prompt: p}
			}
			p.Feedback = "A bit slow! Keep practising."
			return Outcome{Result: Failure, Prompt: p}
		}
	}
	return Outcome{Result: Pending, Prompt: Prompt{Kind: KindReflex, Stage: st.stage}}
}
