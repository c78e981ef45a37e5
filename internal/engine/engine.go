// Package engine drives a realm through its quests: it presents the next
// eligible quest, resolves choices and minigames, and moves realms between
// zones. The realm itself is always read from and written to the store.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/sahilm/fuzzy"
	"github.com/tatianab/ripple-realms/internal/minigames"
	"github.com/tatianab/ripple-realms/internal/models"
	"github.com/tatianab/ripple-realms/internal/quests"
	"github.com/tatianab/ripple-realms/internal/store"
	"github.com/tatianab/ripple-realms/internal/zones"
)

var (
	ErrRealmNotFound    = errors.New("realm not found")
	ErrNoQuestPresented = errors.New("no quest is being presented")
	ErrMinigameInFlight = errors.New("a minigame is in progress")
	ErrNoMinigame       = errors.New("no minigame in progress")
	ErrZoneIncomplete   = errors.New("quests remain in this zone")
	// ErrPersistence wraps store failures. The operation can be retried.
	ErrPersistence = errors.New("could not save realm")
)

// InvalidChoiceError is returned for a label the presented quest lacks.
type InvalidChoiceError struct {
	QuestID     string
	Label       string
	Suggestions []string
}

func (e *InvalidChoiceError) Error() string {
	msg := fmt.Sprintf("quest %s has no choice %q", e.QuestID, e.Label)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf("; did you mean %q?", e.Suggestions[0])
	}
	return msg
}

// CompleteNotice is shown once a zone has nothing left to offer.
const CompleteNotice = "You have completed all available quests in this zone. Unlock the next zone to continue."

// FinalNotice is shown when the last zone is complete.
const FinalNotice = "You have completed every quest in the realm."

type Engine struct {
	store   store.Store
	catalog *quests.Catalog
	games   *minigames.Runner
	log     *slog.Logger

	mu       sync.Mutex
	sessions map[string]*session // by realm id
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func New(st store.Store, catalog *quests.Catalog, games *minigames.Runner, opts ...Option) *Engine {
	e := &Engine{
		store:    st,
		catalog:  catalog,
		games:    games,
		log:      slog.Default(),
		sessions: make(map[string]*session),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the quest content the engine serves.
func (e *Engine) Catalog() *quests.Catalog {
	return e.catalog
}

// Realm loads the realm owned by userID.
func (e *Engine) Realm(ctx context.Context, userID string) (models.Realm, error) {
	realm, err := e.store.GetRealmByUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Realm{}, fmt.Errorf("%w: user %s", ErrRealmNotFound, userID)
	}
	if err != nil {
		return models.Realm{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return realm, nil
}

// Session returns a snapshot of the interaction state of realmID. A realm
// with no tracked session is Idle.
func (e *Engine) Session(realmID string) Session {
	e.mu.Lock()
	s, ok := e.sessions[realmID]
	if !ok {
		e.mu.Unlock()
		return Session{RealmID: realmID, State: Idle}
	}
	s.refs++
	e.mu.Unlock()

	s.mu.Lock()
	snap := s.snapshot()
	e.unlock(s)
	return snap
}

// acquire returns the session of realmID, creating it if needed, and
// holds a reference to it until unlock.
func (e *Engine) acquire(realmID string) *session {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.sessions[realmID]
	if !ok {
		s = &session{realmID: realmID}
		e.sessions[realmID] = s
	}
	s.refs++
	return s
}

// unlock releases a session locked by lock or Session. Idle sessions
// nobody else holds are dropped.
func (e *Engine) unlock(s *session) {
	idle := s.state == Idle
	s.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	s.refs--
	if s.refs == 0 && idle {
		delete(e.sessions, s.realmID)
	}
}

// lock loads the realm of userID and locks its session. The realm is read
// again once the lock is held so commits start from the latest version.
// The caller must release the session with unlock.
func (e *Engine) lock(ctx context.Context, userID string) (models.Realm, *session, error) {
	realm, err := e.Realm(ctx, userID)
	if err != nil {
		return models.Realm{}, nil, err
	}
	s := e.acquire(realm.ID)
	s.mu.Lock()
	realm, err = e.Realm(ctx, userID)
	if err != nil {
		e.unlock(s)
		return models.Realm{}, nil, err
	}
	return realm, s, nil
}

// QuestView is the presentation-safe part of a quest.
type QuestView struct {
	ID          string
	Title       string
	Description string
	Image       string
	Choices     []string
}

func viewOf(q quests.Quest) *QuestView {
	return &QuestView{
		ID:          q.ID,
		Title:       q.Title,
		Description: q.Description,
		Image:       q.Image,
		Choices:     q.Labels(),
	}
}

type PresentationKind int

const (
	KindQuest PresentationKind = iota
	KindComplete
	KindMinigame
)

// Presentation is what the player should see next.
type Presentation struct {
	Kind       PresentationKind
	Zone       string
	Quest      *QuestView
	Prompt     *minigames.Prompt
	CanAdvance bool
	NextZone   string
	Notice     string
}

// PresentOrAdvance returns the next eligible quest of the realm's zone, the
// prompt of a minigame still in progress, or a completion notice.
func (e *Engine) PresentOrAdvance(ctx context.Context, userID string) (Presentation, error) {
	realm, s, err := e.lock(ctx, userID)
	if err != nil {
		return Presentation{}, err
	}
	defer e.unlock(s)

	if f := s.inFlight; f != nil {
		p := Presentation{Kind: KindMinigame, Zone: f.Zone}
		if q, ok := e.catalog.Quest(f.Zone, f.QuestID); ok {
			p.Quest = viewOf(q)
		}
		if f.resolved != nil {
			prompt := f.resolved.Prompt
			p.Prompt = &prompt
			return p, nil
		}
		out, err := e.games.Run(f.Minigame, s.gameKey, minigames.Input{})
		if err != nil {
			e.games.Reset(s.gameKey)
			s.reset()
			return Presentation{}, fmt.Errorf("quest %s: %w", f.QuestID, err)
		}
		p.Prompt = &out.Prompt
		return p, nil
	}

	zone := realm.Zone()
	q, ok := e.catalog.SelectNext(zone, realm.Traits, realm.CompletedQuests())
	if !ok {
		s.reset()
		next, hasNext := zones.Next(zone)
		notice := CompleteNotice
		if !hasNext {
			notice = FinalNotice
		}
		return Presentation{
			Kind:       KindComplete,
			Zone:       zone,
			CanAdvance: hasNext,
			NextZone:   next,
			Notice:     notice,
		}, nil
	}

	s.present(zone, q.ID)
	return Presentation{Kind: KindQuest, Zone: zone, Quest: viewOf(q)}, nil
}

type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeFailure
	OutcomeMinigame
	OutcomePending
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeFailure:
		return "failure"
	case OutcomeMinigame:
		return "minigame"
	case OutcomePending:
		return "pending"
	default:
		return "success"
	}
}

// Outcome reports what a submission did.
type Outcome struct {
	Kind    OutcomeKind
	QuestID string
	Message string
	Effects []quests.Effect
	Prompt  *minigames.Prompt
	// Realm is the saved realm after a resolved submission.
	Realm models.Realm
}

// SubmitChoice resolves the player's choice on the presented quest.
func (e *Engine) SubmitChoice(ctx context.Context, userID, label string) (Outcome, error) {
	realm, s, err := e.lock(ctx, userID)
	if err != nil {
		return Outcome{}, err
	}
	defer e.unlock(s)

	if s.inFlight != nil {
		return Outcome{}, ErrMinigameInFlight
	}
	if s.state != Presenting {
		return Outcome{}, ErrNoQuestPresented
	}
	q, ok := e.catalog.Quest(s.zone, s.questID)
	if !ok || realm.Zone() != s.zone {
		s.reset()
		return Outcome{}, ErrNoQuestPresented
	}
	choice, ok := q.Choice(label)
	if realm.Completed(q.ID) && (!ok || choice.Label != s.unacked) {
		s.reset()
		return Outcome{}, ErrNoQuestPresented
	}
	if !ok {
		return Outcome{}, &InvalidChoiceError{
			QuestID:     q.ID,
			Label:       label,
			Suggestions: suggest(label, q.Labels()),
		}
	}

	if !choice.HasMinigame() {
		saved := realm
		if realm.Completed(q.ID) {
			// The earlier save of this choice landed.
			e.log.Info("unacknowledged save found", "realm", realm.ID, "quest", q.ID)
		} else {
			saved, err = e.commit(ctx, realm, q.ID, choice.Effects, true)
			if err != nil {
				s.unacked = choice.Label
				return Outcome{}, err
			}
		}
		s.resolve()
		e.log.Info("quest completed", "realm", realm.ID, "quest", q.ID, "choice", label)
		return Outcome{
			Kind:    OutcomeSuccess,
			QuestID: q.ID,
			Message: choice.SuccessText(),
			Effects: choice.Effects,
			Realm:   saved,
		}, nil
	}

	key := minigameKey(realm.ID, q.ID)
	e.games.Reset(key)
	out, err := e.games.Run(*choice.Minigame, key, minigames.Input{})
	if err != nil {
		s.reset()
		e.log.Warn("minigame rejected", "realm", realm.ID, "quest", q.ID, "type", choice.Minigame.Type)
		return Outcome{}, fmt.Errorf("quest %s: %w", q.ID, err)
	}
	s.await(&InFlight{
		QuestID:        q.ID,
		Zone:           s.zone,
		Minigame:       *choice.Minigame,
		SuccessEffects: choice.Effects,
		FailureEffects: choice.FailureEffects,
		SuccessMessage: choice.SuccessText(),
		FailureMessage: choice.FailureText(),
	}, key)
	if out.Result != minigames.Pending {
		return e.settle(ctx, s, realm, out)
	}
	return Outcome{Kind: OutcomeMinigame, QuestID: q.ID, Prompt: &out.Prompt}, nil
}

// SubmitMinigameInput feeds one interaction to the minigame in progress.
func (e *Engine) SubmitMinigameInput(ctx context.Context, userID string, in minigames.Input) (Outcome, error) {
	realm, s, err := e.lock(ctx, userID)
	if err != nil {
		return Outcome{}, err
	}
	defer e.unlock(s)

	f := s.inFlight
	if f == nil {
		return Outcome{}, ErrNoMinigame
	}
	if f.resolved != nil {
		return e.settle(ctx, s, realm, *f.resolved)
	}
	out, err := e.games.Run(f.Minigame, s.gameKey, in)
	if err != nil {
		e.games.Reset(s.gameKey)
		s.reset()
		return Outcome{}, fmt.Errorf("quest %s: %w", f.QuestID, err)
	}
	if out.Result == minigames.Pending {
		return Outcome{Kind: OutcomePending, QuestID: f.QuestID, Prompt: &out.Prompt}, nil
	}
	return e.settle(ctx, s, realm, out)
}

// settle commits a resolved minigame. On a store failure the result is
// kept so the next submission retries the commit.
func (e *Engine) settle(ctx context.Context, s *session, realm models.Realm, out minigames.Outcome) (Outcome, error) {
	f := s.inFlight
	won := out.Result == minigames.Success
	effects, msg, kind := f.FailureEffects, f.FailureMessage, OutcomeFailure
	if won {
		effects, msg, kind = f.SuccessEffects, f.SuccessMessage, OutcomeSuccess
	}

	saved := realm
	if won && realm.Completed(f.QuestID) {
		// An earlier save of this result landed without acknowledgement.
		e.log.Info("unacknowledged save found", "realm", realm.ID, "quest", f.QuestID)
	} else {
		var err error
		saved, err = e.commit(ctx, realm, f.QuestID, effects, won)
		if err != nil {
			f.resolved = &out
			return Outcome{}, err
		}
	}
	s.resolve()
	e.log.Info("minigame resolved", "realm", realm.ID, "quest", f.QuestID, "result", out.Result.String())
	return Outcome{
		Kind:    kind,
		QuestID: f.QuestID,
		Message: msg,
		Effects: effects,
		Prompt:  &out.Prompt,
		Realm:   saved,
	}, nil
}

// commit applies effects to a copy of realm, marks questID completed when
// complete is set, and saves it.
func (e *Engine) commit(ctx context.Context, realm models.Realm, questID string, effects []quests.Effect, complete bool) (models.Realm, error) {
	next := realm.Clone()
	if !quests.ApplyEffects(&next, effects) {
		e.log.Warn("malformed realm, effects skipped", "realm", realm.ID, "quest", questID)
	}
	if complete && next.State != nil && !next.Completed(questID) {
		next.State.Quests = append(next.State.Quests, questID)
	}
	saved, err := e.store.UpdateRealm(ctx, next)
	if err != nil {
		e.log.Error("saving realm", "realm", realm.ID, "quest", questID, "err", err)
		return models.Realm{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return saved, nil
}

// CanAdvance reports whether a realm in zone has no eligible quest left
// and a next zone exists.
func CanAdvance(catalog *quests.Catalog, zone string, traits map[string]bool, completed []string) bool {
	if _, ok := catalog.SelectNext(zone, traits, completed); ok {
		return false
	}
	_, ok := zones.Next(zone)
	return ok
}

// CanAdvance reports whether the realm of userID may move on.
func (e *Engine) CanAdvance(ctx context.Context, userID string) (bool, error) {
	realm, err := e.Realm(ctx, userID)
	if err != nil {
		return false, err
	}
	return CanAdvance(e.catalog, realm.Zone(), realm.Traits, realm.CompletedQuests()), nil
}

// AdvanceResult describes a zone move.
type AdvanceResult struct {
	Realm    models.Realm
	From     string
	To       string
	Advanced bool
}

// Advance moves the realm of userID to the next zone once its current zone
// is complete. In the last zone it is a no-op.
func (e *Engine) Advance(ctx context.Context, userID string) (AdvanceResult, error) {
	realm, s, err := e.lock(ctx, userID)
	if err != nil {
		return AdvanceResult{}, err
	}
	defer e.unlock(s)

	if s.inFlight != nil {
		return AdvanceResult{}, ErrMinigameInFlight
	}
	zone := realm.Zone()
	next, ok := zones.Next(zone)
	if !ok {
		return AdvanceResult{Realm: realm, From: zone, To: zone}, nil
	}
	if _, pending := e.catalog.SelectNext(zone, realm.Traits, realm.CompletedQuests()); pending {
		return AdvanceResult{}, ErrZoneIncomplete
	}

	moved := realm.Clone()
	moved.State.Zone = next
	saved, err := e.store.UpdateRealm(ctx, moved)
	if err != nil {
		e.log.Error("saving realm", "realm", realm.ID, "zone", next, "err", err)
		return AdvanceResult{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	s.reset()
	e.log.Info("zone unlocked", "realm", realm.ID, "from", zone, "to", next)
	return AdvanceResult{Realm: saved, From: zone, To: next, Advanced: true}, nil
}

// suggest ranks labels by fuzzy similarity to label, best first. With no
// match it offers every label.
func suggest(label string, labels []string) []string {
	label = strings.TrimSpace(label)
	if label == "" {
		return labels
	}
	matches := fuzzy.Find(label, labels)
	if len(matches) == 0 {
		return labels
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Str)
	}
	return out
}
