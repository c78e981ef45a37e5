// Package tui is the terminal front end: sign in, create a realm, then
// play quests zone by zone.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tatianab/ripple-realms/internal/config"
	"github.com/tatianab/ripple-realms/internal/engine"
	"github.com/tatianab/ripple-realms/internal/logging"
	"github.com/tatianab/ripple-realms/internal/minigames"
	"github.com/tatianab/ripple-realms/internal/models"
	"github.com/tatianab/ripple-realms/internal/quests"
	"github.com/tatianab/ripple-realms/internal/services"
	"github.com/tatianab/ripple-realms/internal/store"
	"github.com/tatianab/ripple-realms/internal/zones"
)

type screen int

const (
	screenLogin screen = iota
	screenCreateRealm
	screenLoading
	screenPlaying
)

const (
	fieldEmail = iota
	fieldName
	fieldAge
)

type model struct {
	screen screen
	prev   screen // restored when a loading step fails
	svc    *services.Services

	inputs []textinput.Model
	focus  int

	realmType   int
	traitCursor int
	selected    map[string]bool

	user         models.User
	realm        models.Realm
	pres         engine.Presentation
	choiceCursor int
	answer       textinput.Model
	result       *engine.Outcome
	flash        string

	viewport viewport.Model
	gameLog  string
	width    int
	height   int
}

func NewModel(svc *services.Services) model {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.Focus()
	email.CharLimit = 120
	email.Width = 40

	name := textinput.New()
	name.Placeholder = "Display name"
	name.CharLimit = 40
	name.Width = 40

	age := textinput.New()
	age.Placeholder = "child, teen or adult"
	age.CharLimit = 10
	age.Width = 40

	answer := textinput.New()
	answer.Placeholder = "Your answer"
	answer.CharLimit = 40
	answer.Width = 30

	return model{
		screen:   screenLogin,
		svc:      svc,
		inputs:   []textinput.Model{email, name, age},
		selected: map[string]bool{},
		answer:   answer,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

type loggedInMsg struct {
	user     models.User
	realm    models.Realm
	hasRealm bool
}

type realmCreatedMsg struct {
	realm models.Realm
}

type presentedMsg struct {
	pres  engine.Presentation
	realm models.Realm
}

type outcomeMsg struct {
	out engine.Outcome
}

type advancedMsg struct {
	res engine.AdvanceResult
}

type errMsg struct {
	err error
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		switch m.screen {
		case screenLogin:
			return m.updateLogin(msg)
		case screenCreateRealm:
			return m.updateCreateRealm(msg)
		case screenPlaying:
			return m.updatePlaying(msg)
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = m.logWidth()
		m.viewport.Height = max(msg.Height-12, 5)
		m.viewport.SetContent(m.gameLog)
		return m, nil

	case loggedInMsg:
		m.user = msg.user
		m.flash = ""
		if !msg.hasRealm {
			m.screen = screenCreateRealm
			return m, nil
		}
		m.realm = msg.realm
		m.startPlaying()
		m.appendLog(titleStyle.Render("Welcome back, " + m.user.DisplayName + "!"))
		return m, m.present()

	case realmCreatedMsg:
		m.realm = msg.realm
		m.flash = ""
		m.startPlaying()
		m.appendLog(titleStyle.Render(fmt.Sprintf("Your %s realm awakens.", m.realm.RealmType)))
		return m, m.present()

	case presentedMsg:
		m.screen = screenPlaying
		m.pres = msg.pres
		m.realm = msg.realm
		m.choiceCursor = 0
		m.result = nil
		switch m.pres.Kind {
		case engine.KindQuest:
			q := m.pres.Quest
			m.appendLog(questStyle.Render(q.Title) + "\n" + gameStyle.Width(m.logWidth()).Render(q.Description))
		case engine.KindComplete:
			m.appendLog(noticeStyle.Render(m.pres.Notice))
		}
		return m, m.focusAnswer()

	case outcomeMsg:
		m.screen = screenPlaying
		m.flash = ""
		out := msg.out
		switch out.Kind {
		case engine.OutcomeMinigame, engine.OutcomePending:
			m.pres = engine.Presentation{Kind: engine.KindMinigame, Zone: m.pres.Zone, Quest: m.pres.Quest, Prompt: out.Prompt}
			return m, m.focusAnswer()
		}
		m.result = &out
		m.realm = out.Realm
		m.answer.Blur()
		m.appendLog(m.renderOutcome(out))
		return m, nil

	case advancedMsg:
		m.realm = msg.res.Realm
		if msg.res.Advanced {
			m.appendLog(noticeStyle.Render(fmt.Sprintf("You travel on to the %s.", zones.Title(msg.res.To))))
		}
		return m, m.present()

	case errMsg:
		if m.screen == screenLoading {
			m.screen = m.prev
		}
		m.flash = explain(msg.err)
		return m, nil
	}

	return m.updateInputs(msg)
}

func (m model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.screen == screenLogin:
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	case m.screen == screenPlaying && m.wantsAnswer():
		m.answer, cmd = m.answer.Update(msg)
	}
	return m, cmd
}

func (m model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyTab, tea.KeyDown:
		return m, m.setFocus((m.focus + 1) % len(m.inputs))
	case tea.KeyShiftTab, tea.KeyUp:
		return m, m.setFocus((m.focus + len(m.inputs) - 1) % len(m.inputs))
	case tea.KeyEnter:
		if m.focus < fieldAge {
			return m, m.setFocus(m.focus + 1)
		}
		age, err := models.ParseAgeMode(m.inputs[fieldAge].Value())
		if err != nil {
			m.flash = "Age mode must be child, teen or adult."
			return m, nil
		}
		m.loading()
		return m, m.login(m.inputs[fieldEmail].Value(), m.inputs[fieldName].Value(), age)
	}
	return m.updateInputs(msg)
}

func (m *model) setFocus(i int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = i
	return m.inputs[i].Focus()
}

func (m model) updateCreateRealm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	types := models.RealmTypes()
	starters := models.StarterTraits()
	switch msg.String() {
	case "left", "h":
		m.realmType = (m.realmType + len(types) - 1) % len(types)
	case "right", "l":
		m.realmType = (m.realmType + 1) % len(types)
	case "up", "k":
		m.traitCursor = (m.traitCursor + len(starters) - 1) % len(starters)
	case "down", "j":
		m.traitCursor = (m.traitCursor + 1) % len(starters)
	case " ", "space":
		name := starters[m.traitCursor]
		switch {
		case m.selected[name]:
			delete(m.selected, name)
		case len(m.selected) < models.StarterTraitCount:
			m.selected[name] = true
		default:
			m.flash = fmt.Sprintf("You can only pick %d traits.", models.StarterTraitCount)
		}
	case "enter":
		if len(m.selected) != models.StarterTraitCount {
			m.flash = fmt.Sprintf("Pick exactly %d traits.", models.StarterTraitCount)
			return m, nil
		}
		var traits []string
		for _, name := range starters {
			if m.selected[name] {
				traits = append(traits, name)
			}
		}
		m.loading()
		return m, m.createRealm(types[m.realmType], traits)
	}
	return m, nil
}

func (m model) updatePlaying(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.result != nil {
		if msg.Type == tea.KeyEnter {
			m.result = nil
			return m, m.present()
		}
		return m, nil
	}

	switch m.pres.Kind {
	case engine.KindQuest:
		choices := m.pres.Quest.Choices
		switch msg.String() {
		case "up", "k":
			m.choiceCursor = (m.choiceCursor + len(choices) - 1) % len(choices)
		case "down", "j":
			m.choiceCursor = (m.choiceCursor + 1) % len(choices)
		case "enter":
			return m, m.choose(choices[m.choiceCursor])
		default:
			if n := digit(msg.String()); n >= 1 && n <= len(choices) {
				return m, m.choose(choices[n-1])
			}
		}

	case engine.KindMinigame:
		p := m.pres.Prompt
		if p != nil && p.Kind == minigames.KindReflex {
			if msg.Type == tea.KeySpace || msg.String() == " " || msg.Type == tea.KeyEnter {
				action := minigames.ActionStart
				if p.Stage == minigames.StageGo {
					action = minigames.ActionReact
				}
				return m, m.submit(minigames.Input{Action: action})
			}
			return m, nil
		}
		if msg.Type == tea.KeyEnter {
			answer := m.answer.Value()
			m.answer.Reset()
			return m, m.submit(minigames.Input{Answer: answer, Submitted: true})
		}
		return m.updateInputs(msg)

	case engine.KindComplete:
		switch msg.String() {
		case "u":
			if m.pres.CanAdvance {
				return m, m.advance()
			}
		case "enter":
			return m, m.present()
		}
	}
	return m, nil
}

func digit(s string) int {
	if len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
		return int(s[0] - '0')
	}
	return 0
}

func (m *model) loading() {
	m.prev = m.screen
	m.screen = screenLoading
	m.flash = ""
}

func (m *model) startPlaying() {
	m.screen = screenPlaying
	if m.viewport.Width == 0 {
		m.viewport = viewport.New(m.logWidth(), max(m.height-12, 5))
	}
}

func (m *model) appendLog(entry string) {
	if m.gameLog != "" {
		m.gameLog += "\n\n"
	}
	m.gameLog += entry
	m.viewport.SetContent(m.gameLog)
	m.viewport.GotoBottom()
}

func (m model) wantsAnswer() bool {
	p := m.pres.Prompt
	return m.result == nil && m.pres.Kind == engine.KindMinigame && p != nil && p.Kind != minigames.KindReflex
}

func (m *model) focusAnswer() tea.Cmd {
	if m.wantsAnswer() {
		return m.answer.Focus()
	}
	m.answer.Blur()
	return nil
}

func (m model) logWidth() int {
	if m.width == 0 {
		return 60
	}
	return int(float64(m.width) * 0.70)
}

func (m model) login(email, name string, age models.AgeMode) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx := context.Background()
		u, _, err := svc.Accounts.Login(ctx, email, name, age)
		if err != nil {
			return errMsg{err}
		}
		realm, err := svc.Accounts.Realm(ctx, u.ID)
		if errors.Is(err, store.ErrNotFound) {
			return loggedInMsg{user: u}
		}
		if err != nil {
			return errMsg{err}
		}
		return loggedInMsg{user: u, realm: realm, hasRealm: true}
	}
}

func (m model) createRealm(t models.RealmType, traits []string) tea.Cmd {
	svc, userID := m.svc, m.user.ID
	return func() tea.Msg {
		realm, err := svc.Accounts.CreateRealm(context.Background(), userID, t, traits)
		if err != nil {
			return errMsg{err}
		}
		return realmCreatedMsg{realm}
	}
}

func (m model) present() tea.Cmd {
	eng, userID := m.svc.Engine, m.user.ID
	return func() tea.Msg {
		ctx := context.Background()
		p, err := eng.PresentOrAdvance(ctx, userID)
		if err != nil {
			return errMsg{err}
		}
		realm, err := eng.Realm(ctx, userID)
		if err != nil {
			return errMsg{err}
		}
		return presentedMsg{pres: p, realm: realm}
	}
}

func (m model) choose(label string) tea.Cmd {
	eng, userID := m.svc.Engine, m.user.ID
	return func() tea.Msg {
		out, err := eng.SubmitChoice(context.Background(), userID, label)
		if err != nil {
			return errMsg{err}
		}
		return outcomeMsg{out}
	}
}

func (m model) submit(in minigames.Input) tea.Cmd {
	eng, userID := m.svc.Engine, m.user.ID
	return func() tea.Msg {
		out, err := eng.SubmitMinigameInput(context.Background(), userID, in)
		if err != nil {
			return errMsg{err}
		}
		return outcomeMsg{out}
	}
}

func (m model) advance() tea.Cmd {
	eng, userID := m.svc.Engine, m.user.ID
	return func() tea.Msg {
		res, err := eng.Advance(context.Background(), userID)
		if err != nil {
			return errMsg{err}
		}
		return advancedMsg{res}
	}
}

func explain(err error) string {
	if errors.Is(err, models.ErrStarterTraits) {
		return fmt.Sprintf("Pick exactly %d traits.", models.StarterTraitCount)
	}
	return engine.Explain(err)
}

func effectSummary(effects []quests.Effect) string {
	var parts []string
	for _, e := range effects {
		if _, ok := e.(quests.NoOp); ok {
			continue
		}
		parts = append(parts, quests.Describe(e))
	}
	return strings.Join(parts, ", ")
}

// Run starts the terminal UI on svc.
func Run(svc *services.Services) error {
	p := tea.NewProgram(NewModel(svc), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Start loads the configuration, sends logs to a file next to the saves
// and runs the UI.
func Start() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	level, _ := cfg.LogLevel()
	logPath := filepath.Join(filepath.Dir(cfg.Store.File), "ripple.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return err
	}
	f, err := tea.LogToFile(logPath, "ripple")
	if err != nil {
		return err
	}
	defer f.Close()
	log := logging.Setup(f, level, cfg.Log.Format)

	svc, err := services.New(cfg, log)
	if err != nil {
		return err
	}
	defer svc.Close()
	return Run(svc)
}
