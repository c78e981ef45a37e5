package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tatianab/ripple-realms/internal/engine"
	"github.com/tatianab/ripple-realms/internal/minigames"
	"github.com/tatianab/ripple-realms/internal/models"
	"github.com/tatianab/ripple-realms/internal/zones"
)

var (
	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#5F5F87")).
			Bold(true).
			PaddingLeft(1)

	gameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	questStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87D7FF")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87D787"))

	failureStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#D78787"))

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#D7AF5F")).
			Italic(true)

	flashStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F5F")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	stateStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(2).
			Foreground(lipgloss.Color("#AAAAAA"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true).
			Underline(true)
)

func (m model) View() string {
	var s string

	switch m.screen {
	case screenLogin:
		labels := []string{"Email", "Display name", "Age mode"}
		var b strings.Builder
		b.WriteString(titleStyle.Render("Welcome to Ripple Realms!") + "\n\n")
		for i, in := range m.inputs {
			fmt.Fprintf(&b, "%s\n%s\n\n", labels[i], in.View())
		}
		b.WriteString(helpStyle.Render("tab to move between fields, enter to continue, esc to quit"))
		s = b.String()

	case screenCreateRealm:
		s = m.viewCreateRealm()

	case screenLoading:
		s = "\n  Consulting the realm... please wait.\n"

	case screenPlaying:
		body := lipgloss.JoinHorizontal(lipgloss.Top,
			m.viewport.View(),
			m.renderState(),
		)
		s = lipgloss.JoinVertical(lipgloss.Left,
			body,
			"\n"+m.viewAction(),
			"\n"+helpStyle.Render(m.help()),
		)
	}

	if m.flash != "" {
		s += "\n\n" + flashStyle.Render(m.flash)
	}
	return "\n" + s + "\n"
}

func (m model) viewCreateRealm() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Shape your realm, "+m.user.DisplayName) + "\n\n")

	b.WriteString("Realm type:  ")
	for i, t := range models.RealmTypes() {
		if i == m.realmType {
			b.WriteString(cursorStyle.Render(string(t)) + " ")
		} else {
			b.WriteString(" " + string(t) + "  ")
		}
	}
	fmt.Fprintf(&b, "\n\nPick %d starting traits:\n", models.StarterTraitCount)
	for i, name := range models.StarterTraits() {
		box := "[ ]"
		if m.selected[name] {
			box = "[x]"
		}
		line := fmt.Sprintf("%s %s", box, name)
		if i == m.traitCursor {
			line = cursorStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n" + helpStyle.Render("left/right realm type, up/down and space for traits, enter to create"))
	return b.String()
}

func (m model) viewAction() string {
	if m.result != nil {
		return noticeStyle.Render("Press enter to continue.")
	}
	switch m.pres.Kind {
	case engine.KindQuest:
		var b strings.Builder
		for i, label := range m.pres.Quest.Choices {
			line := fmt.Sprintf("%d. %s", i+1, label)
			if i == m.choiceCursor {
				line = cursorStyle.Render(line)
			}
			b.WriteString(line + "\n")
		}
		return b.String()

	case engine.KindMinigame:
		p := m.pres.Prompt
		if p == nil {
			return ""
		}
		if p.Kind == minigames.KindReflex {
			if p.Stage == minigames.StageGo {
				return questStyle.Render("NOW! Press space!")
			}
			return "The runes are waiting. Press space to begin, then again when they flash."
		}
		return fmt.Sprintf("Unscramble: %s\n%s", questStyle.Render(strings.ToUpper(p.Scrambled)), m.answer.View())

	case engine.KindComplete:
		if m.pres.CanAdvance {
			return noticeStyle.Render(fmt.Sprintf("The way to the %s is open. Press u to travel on.", zones.Title(m.pres.NextZone)))
		}
		return noticeStyle.Render(m.pres.Notice)
	}
	return ""
}

func (m model) help() string {
	switch {
	case m.result != nil:
		return "enter: continue, esc: quit"
	case m.pres.Kind == engine.KindQuest:
		return "up/down or 1-9 to pick, enter to choose, esc: quit"
	case m.pres.Kind == engine.KindComplete:
		return "u: unlock next zone, esc: quit"
	}
	return "esc: quit"
}

func (m model) renderOutcome(out engine.Outcome) string {
	var b strings.Builder
	if out.Prompt != nil && out.Prompt.Feedback != "" {
		b.WriteString(out.Prompt.Feedback + "\n")
	}
	style := successStyle
	if out.Kind == engine.OutcomeFailure {
		style = failureStyle
	}
	b.WriteString(style.Width(m.logWidth()).Render(out.Message))
	if summary := effectSummary(out.Effects); summary != "" {
		b.WriteString("\n" + helpStyle.Render("Gained: "+summary))
	}
	return b.String()
}

func (m model) renderState() string {
	r := m.realm

	var stops []string
	for _, st := range zones.Map(r.Zone()) {
		switch {
		case st.Current:
			stops = append(stops, st.Emoji+" "+strings.ToUpper(st.Name))
		case st.Reached:
			stops = append(stops, st.Emoji+" "+st.Name)
		default:
			stops = append(stops, "   "+st.Name)
		}
	}
	mapView := titleStyle.Render("MAP") + "\n" + strings.Join(stops, "\n") + "\n\n"

	traits := titleStyle.Render("TRAITS") + "\n"
	if list := r.TraitList(); len(list) > 0 {
		traits += strings.Join(list, ", ") + "\n\n"
	} else {
		traits += "(none)\n\n"
	}

	companions := titleStyle.Render("COMPANIONS") + "\n"
	if len(r.Companions()) == 0 {
		companions += "(none yet)\n"
	}
	for _, c := range r.Companions() {
		companions += fmt.Sprintf("- %s (%s)\n", c.Name, c.Type)
	}
	companions += "\n"

	done := titleStyle.Render("QUESTS") + "\n" + fmt.Sprintf("%d completed\n", len(r.CompletedQuests()))

	content := fmt.Sprintf("%s realm\n\n", r.RealmType) + mapView + traits + companions + done
	width := max(int(float64(m.width)*0.27), 24)
	return stateStyle.Width(width).Height(m.viewport.Height).Render(content)
}
