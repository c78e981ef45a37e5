package web

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
	"github.com/tatianab/ripple-realms/internal/engine"
	"github.com/tatianab/ripple-realms/internal/minigames"
	"github.com/tatianab/ripple-realms/internal/models"
	"github.com/tatianab/ripple-realms/internal/quests"
	"github.com/tatianab/ripple-realms/internal/zones"
)

const styles = `body{font-family:system-ui,sans-serif;background:#1e1e1e;color:#eee;max-width:960px;margin:2rem auto;padding:0 1rem}
main{display:flex;gap:2rem}section{flex:3}aside{flex:1;border-left:1px solid #3c3c3c;padding-left:1.5rem;color:#aaa}
h1{color:#ffa500}h2{color:#87d7ff}.flash{color:#ff5f5f;font-weight:bold}.success{color:#87d787}.failure{color:#d78787}
.notice{color:#d7af5f;font-style:italic}button{margin:.25rem 0;padding:.4rem .8rem}.current{color:#ffa500;font-weight:bold}
.scrambled{font-size:1.6rem;letter-spacing:.3rem}`

func esc(s string) string {
	return templ.EscapeString(s)
}

// realmTitle names the page after the realm's zone.
func realmTitle(r models.Realm) string {
	if r.Zone() == "" {
		return "Your realm"
	}
	return "The " + zones.Title(r.Zone())
}

// page wraps body in the shared layout.
func page(title, flash string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, "<!DOCTYPE html><html><head><meta charset=\"utf-8\"><title>%s · Ripple Realms</title><style>%s</style></head><body>",
			esc(title), styles)
		fmt.Fprintf(&b, "<h1>%s</h1>", esc(title))
		if flash != "" {
			fmt.Fprintf(&b, "<p class=\"flash\">%s</p>", esc(flash))
		}
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</body></html>")
		return err
	})
}

func loginView() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<form method="post" action="/login">`)
		b.WriteString(`<p><label>Email <input type="email" name="email" required></label></p>`)
		b.WriteString(`<p><label>Display name <input name="display_name" required></label></p>`)
		b.WriteString(`<p><label>Age mode <select name="age_mode">`)
		for _, m := range models.AgeModes() {
			fmt.Fprintf(&b, `<option value="%s">%s</option>`, m, m)
		}
		b.WriteString(`</select></label></p><button type="submit">Enter</button></form>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func createRealmView(name string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, "<p>Welcome, %s. Shape your realm.</p>", esc(name))
		b.WriteString(`<form method="post" action="/realm"><fieldset><legend>Realm type</legend>`)
		for i, t := range models.RealmTypes() {
			checked := ""
			if i == 0 {
				checked = " checked"
			}
			fmt.Fprintf(&b, `<label><input type="radio" name="realm_type" value="%s"%s> %s</label> `, t, checked, t)
		}
		fmt.Fprintf(&b, `</fieldset><fieldset><legend>Pick %d traits</legend>`, models.StarterTraitCount)
		for _, trait := range models.StarterTraits() {
			fmt.Fprintf(&b, `<label><input type="checkbox" name="traits" value="%s"> %s</label><br>`, trait, trait)
		}
		b.WriteString(`</fieldset><button type="submit">Create realm</button></form>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// realmPanel is the sidebar: map, traits, companions and progress.
func realmPanel(r models.Realm) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, "<aside><h3>%s realm</h3><ol>", esc(string(r.RealmType)))
		for _, st := range zones.Map(r.Zone()) {
			switch {
			case st.Current:
				fmt.Fprintf(&b, `<li class="current">%s %s</li>`, st.Emoji, esc(zones.Title(st.Name)))
			case st.Reached:
				fmt.Fprintf(&b, "<li>%s %s</li>", st.Emoji, esc(zones.Title(st.Name)))
			default:
				fmt.Fprintf(&b, "<li>%s</li>", esc(zones.Title(st.Name)))
			}
		}
		b.WriteString("</ol><h4>Traits</h4><p>")
		b.WriteString(esc(strings.Join(r.TraitList(), ", ")))
		b.WriteString("</p><h4>Companions</h4><ul>")
		if len(r.Companions()) == 0 {
			b.WriteString("<li>none yet</li>")
		}
		for _, c := range r.Companions() {
			fmt.Fprintf(&b, "<li>%s (%s)</li>", esc(c.Name), esc(c.Type))
		}
		fmt.Fprintf(&b, "</ul><p>%d quests completed</p>", len(r.CompletedQuests()))
		b.WriteString(`<p><a href="/chronicle.pdf">Download chronicle</a></p>`)
		b.WriteString(`<form method="post" action="/logout"><button type="submit">Sign out</button></form></aside>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// withPanel lays content out next to the realm panel.
func withPanel(r models.Realm, content templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, "<main><section>"); err != nil {
			return err
		}
		if err := content.Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "</section>"); err != nil {
			return err
		}
		if err := realmPanel(r).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</main>")
		return err
	})
}

func dashboardView() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<p>Your realm awaits.</p><form method="post" action="/quest"><button type="submit">Continue your journey</button></form>`)
		return err
	})
}

func presentationView(p engine.Presentation) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		if q := p.Quest; q != nil {
			fmt.Fprintf(&b, "<h2>%s</h2><p>%s</p>", esc(q.Title), esc(q.Description))
		}
		switch p.Kind {
		case engine.KindQuest:
			b.WriteString(`<form method="post" action="/choice">`)
			for _, label := range p.Quest.Choices {
				fmt.Fprintf(&b, `<button type="submit" name="choice" value="%s">%s</button><br>`, esc(label), esc(label))
			}
			b.WriteString("</form>")
		case engine.KindMinigame:
			writePrompt(&b, p.Prompt)
		case engine.KindComplete:
			fmt.Fprintf(&b, `<p class="notice">%s</p>`, esc(p.Notice))
			if p.CanAdvance {
				fmt.Fprintf(&b, `<form method="post" action="/advance"><button type="submit">Travel to the %s</button></form>`, esc(zones.Title(p.NextZone)))
			}
		}
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func writePrompt(b *strings.Builder, p *minigames.Prompt) {
	if p == nil {
		return
	}
	if p.Feedback != "" {
		fmt.Fprintf(b, "<p>%s</p>", esc(p.Feedback))
	}
	if p.Kind == minigames.KindReflex {
		action, label := minigames.ActionStart, "Begin the trial"
		if p.Stage == minigames.StageGo {
			action, label = minigames.ActionReact, "NOW!"
		}
		fmt.Fprintf(b, `<form method="post" action="/minigame"><button type="submit" name="action" value="%s">%s</button></form>`, action, label)
		return
	}
	fmt.Fprintf(b, `<p>Unscramble: <span class="scrambled">%s</span></p>`, esc(strings.ToUpper(p.Scrambled)))
	b.WriteString(`<form method="post" action="/minigame"><input name="answer" autofocus autocomplete="off"> <button type="submit">Answer</button></form>`)
}

func outcomeView(out engine.Outcome) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		if out.Prompt != nil && out.Prompt.Feedback != "" {
			fmt.Fprintf(&b, "<p>%s</p>", esc(out.Prompt.Feedback))
		}
		class := "success"
		if out.Kind == engine.OutcomeFailure {
			class = "failure"
		}
		fmt.Fprintf(&b, `<p class="%s">%s</p>`, class, esc(out.Message))
		var gained []string
		for _, e := range out.Effects {
			if _, ok := e.(quests.NoOp); !ok {
				gained = append(gained, quests.Describe(e))
			}
		}
		if len(gained) > 0 {
			fmt.Fprintf(&b, "<p>Gained: %s</p>", esc(strings.Join(gained, ", ")))
		}
		b.WriteString(`<form method="post" action="/quest"><button type="submit">Continue</button></form>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}
