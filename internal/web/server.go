// Package web serves the game over HTTP. A cookie carries the signed-in
// user id; there is no authentication beyond that.
package web

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/tatianab/ripple-realms/internal/accounts"
	"github.com/tatianab/ripple-realms/internal/engine"
	"github.com/tatianab/ripple-realms/internal/minigames"
	"github.com/tatianab/ripple-realms/internal/models"
	"github.com/tatianab/ripple-realms/internal/services"
	"github.com/tatianab/ripple-realms/internal/store"
)

const (
	userCookie = "ripple_user"
	nameCookie = "ripple_name"
)

type Server struct {
	svc *services.Services
	log *slog.Logger
	mux *http.ServeMux
}

func New(svc *services.Services, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{svc: svc, log: log, mux: http.NewServeMux()}
	s.mux.HandleFunc("GET /{$}", s.index)
	s.mux.HandleFunc("POST /login", s.login)
	s.mux.HandleFunc("POST /logout", s.logout)
	s.mux.HandleFunc("POST /realm", s.createRealm)
	s.mux.HandleFunc("POST /quest", s.quest)
	s.mux.HandleFunc("POST /choice", s.choice)
	s.mux.HandleFunc("POST /minigame", s.minigame)
	s.mux.HandleFunc("POST /advance", s.advance)
	s.mux.HandleFunc("GET /chronicle.pdf", s.chronicle)
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logRequests(s.log, s.mux).ServeHTTP(w, r)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, title, flash string, body templ.Component) {
	templ.Handler(page(title, flash, body), templ.WithStatus(status)).ServeHTTP(w, r)
}

// session returns the signed-in user id and display name.
func session(r *http.Request) (userID, name string, ok bool) {
	c, err := r.Cookie(userCookie)
	if err != nil || c.Value == "" {
		return "", "", false
	}
	if n, err := r.Cookie(nameCookie); err == nil {
		name = n.Value
	}
	return c.Value, name, true
}

func setCookie(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	userID, name, ok := session(r)
	if !ok {
		s.render(w, r, http.StatusOK, "Ripple Realms", "", loginView())
		return
	}
	realm, err := s.svc.Engine.Realm(r.Context(), userID)
	if errors.Is(err, engine.ErrRealmNotFound) {
		s.render(w, r, http.StatusOK, "Create your realm", "", createRealmView(name))
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, realmTitle(realm), "", withPanel(realm, dashboardView()))
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	age, err := models.ParseAgeMode(r.FormValue("age_mode"))
	if err != nil {
		s.render(w, r, http.StatusBadRequest, "Ripple Realms", err.Error(), loginView())
		return
	}
	u, _, err := s.svc.Accounts.Login(r.Context(), r.FormValue("email"), r.FormValue("display_name"), age)
	if errors.Is(err, accounts.ErrMissingEmail) || errors.Is(err, accounts.ErrMissingName) {
		s.render(w, r, http.StatusBadRequest, "Ripple Realms", err.Error(), loginView())
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	week := int((7 * 24 * time.Hour).Seconds())
	setCookie(w, userCookie, u.ID, week)
	setCookie(w, nameCookie, u.DisplayName, week)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	setCookie(w, userCookie, "", -1)
	setCookie(w, nameCookie, "", -1)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) createRealm(w http.ResponseWriter, r *http.Request) {
	userID, name, ok := session(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	realmType, err := models.ParseRealmType(r.FormValue("realm_type"))
	if err != nil {
		s.render(w, r, http.StatusBadRequest, "Create your realm", err.Error(), createRealmView(name))
		return
	}
	_, err = s.svc.Accounts.CreateRealm(r.Context(), userID, realmType, r.Form["traits"])
	switch {
	case errors.Is(err, models.ErrStarterTraits):
		s.render(w, r, http.StatusBadRequest, "Create your realm", "Pick exactly three traits.", createRealmView(name))
		return
	case errors.Is(err, accounts.ErrRealmExists):
	case err != nil:
		s.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// quest shows the next quest, the challenge in progress or the zone
// completion notice.
func (s *Server) quest(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := session(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.present(w, r, userID, http.StatusOK, "")
}

func (s *Server) present(w http.ResponseWriter, r *http.Request, userID string, status int, flash string) {
	p, err := s.svc.Engine.PresentOrAdvance(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	realm, err := s.svc.Engine.Realm(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, status, realmTitle(realm), flash, withPanel(realm, presentationView(p)))
}

func (s *Server) choice(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := session(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	out, err := s.svc.Engine.SubmitChoice(r.Context(), userID, r.FormValue("choice"))
	if err != nil {
		s.retry(w, r, userID, err)
		return
	}
	s.showOutcome(w, r, userID, out)
}

func (s *Server) minigame(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := session(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	in := minigames.Input{Action: minigames.Action(r.FormValue("action"))}
	if r.Form.Has("answer") {
		in.Answer = r.FormValue("answer")
		in.Submitted = true
	}
	out, err := s.svc.Engine.SubmitMinigameInput(r.Context(), userID, in)
	if err != nil {
		s.retry(w, r, userID, err)
		return
	}
	s.showOutcome(w, r, userID, out)
}

func (s *Server) showOutcome(w http.ResponseWriter, r *http.Request, userID string, out engine.Outcome) {
	switch out.Kind {
	case engine.OutcomeMinigame, engine.OutcomePending:
		s.present(w, r, userID, http.StatusOK, "")
		return
	}
	s.render(w, r, http.StatusOK, realmTitle(out.Realm), "", withPanel(out.Realm, outcomeView(out)))
}

func (s *Server) advance(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := session(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if _, err := s.svc.Engine.Advance(r.Context(), userID); err != nil {
		s.retry(w, r, userID, err)
		return
	}
	s.present(w, r, userID, http.StatusOK, "")
}

// retry re-renders the current step with the error as a flash message.
// Persistence failures are reported as such.
func (s *Server) retry(w http.ResponseWriter, r *http.Request, userID string, err error) {
	status := http.StatusBadRequest
	if errors.Is(err, engine.ErrPersistence) {
		status = http.StatusServiceUnavailable
	}
	if errors.Is(err, engine.ErrRealmNotFound) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.present(w, r, userID, status, engine.Explain(err))
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.log.Error("request failed", "path", r.URL.Path, "err", err)
	status := http.StatusInternalServerError
	if errors.Is(err, engine.ErrPersistence) || errors.Is(err, store.ErrStaleRealm) {
		status = http.StatusServiceUnavailable
	}
	s.render(w, r, status, "Something went wrong", engine.Explain(err), templ.NopComponent)
}
