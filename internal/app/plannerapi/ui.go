package plannerapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Morgan5/digital-planner/internal/app/agenda"
	"github.com/Morgan5/digital-planner/internal/app/identity"
	"github.com/Morgan5/digital-planner/internal/app/navigation"
	"github.com/Morgan5/digital-planner/internal/app/notes"
	"github.com/Morgan5/digital-planner/internal/app/store"
	"github.com/Morgan5/digital-planner/internal/app/todo"
	"github.com/Morgan5/digital-planner/services/frontend"
	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func (h *Handler) mountUI(r chi.Router) {
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/app", http.StatusSeeOther)
	})
	r.Get("/login", h.handleLoginPage)
	r.Post("/login", h.handleLoginForm)
	r.Get("/logout", h.handleLogoutPage)
	r.Post("/logout", h.handleLogoutPage)

	r.Group(func(ui chi.Router) {
		ui.Use(h.uiAuthMiddleware)
		ui.Get("/app", h.handleApp)
		ui.Post("/app/events", h.handleAppAddEvent)
		ui.Post("/app/events/{eventID}/delete", h.handleAppDeleteEvent)
		ui.Post("/app/tasks", h.handleAppAddTask)
		ui.Post("/app/tasks/{taskID}/toggle", h.handleAppToggleTask)
		ui.Post("/app/tasks/{taskID}/delete", h.handleAppDeleteTask)
		ui.Post("/app/notes", h.handleAppAddNote)
		ui.Post("/app/notes/{noteID}", h.handleAppUpdateNote)
		ui.Post("/app/notes/{noteID}/delete", h.handleAppDeleteNote)
	})
}

// uiAuthMiddleware sends visitors without a live session back to the login page.
func (h *Handler) uiAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := h.cookieSession(r)
		if !ok {
			clearSessionCookie(w)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r.WithContext(contextWithSession(r.Context(), session)))
	})
}

func (h *Handler) cookieSession(r *http.Request) (*identity.Session, bool) {
	token := sessionToken(r)
	if token == "" {
		return nil, false
	}
	session, err := h.Identity.Authenticate(token)
	if err != nil {
		return nil, false
	}
	return session, true
}

func setSessionCookie(w http.ResponseWriter, res identity.LoginResult) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    res.Token,
		Path:     "/",
		Expires:  res.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.cookieSession(r); ok {
		http.Redirect(w, r, "/app", http.StatusSeeOther)
		return
	}
	templ.Handler(frontend.LoginPage(frontend.LoginForm{})).ServeHTTP(w, r)
}

func (h *Handler) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	if err := h.allowLogin(); err != nil {
		h.renderLogin(w, r, http.StatusTooManyRequests, username, err)
		return
	}
	res, err := h.Identity.Login(username, r.PostFormValue("password"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, identity.ErrInvalidCredentials) {
			status = http.StatusUnauthorized
		}
		h.renderLogin(w, r, status, username, err)
		return
	}
	h.Logger.Info("login", zap.String("username", res.User.Username), zap.String("session_id", res.Session.ID))
	setSessionCookie(w, res)
	http.Redirect(w, r, "/app", http.StatusSeeOther)
}

func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, status int, username string, err error) {
	form := frontend.LoginForm{Username: username, Error: err.Error()}
	templ.Handler(frontend.LoginPage(form), templ.WithStatus(status)).ServeHTTP(w, r)
}

func (h *Handler) handleLogoutPage(w http.ResponseWriter, r *http.Request) {
	if session, ok := h.cookieSession(r); ok {
		h.Identity.Logout(session.ID)
		h.Logger.Info("logout", zap.String("username", session.User.Username), zap.String("session_id", session.ID))
	}
	clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// page collects the data every section needs from the session workspace.
func (h *Handler) page(session *identity.Session) frontend.Page {
	ws := session.Workspace
	progress := ws.Todo.Progress()
	return frontend.Page{
		User:      session.User,
		Active:    ws.Navigator.Active(),
		Dashboard: frontend.DashboardData{Summary: ws.Summary()},
		Agenda:    frontend.AgendaData{Events: ws.Agenda.List()},
		Todo:      frontend.TodoData{Progress: progress},
		Notes:     frontend.NotesData{Notes: ws.Notes.List(), Stats: ws.Notes.Stats()},
		Guides:    frontend.GuidesData{Guides: h.Guides.List()},
	}
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, p frontend.Page, status int) {
	templ.Handler(frontend.WorkspacePage(p), templ.WithStatus(status)).ServeHTTP(w, r)
}

// renderFailure re-renders section with the error of a rejected form.
func (h *Handler) renderFailure(w http.ResponseWriter, r *http.Request, section navigation.Section, err error, fill func(*frontend.Page)) {
	session := sessionFromContext(r.Context())
	session.Workspace.Navigator.SetActive(string(section))
	p := h.page(session)
	p.Error = err.Error()

	status := http.StatusInternalServerError
	var verr *store.ValidationError
	switch {
	case errors.As(err, &verr):
		status = http.StatusBadRequest
		p.Fields = verr.Fields
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	default:
		h.Logger.Error("form submission failed", zap.Error(err))
	}
	if fill != nil {
		fill(&p)
	}
	h.renderPage(w, r, p, status)
}

func redirectToSection(w http.ResponseWriter, r *http.Request, section navigation.Section) {
	http.Redirect(w, r, "/app?section="+string(section), http.StatusSeeOther)
}

func (h *Handler) handleApp(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())
	q := r.URL.Query()
	if q.Has("section") {
		session.Workspace.Navigator.SetActive(q.Get("section"))
	}
	p := h.page(session)

	if id := strings.TrimSpace(q.Get("edit")); id != "" && p.Active == navigation.Notes {
		if note, err := session.Workspace.Notes.Get(id); err == nil {
			p.Notes.Editing = &note
			p.Notes.Draft = notes.Draft{Title: note.Title, Content: note.Content}
		}
	}
	if id := strings.TrimSpace(q.Get("guide")); id != "" && p.Active == navigation.Guides {
		if guide, err := h.Guides.Get(id); err == nil {
			p.Guides.Selected = &guide
		}
	}
	h.renderPage(w, r, p, http.StatusOK)
}

func (h *Handler) handleAppAddEvent(w http.ResponseWriter, r *http.Request) {
	draft := agenda.Draft{
		Title:       r.PostFormValue("title"),
		StartDate:   r.PostFormValue("start_date"),
		EndDate:     r.PostFormValue("end_date"),
		StartTime:   r.PostFormValue("start_time"),
		EndTime:     r.PostFormValue("end_time"),
		Description: r.PostFormValue("description"),
	}
	if _, err := sessionFromContext(r.Context()).Workspace.Agenda.Add(draft); err != nil {
		h.renderFailure(w, r, navigation.Agenda, err, func(p *frontend.Page) { p.Agenda.Draft = draft })
		return
	}
	h.Metrics.Mutation("event", "add")
	redirectToSection(w, r, navigation.Agenda)
}

func (h *Handler) handleAppDeleteEvent(w http.ResponseWriter, r *http.Request) {
	if sessionFromContext(r.Context()).Workspace.Agenda.Remove(chi.URLParam(r, "eventID")) {
		h.Metrics.Mutation("event", "remove")
	}
	redirectToSection(w, r, navigation.Agenda)
}

func (h *Handler) handleAppAddTask(w http.ResponseWriter, r *http.Request) {
	draft := todo.Draft{Text: r.PostFormValue("text")}
	if _, err := sessionFromContext(r.Context()).Workspace.Todo.Add(draft); err != nil {
		h.renderFailure(w, r, navigation.Todo, err, func(p *frontend.Page) { p.Todo.Draft = draft })
		return
	}
	h.Metrics.Mutation("task", "add")
	redirectToSection(w, r, navigation.Todo)
}

func (h *Handler) handleAppToggleTask(w http.ResponseWriter, r *http.Request) {
	if _, err := sessionFromContext(r.Context()).Workspace.Todo.Toggle(chi.URLParam(r, "taskID")); err != nil {
		h.renderFailure(w, r, navigation.Todo, err, nil)
		return
	}
	h.Metrics.Mutation("task", "toggle")
	redirectToSection(w, r, navigation.Todo)
}

func (h *Handler) handleAppDeleteTask(w http.ResponseWriter, r *http.Request) {
	if sessionFromContext(r.Context()).Workspace.Todo.Remove(chi.URLParam(r, "taskID")) {
		h.Metrics.Mutation("task", "remove")
	}
	redirectToSection(w, r, navigation.Todo)
}

func (h *Handler) handleAppAddNote(w http.ResponseWriter, r *http.Request) {
	draft := notes.Draft{Title: r.PostFormValue("title"), Content: r.PostFormValue("content")}
	if _, err := sessionFromContext(r.Context()).Workspace.Notes.Add(draft); err != nil {
		h.renderFailure(w, r, navigation.Notes, err, func(p *frontend.Page) { p.Notes.Draft = draft })
		return
	}
	h.Metrics.Mutation("note", "add")
	redirectToSection(w, r, navigation.Notes)
}

func (h *Handler) handleAppUpdateNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "noteID")
	draft := notes.Draft{Title: r.PostFormValue("title"), Content: r.PostFormValue("content")}
	svc := sessionFromContext(r.Context()).Workspace.Notes
	if _, err := svc.Update(id, draft); err != nil {
		h.renderFailure(w, r, navigation.Notes, err, func(p *frontend.Page) {
			if note, getErr := svc.Get(id); getErr == nil {
				p.Notes.Editing = &note
				p.Notes.Draft = draft
			}
		})
		return
	}
	h.Metrics.Mutation("note", "update")
	redirectToSection(w, r, navigation.Notes)
}

func (h *Handler) handleAppDeleteNote(w http.ResponseWriter, r *http.Request) {
	if sessionFromContext(r.Context()).Workspace.Notes.Remove(chi.URLParam(r, "noteID")) {
		h.Metrics.Mutation("note", "remove")
	}
	redirectToSection(w, r, navigation.Notes)
}
