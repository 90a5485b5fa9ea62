package plannerapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Morgan5/digital-planner/internal/app/agenda"
	"github.com/Morgan5/digital-planner/internal/app/identity"
	"github.com/Morgan5/digital-planner/internal/app/navigation"
	"github.com/Morgan5/digital-planner/internal/app/notes"
	"github.com/Morgan5/digital-planner/internal/app/todo"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sectionRequest struct {
	Section string `json:"section"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := h.allowLogin(); err != nil {
		h.writeError(w, http.StatusTooManyRequests, err.Error())
		return
	}
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.Identity.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			h.writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.Logger.Info("login", zap.String("username", resp.User.Username), zap.String("session_id", resp.Session.ID))
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())
	h.Identity.Logout(session.ID)
	clearSessionCookie(w)
	h.Logger.Info("logout", zap.String("username", session.User.Username), zap.String("session_id", session.ID))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())
	h.writeJSON(w, http.StatusOK, map[string]any{
		"user":       session.User,
		"section":    session.Workspace.Navigator.Active(),
		"expires_at": session.ExpiresAt,
	})
}

func (h *Handler) handleGetSection(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())
	h.writeJSON(w, http.StatusOK, map[string]any{"section": session.Workspace.Navigator.Active()})
}

func (h *Handler) handleSetSection(w http.ResponseWriter, r *http.Request) {
	var req sectionRequest
	if !h.decode(w, r, &req) {
		return
	}
	session := sessionFromContext(r.Context())
	active := session.Workspace.Navigator.SetActive(req.Section)
	h.writeJSON(w, http.StatusOK, map[string]any{
		"section": active,
		"entry":   navigation.Lookup(active),
		"tips":    navigation.Tips(active),
	})
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())
	h.writeJSON(w, http.StatusOK, map[string]any{
		"user":    session.User,
		"summary": session.Workspace.Summary(),
		"cards":   navigation.Cards(),
	})
}

func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	ws := sessionFromContext(r.Context()).Workspace
	rawFrom := strings.TrimSpace(r.URL.Query().Get("from"))
	rawTo := strings.TrimSpace(r.URL.Query().Get("to"))
	if rawFrom == "" && rawTo == "" {
		h.writeJSON(w, http.StatusOK, map[string]any{"events": ws.Agenda.List()})
		return
	}
	if rawFrom == "" || rawTo == "" {
		h.writeError(w, http.StatusBadRequest, "from and to must be given together")
		return
	}
	from, err := time.Parse(agenda.DateLayout, rawFrom)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "from must be YYYY-MM-DD")
		return
	}
	to, err := time.Parse(agenda.DateLayout, rawTo)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "to must be YYYY-MM-DD")
		return
	}
	if to.Before(from) {
		from, to = to, from
	}
	// to names a whole day.
	to = to.Add(24*time.Hour - time.Nanosecond)
	h.writeJSON(w, http.StatusOK, map[string]any{"events": ws.Agenda.Between(from, to)})
}

func (h *Handler) handleAddEvent(w http.ResponseWriter, r *http.Request) {
	var draft agenda.Draft
	if !h.decode(w, r, &draft) {
		return
	}
	event, err := sessionFromContext(r.Context()).Workspace.Agenda.Add(draft)
	if err != nil {
		h.writeStoreError(w, err, "event not found")
		return
	}
	h.Metrics.Mutation("event", "add")
	h.writeJSON(w, http.StatusCreated, event)
}

func (h *Handler) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	if sessionFromContext(r.Context()).Workspace.Agenda.Remove(chi.URLParam(r, "eventID")) {
		h.Metrics.Mutation("event", "remove")
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListTasks(w http.ResponseWriter, r *http.Request) {
	svc := sessionFromContext(r.Context()).Workspace.Todo
	progress := svc.Progress()
	h.writeJSON(w, http.StatusOK, map[string]any{
		"tasks":     svc.List(),
		"pending":   progress.Pending,
		"completed": progress.Completed,
		"total":     progress.Total,
		"ratio":     progress.Ratio,
	})
}

func (h *Handler) handleAddTask(w http.ResponseWriter, r *http.Request) {
	var draft todo.Draft
	if !h.decode(w, r, &draft) {
		return
	}
	task, err := sessionFromContext(r.Context()).Workspace.Todo.Add(draft)
	if err != nil {
		h.writeStoreError(w, err, "task not found")
		return
	}
	h.Metrics.Mutation("task", "add")
	h.writeJSON(w, http.StatusCreated, task)
}

func (h *Handler) handleToggleTask(w http.ResponseWriter, r *http.Request) {
	task, err := sessionFromContext(r.Context()).Workspace.Todo.Toggle(chi.URLParam(r, "taskID"))
	if err != nil {
		h.writeStoreError(w, err, "task not found")
		return
	}
	h.Metrics.Mutation("task", "toggle")
	h.writeJSON(w, http.StatusOK, task)
}

func (h *Handler) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if sessionFromContext(r.Context()).Workspace.Todo.Remove(chi.URLParam(r, "taskID")) {
		h.Metrics.Mutation("task", "remove")
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListNotes(w http.ResponseWriter, r *http.Request) {
	svc := sessionFromContext(r.Context()).Workspace.Notes
	h.writeJSON(w, http.StatusOK, map[string]any{
		"notes": svc.List(),
		"stats": svc.Stats(),
	})
}

func (h *Handler) handleAddNote(w http.ResponseWriter, r *http.Request) {
	var draft notes.Draft
	if !h.decode(w, r, &draft) {
		return
	}
	note, err := sessionFromContext(r.Context()).Workspace.Notes.Add(draft)
	if err != nil {
		h.writeStoreError(w, err, "note not found")
		return
	}
	h.Metrics.Mutation("note", "add")
	h.writeJSON(w, http.StatusCreated, note)
}

func (h *Handler) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	var draft notes.Draft
	if !h.decode(w, r, &draft) {
		return
	}
	note, err := sessionFromContext(r.Context()).Workspace.Notes.Update(chi.URLParam(r, "noteID"), draft)
	if err != nil {
		h.writeStoreError(w, err, "note not found")
		return
	}
	h.Metrics.Mutation("note", "update")
	h.writeJSON(w, http.StatusOK, note)
}

func (h *Handler) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	if sessionFromContext(r.Context()).Workspace.Notes.Remove(chi.URLParam(r, "noteID")) {
		h.Metrics.Mutation("note", "remove")
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListGuides(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{"guides": h.Guides.List()})
}

func (h *Handler) handleGetGuide(w http.ResponseWriter, r *http.Request) {
	guide, err := h.Guides.Get(chi.URLParam(r, "guideID"))
	if err != nil {
		h.writeStoreError(w, err, "guide not found")
		return
	}
	h.writeJSON(w, http.StatusOK, guide)
}
