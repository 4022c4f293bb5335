package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/goliatone/go-formaction/internal/admin"
	"github.com/goliatone/go-formaction/internal/view"
	"github.com/goliatone/go-formaction/pkg/decode"
	"github.com/goliatone/go-formaction/pkg/formstate"
)

const (
	cacheKeyAdminsHTML = "admins:html"
	cacheKeyAdminsJSON = "admins:json"

	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeJSON = "application/json"
)

type adminList struct {
	Admins []admin.Admin `json:"admins"`
}

func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) GetLogin(w http.ResponseWriter, r *http.Request) {
	if wantsJSON(r) {
		writeState(w, formstate.DefaultState())
		return
	}
	s.renderLogin(w, r, formstate.DefaultState(), nil)
}

func (s *Server) PostLogin(w http.ResponseWriter, r *http.Request) {
	fields, err := decode.FromRequest(r)
	if err != nil {
		s.badRequest(w, err)
		return
	}

	state, err := s.actions.Login.Submit(r.Context(), formstate.DefaultState(), fields)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if wantsJSON(r) {
		writeState(w, state)
		return
	}
	s.renderLogin(w, r, state, fields)
}

func (s *Server) GetAdmins(w http.ResponseWriter, r *http.Request) {
	key, contentType := cacheKeyAdminsHTML, contentTypeHTML
	if wantsJSON(r) {
		key, contentType = cacheKeyAdminsJSON, contentTypeJSON
	}

	if cached, ok := s.cache.Get(key); ok {
		if body, ok := cached.([]byte); ok {
			write(w, http.StatusOK, contentType, body)
			return
		}
	}

	// Stamp before listing: a create committed after this point makes the
	// page built below stale, and SetIfFresh then refuses to cache it.
	stamp := s.cache.Stamp(s.cfg.Tags.Admins)

	var body []byte
	if contentType == contentTypeJSON {
		admins, err := s.store.List(r.Context())
		if err != nil {
			s.internalError(w, r, err)
			return
		}
		body, err = json.Marshal(adminList{Admins: admins})
		if err != nil {
			s.internalError(w, r, err)
			return
		}
	} else {
		page, err := s.adminsPage(r, formstate.DefaultState(), nil)
		if err != nil {
			s.internalError(w, r, err)
			return
		}
		body = []byte(page)
	}

	s.cache.SetIfFresh(key, body, stamp, s.cfg.Tags.Admins)
	write(w, http.StatusOK, contentType, body)
}

func (s *Server) PostAdmins(w http.ResponseWriter, r *http.Request) {
	fields, err := decode.FromRequest(r)
	if err != nil {
		s.badRequest(w, err)
		return
	}

	state, err := s.actions.Create.Submit(r.Context(), formstate.DefaultState(), fields)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if wantsJSON(r) {
		writeState(w, state)
		return
	}

	page, err := s.adminsPage(r, state, fields)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	write(w, statusFor(state), contentTypeHTML, []byte(page))
}

func (s *Server) renderLogin(w http.ResponseWriter, r *http.Request, state formstate.State, fields decode.Fields) {
	form := view.NewForm(s.actions.Login.Schema(), state, fields)
	form.Action = "/login"
	form.Submit = s.tr.GetMessage("login_submit", 0, nil)

	page, err := s.view.Render("login", view.Page{
		Lang:  s.tr.Language(),
		Title: s.tr.GetMessage("login_title", 0, nil),
		Form:  form,
	})
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	write(w, statusFor(state), contentTypeHTML, []byte(page))
}

func (s *Server) adminsPage(r *http.Request, state formstate.State, fields decode.Fields) (string, error) {
	admins, err := s.store.List(r.Context())
	if err != nil {
		return "", err
	}

	form := view.NewForm(s.actions.Create.Schema(), state, fields)
	form.Action = "/admins"
	form.Submit = s.tr.GetMessage("create_admin_submit", 0, nil)

	return s.view.Render("admins", view.Page{
		Lang:    s.tr.Language(),
		Title:   s.tr.GetMessage("admins_title", 0, nil),
		Summary: s.tr.GetMessage("admin_count", len(admins), map[string]interface{}{"Count": len(admins)}),
		Admins:  admins,
		Form:    form,
	})
}

func (s *Server) tooManyRequests(w http.ResponseWriter, r *http.Request) {
	msg := s.tr.GetMessage("too_many_requests", 0, nil)
	if wantsJSON(r) {
		writeJSON(w, http.StatusTooManyRequests, formstate.FailState(formstate.Errors{formstate.FormLevelKey: msg}))
		return
	}
	http.Error(w, msg, http.StatusTooManyRequests)
}

func (s *Server) badRequest(w http.ResponseWriter, err error) {
	s.logger.Warn("unreadable submission", "err", err)
	http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// statusFor maps a state to its HTTP status: rejected submissions are 422.
func statusFor(state formstate.State) int {
	if state.Tag() == formstate.TagFail {
		return http.StatusUnprocessableEntity
	}
	return http.StatusOK
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), contentTypeJSON)
}

func writeState(w http.ResponseWriter, state formstate.State) {
	writeJSON(w, statusFor(state), state)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	write(w, status, contentTypeJSON, body)
}

func write(w http.ResponseWriter, status int, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
