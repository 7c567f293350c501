package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"cocreate/pkg/auth"
	"cocreate/pkg/logger"
	"cocreate/pkg/models"
	"cocreate/pkg/store"
	"cocreate/pkg/telemetry"
	"cocreate/pkg/utils"
	"cocreate/pkg/validation"
)

// RegisterAuth registers login and registration on the public router and
// the account endpoints on the session-protected one.
func RegisterAuth(public, private *mux.Router) {
	public.HandleFunc("/auth/login", login).Methods(http.MethodPost)
	public.HandleFunc("/auth/register", register).Methods(http.MethodPost)

	private.HandleFunc("/auth/logout", logout).Methods(http.MethodPost)
	private.HandleFunc("/auth/me", me).Methods(http.MethodGet)
	private.HandleFunc("/users/me", updateMe).Methods(http.MethodPut)
}

// login accepts credentials as query parameters or as a JSON body.
func login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	q := r.URL.Query()
	if q.Get("username") != "" || q.Get("password") != "" {
		req.Username, req.Password = q.Get("username"), q.Get("password")
	} else if r.ContentLength != 0 {
		if !decodeJSON(w, r, &req) {
			return
		}
	}
	if err := validation.ValidateLogin(req); err != nil {
		telemetry.Logins.WithLabelValues("invalid").Inc()
		writeError(w, "login", err)
		return
	}

	u, err := store.GetUserByName(strings.TrimSpace(req.Username))
	if err == nil {
		err = auth.CheckPassword(u.PasswordHash, req.Password)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, auth.ErrBadCredentials) {
			telemetry.Logins.WithLabelValues("bad_credentials").Inc()
			logger.Audit.Warn("login_failed", zap.String("username", req.Username), zap.String("remote", r.RemoteAddr))
			utils.JSONError(w, http.StatusUnauthorized, auth.ErrBadCredentials.Error())
			return
		}
		writeError(w, "login", err)
		return
	}
	s, err := auth.IssueSession(u)
	if err != nil {
		writeError(w, "login", err)
		return
	}
	telemetry.Logins.WithLabelValues("ok").Inc()
	logger.Audit.Info("login", zap.Int64("user_id", u.ID), zap.String("remote", r.RemoteAddr))
	_ = utils.JSONWrite(w, http.StatusOK, auth.TokenResponse(s))
}

func register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := validation.ValidateRegister(req); err != nil {
		writeError(w, "register", err)
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, "register", err)
		return
	}
	u, err := store.CreateUser(models.User{Name: req.Name, PasswordHash: hash, Categories: req.Categories})
	if err != nil {
		writeError(w, "register", err)
		return
	}
	s, err := auth.IssueSession(u)
	if err != nil {
		writeError(w, "register", err)
		return
	}
	telemetry.Registrations.Inc()
	logger.Audit.Info("register", zap.Int64("user_id", u.ID), zap.String("remote", r.RemoteAddr))
	_ = utils.JSONWrite(w, http.StatusCreated, auth.TokenResponse(s))
}

func logout(w http.ResponseWriter, r *http.Request) {
	id := caller(r)
	if err := store.DeleteSession(id.Token); err != nil {
		writeError(w, "logout", err)
		return
	}
	logger.Audit.Info("logout", zap.Int64("user_id", id.UserID))
	w.WriteHeader(http.StatusNoContent)
}

func me(w http.ResponseWriter, r *http.Request) {
	u, err := store.GetUser(caller(r).UserID)
	if err != nil {
		writeError(w, "me", err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, u.Public())
}

func updateMe(w http.ResponseWriter, r *http.Request) {
	var req models.UserUpdate
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := validation.ValidateUserUpdate(req); err != nil {
		writeError(w, "update_user", err)
		return
	}
	id := caller(r)
	u, err := store.GetUser(id.UserID)
	if err != nil {
		writeError(w, "update_user", err)
		return
	}
	if req.Name != "" {
		u.Name = req.Name
	}
	if req.Password != "" {
		if u.PasswordHash, err = auth.HashPassword(req.Password); err != nil {
			writeError(w, "update_user", err)
			return
		}
	}
	if u, err = store.UpdateUser(u); err != nil {
		writeError(w, "update_user", err)
		return
	}
	if req.Name != "" {
		if err := store.RenameSessions(u.ID, u.Name); err != nil {
			logger.Warn("rename_sessions_failed", "user_id", u.ID, "error", err)
		}
	}
	_ = utils.JSONWrite(w, http.StatusOK, u.Public())
}
