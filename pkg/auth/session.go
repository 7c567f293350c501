package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"cocreate/pkg/config"
	"cocreate/pkg/logger"
	"cocreate/pkg/models"
	"cocreate/pkg/store"
	"cocreate/pkg/utils"
)

// now is replaced in tests.
var now = time.Now

// IssueSession creates and stores a new bearer session for u.
func IssueSession(u models.User) (models.Session, error) {
	t := now().UTC()
	s := models.Session{
		Token:     uuid.NewString(),
		UserID:    u.ID,
		UserName:  u.Name,
		CreatedAt: t,
		ExpiresAt: t.Add(config.GetRuntime().SessionTTL),
	}
	if err := store.SaveSession(s); err != nil {
		return models.Session{}, fmt.Errorf("save session: %w", err)
	}
	return s, nil
}

// TokenResponse renders s the way login and registration return it.
func TokenResponse(s models.Session) models.TokenResponse {
	return models.TokenResponse{
		AccessToken: s.Token,
		TokenType:   "bearer",
		UserID:      s.UserID,
		UserName:    s.UserName,
	}
}

// RequireSession rejects requests without a valid, unexpired bearer token
// and attaches the caller Identity to the request context.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := BearerToken(r)
		if token == "" {
			utils.JSONError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		s, err := store.GetSession(token, now())
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				logger.Error("session_lookup_failed", "error", err)
				utils.JSONError(w, http.StatusInternalServerError, "session lookup failed")
				return
			}
			logger.Warn("request_unauthorized", "path", r.URL.Path, "remote", r.RemoteAddr)
			utils.JSONError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		ctx := WithIdentity(r.Context(), Identity{UserID: s.UserID, Name: s.UserName, Token: s.Token})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
