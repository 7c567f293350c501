package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"cocreate/pkg/auth"
	"cocreate/pkg/config"
	"cocreate/pkg/logger"
	"cocreate/pkg/store"
	"cocreate/pkg/utils"
	"cocreate/pkg/validation"
)

// decodeJSON reads a size-limited JSON body into v. It writes the error
// response itself and reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, config.GetRuntime().MaxBody)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			utils.JSONError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}

// pathID parses a positive int64 mux variable.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		utils.JSONError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s: %q", name, raw))
		return 0, false
	}
	return id, true
}

func queryInt64(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}

// queryLimit returns the "limit" query parameter clamped to [1, 100],
// falling back to the configured default.
func queryLimit(r *http.Request) int {
	n, err := queryInt64(r, "limit")
	if err != nil || n <= 0 {
		return config.GetRuntime().DefaultLimit
	}
	if n > 100 {
		n = 100
	}
	return int(n)
}

func caller(r *http.Request) auth.Identity {
	id, _ := auth.IdentityFromContext(r.Context())
	return id
}

// writeError maps store and validation errors to status codes.
func writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case validation.IsValidation(err):
		utils.JSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		utils.JSONError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrConflict):
		utils.JSONError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrParentMismatch):
		utils.JSONError(w, http.StatusBadRequest, err.Error())
	default:
		logger.Error(op+"_failed", "error", err)
		utils.JSONError(w, http.StatusInternalServerError, "internal error")
	}
}

func avatarOf(name string) string {
	for _, r := range name {
		return strings.ToUpper(string(r))
	}
	return "?"
}
