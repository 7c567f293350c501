package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"cocreate/pkg/api/handlers"
	"cocreate/pkg/auth"
	"cocreate/pkg/telemetry"
	"cocreate/pkg/utils"
)

// Prefix is the path prefix every API route is mounted under.
const Prefix = "/api/v1"

// Handler returns the API router. Login and registration are public;
// everything else requires a session token.
func Handler() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.JSONError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.JSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	v1 := r.PathPrefix(Prefix).Subrouter()
	v1.Use(telemetry.Middleware)

	private := v1.NewRoute().Subrouter()
	private.Use(auth.RequireSession)

	handlers.RegisterAuth(v1, private)
	handlers.RegisterProjects(private)
	handlers.RegisterTroubles(private)
	handlers.RegisterMessages(private)

	v1.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		_ = utils.JSONWrite(w, http.StatusOK, map[string]string{"message": "cocreate api", "version": "v1"})
	}).Methods(http.MethodGet)
	return r
}
