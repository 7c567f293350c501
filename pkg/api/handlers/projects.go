package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"cocreate/pkg/config"
	"cocreate/pkg/logger"
	"cocreate/pkg/models"
	"cocreate/pkg/store"
	"cocreate/pkg/telemetry"
	"cocreate/pkg/utils"
	"cocreate/pkg/validation"
)

// RegisterProjects registers project, favorite and project-category routes.
func RegisterProjects(r *mux.Router) {
	r.HandleFunc("/project-categories", listProjectCategories).Methods(http.MethodGet)

	r.HandleFunc("/projects", createProject).Methods(http.MethodPost)
	r.HandleFunc("/projects/recent", listRecentProjects).Methods(http.MethodGet)
	r.HandleFunc("/projects/favorites", listFavoriteProjects).Methods(http.MethodGet)
	r.HandleFunc("/projects/user", listOwnProjects).Methods(http.MethodGet)
	r.HandleFunc("/projects/{id:[0-9]+}", getProject).Methods(http.MethodGet)
	r.HandleFunc("/projects/{id:[0-9]+}/favorite", addFavorite).Methods(http.MethodPost)
	r.HandleFunc("/projects/{id:[0-9]+}/favorite", removeFavorite).Methods(http.MethodDelete)
}

func listProjectCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := store.ListCategories(store.ProjectCategories)
	if err != nil {
		writeError(w, "list_project_categories", err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, cats)
}

// markFavorites sets IsFavorite relative to the caller.
func markFavorites(userID int64, ps []models.Project) error {
	for i := range ps {
		fav, err := store.IsFavorite(userID, ps[i].ID)
		if err != nil {
			return err
		}
		ps[i].IsFavorite = fav
	}
	return nil
}

func listRecentProjects(w http.ResponseWriter, r *http.Request) {
	since := time.Now().UTC().Add(-config.GetRuntime().RecentWindow)
	ps, err := store.ListRecentProjects(since, queryLimit(r))
	if err == nil {
		err = markFavorites(caller(r).UserID, ps)
	}
	if err != nil {
		writeError(w, "list_recent_projects", err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, ps)
}

func listFavoriteProjects(w http.ResponseWriter, r *http.Request) {
	ps, err := store.ListFavorites(caller(r).UserID, queryLimit(r))
	if err != nil {
		writeError(w, "list_favorite_projects", err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, ps)
}

func listOwnProjects(w http.ResponseWriter, r *http.Request) {
	id := caller(r)
	ps, err := store.ListProjectsByOwner(id.UserID)
	if err == nil {
		err = markFavorites(id.UserID, ps)
	}
	if err != nil {
		writeError(w, "list_own_projects", err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, ps)
}

func getProject(w http.ResponseWriter, r *http.Request) {
	pid, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	p, err := store.GetProject(pid)
	if err == nil {
		p.IsFavorite, err = store.IsFavorite(caller(r).UserID, pid)
	}
	if err != nil {
		writeError(w, "get_project", err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, p)
}

func createProject(w http.ResponseWriter, r *http.Request) {
	var req models.NewProject
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if err := validation.ValidateProject(req); err != nil {
		writeError(w, "create_project", err)
		return
	}
	cat, err := store.GetCategory(store.ProjectCategories, req.CategoryID)
	if err != nil {
		writeError(w, "create_project", err)
		return
	}
	id := caller(r)
	p, err := store.CreateProject(models.Project{
		Title:        req.Title,
		Summary:      req.Summary,
		Description:  req.Description,
		OwnerID:      id.UserID,
		OwnerName:    id.Name,
		CategoryID:   cat.ID,
		CategoryName: cat.Name,
	})
	if err != nil {
		writeError(w, "create_project", err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusCreated, models.CreatedProject{ProjectID: p.ID})
}

func addFavorite(w http.ResponseWriter, r *http.Request) {
	setFavorite(w, r, true)
}

func removeFavorite(w http.ResponseWriter, r *http.Request) {
	setFavorite(w, r, false)
}

func setFavorite(w http.ResponseWriter, r *http.Request, favorite bool) {
	pid, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	id := caller(r)
	if err := store.SetFavorite(id.UserID, pid, favorite, time.Now()); err != nil {
		writeError(w, "set_favorite", err)
		return
	}
	action := "remove"
	if favorite {
		action = "add"
	}
	telemetry.FavoriteToggles.WithLabelValues(action).Inc()
	logger.Debug("favorite_toggled", "user_id", id.UserID, "project_id", pid, "favorite", favorite)
	_ = utils.JSONWrite(w, http.StatusOK, models.FavoriteResult{ProjectID: pid, IsFavorite: favorite})
}
