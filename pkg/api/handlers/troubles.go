package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"cocreate/pkg/models"
	"cocreate/pkg/store"
	"cocreate/pkg/utils"
	"cocreate/pkg/validation"
)

// RegisterTroubles registers trouble, trouble-category and participant routes.
func RegisterTroubles(r *mux.Router) {
	r.HandleFunc("/trouble-categories", listTroubleCategories).Methods(http.MethodGet)

	r.HandleFunc("/troubles", listTroubles).Methods(http.MethodGet)
	r.HandleFunc("/troubles", createTrouble).Methods(http.MethodPost)
	r.HandleFunc("/troubles/simple", createTroubleSimple).Methods(http.MethodPost)
	r.HandleFunc("/troubles/{id:[0-9]+}", getTrouble).Methods(http.MethodGet)
	r.HandleFunc("/troubles/{id:[0-9]+}/status", updateTroubleStatus).Methods(http.MethodPut)
	r.HandleFunc("/troubles/{id:[0-9]+}/participants", listParticipants).Methods(http.MethodGet)
}

func listTroubleCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := store.ListCategories(store.TroubleCategories)
	if err != nil {
		writeError(w, "list_trouble_categories", err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, cats)
}

func listTroubles(w http.ResponseWriter, r *http.Request) {
	pid, err := queryInt64(r, "project_id")
	if err != nil || pid <= 0 {
		utils.JSONError(w, http.StatusBadRequest, "project_id is required")
		return
	}
	if _, err := store.GetProject(pid); err != nil {
		writeError(w, "list_troubles", err)
		return
	}
	ts, err := store.ListTroubles(pid)
	if err != nil {
		writeError(w, "list_troubles", err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, models.TroubleList{Troubles: ts, Total: len(ts)})
}

func createTrouble(w http.ResponseWriter, r *http.Request) {
	var req models.NewTrouble
	if !decodeJSON(w, r, &req) {
		return
	}
	saveTrouble(w, r, req)
}

// createTroubleSimple takes the same fields as query parameters.
func createTroubleSimple(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var req models.NewTrouble
	req.ProjectID, _ = strconv.ParseInt(q.Get("project_id"), 10, 64)
	req.CategoryID, _ = strconv.ParseInt(q.Get("category_id"), 10, 64)
	req.Description = q.Get("description")
	req.Status = q.Get("status")
	saveTrouble(w, r, req)
}

func saveTrouble(w http.ResponseWriter, r *http.Request, req models.NewTrouble) {
	req.Description = strings.TrimSpace(req.Description)
	if err := validation.ValidateTrouble(req); err != nil {
		writeError(w, "create_trouble", err)
		return
	}
	if _, err := store.GetCategory(store.TroubleCategories, req.CategoryID); err != nil {
		writeError(w, "create_trouble", err)
		return
	}
	id := caller(r)
	t, err := store.CreateTrouble(models.Trouble{
		ProjectID:     req.ProjectID,
		CategoryID:    req.CategoryID,
		Description:   req.Description,
		Status:        req.Status,
		CreatorUserID: id.UserID,
		CreatorName:   id.Name,
	})
	if err != nil {
		writeError(w, "create_trouble", err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusCreated, t)
}

func getTrouble(w http.ResponseWriter, r *http.Request) {
	tid, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	t, err := store.GetTrouble(tid)
	if err != nil {
		writeError(w, "get_trouble", err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, t)
}

// updateTroubleStatus is allowed for the trouble creator and the project owner.
func updateTroubleStatus(w http.ResponseWriter, r *http.Request) {
	tid, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req models.StatusUpdate
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validation.ValidateStatus(req); err != nil {
		writeError(w, "update_trouble_status", err)
		return
	}
	t, err := store.GetTrouble(tid)
	if err != nil {
		writeError(w, "update_trouble_status", err)
		return
	}
	p, err := store.GetProject(t.ProjectID)
	if err != nil {
		writeError(w, "update_trouble_status", err)
		return
	}
	uid := caller(r).UserID
	if uid != t.CreatorUserID && uid != p.OwnerID {
		utils.JSONError(w, http.StatusForbidden, "only the trouble creator or project owner may change its status")
		return
	}
	t, err = store.UpdateTroubleStatus(tid, req.Status)
	if err != nil {
		writeError(w, "update_trouble_status", err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, t)
}

// listParticipants returns the project owner followed by everyone who took
// part in the trouble, in order of first appearance.
func listParticipants(w http.ResponseWriter, r *http.Request) {
	tid, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	t, err := store.GetTrouble(tid)
	if err != nil {
		writeError(w, "list_participants", err)
		return
	}
	p, err := store.GetProject(t.ProjectID)
	if err != nil {
		writeError(w, "list_participants", err)
		return
	}
	msgs, err := store.ListMessages(tid)
	if err != nil {
		writeError(w, "list_participants", err)
		return
	}

	seen := map[int64]bool{}
	out := []models.Participant{}
	add := func(uid int64, name, role string) {
		if uid == 0 || seen[uid] {
			return
		}
		seen[uid] = true
		out = append(out, models.Participant{UserID: uid, Name: name, Role: role, Avatar: avatarOf(name)})
	}
	add(p.OwnerID, p.OwnerName, models.RoleOwner)
	add(t.CreatorUserID, t.CreatorName, models.RoleSupporter)
	for _, m := range msgs {
		add(m.SenderUserID, m.SenderName, models.RoleSupporter)
	}
	_ = utils.JSONWrite(w, http.StatusOK, out)
}
