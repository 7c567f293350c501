package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"cocreate/pkg/config"
	"cocreate/pkg/models"
	"cocreate/pkg/store"
	"cocreate/pkg/telemetry"
	"cocreate/pkg/utils"
	"cocreate/pkg/validation"
)

// RegisterMessages registers HTTP handlers for message-related endpoints.
func RegisterMessages(r *mux.Router) {
	r.HandleFunc("/messages", createMessage).Methods(http.MethodPost)
	r.HandleFunc("/messages/trouble/{id:[0-9]+}", listMessages).Methods(http.MethodGet)
}

func createMessage(w http.ResponseWriter, r *http.Request) {
	var req models.NewMessage
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validation.ValidateMessage(req, config.GetRuntime().MaxMessageLen); err != nil {
		writeError(w, "create_message", err)
		return
	}
	id := caller(r)
	m, err := store.CreateMessage(models.Message{
		TroubleID:       req.TroubleID,
		SenderUserID:    id.UserID,
		SenderName:      id.Name,
		Content:         strings.TrimRight(req.Content, " \t\r\n"),
		ParentMessageID: req.ParentMessageID,
	})
	if err != nil {
		writeError(w, "create_message", err)
		return
	}
	telemetry.MessagesCreated.Inc()
	_ = utils.JSONWrite(w, http.StatusCreated, m)
}

func listMessages(w http.ResponseWriter, r *http.Request) {
	tid, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if _, err := store.GetTrouble(tid); err != nil {
		writeError(w, "list_messages", err)
		return
	}
	msgs, err := store.ListMessages(tid)
	if err != nil {
		writeError(w, "list_messages", err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, models.MessageList{Messages: msgs, Total: len(msgs)})
}
