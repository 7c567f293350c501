package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"cocreate/pkg/logger"
	"cocreate/pkg/models"
)

const (
	// msg:<trouble>:<message> -> models.Message
	messagePrefix = "msg:"
	// msgid:<message> -> trouble id
	messageIDPrefix = "msgid:"
)

// ErrParentMismatch is returned when a reply names a parent message that
// does not exist or belongs to another trouble.
var ErrParentMismatch = errors.New("parent message is not part of this trouble")

func messageKey(troubleID, messageID int64) []byte {
	return []byte(fmt.Sprintf("%s%020d:%020d", messagePrefix, troubleID, messageID))
}

func troubleMessagesPrefix(troubleID int64) []byte {
	return []byte(fmt.Sprintf("%s%020d:", messagePrefix, troubleID))
}

// CreateMessage appends m to its trouble. Ids are allocated monotonically so
// key order equals insertion order.
func CreateMessage(m models.Message) (models.Message, error) {
	if db == nil {
		return models.Message{}, errNotOpen
	}
	writeMu.Lock()
	defer writeMu.Unlock()

	exists, err := has(idKey(troublePrefix, m.TroubleID))
	if err != nil {
		return models.Message{}, err
	}
	if !exists {
		return models.Message{}, fmt.Errorf("trouble %d: %w", m.TroubleID, ErrNotFound)
	}
	if m.ParentMessageID != 0 {
		parent, err := GetMessage(m.ParentMessageID)
		if errors.Is(err, ErrNotFound) {
			return models.Message{}, fmt.Errorf("parent %d: %w", m.ParentMessageID, ErrParentMismatch)
		}
		if err != nil {
			return models.Message{}, fmt.Errorf("parent: %w", err)
		}
		if parent.TroubleID != m.TroubleID {
			return models.Message{}, ErrParentMismatch
		}
	}

	b := db.NewBatch()
	defer b.Close()
	id, err := nextID(b, "message")
	if err != nil {
		return models.Message{}, err
	}
	m.ID = id
	m.Placeholder = false
	if m.SentAt.IsZero() {
		m.SentAt = time.Now().UTC()
	}
	if err := setJSON(b, messageKey(m.TroubleID, id), m); err != nil {
		return models.Message{}, err
	}
	if err := b.Set(idKey(messageIDPrefix, id), []byte(strconv.FormatInt(m.TroubleID, 10)), nil); err != nil {
		return models.Message{}, err
	}
	if err := commit(b); err != nil {
		logger.Error("save_message_failed", "trouble_id", m.TroubleID, "error", err)
		return models.Message{}, err
	}
	logger.Info("message_saved", "trouble_id", m.TroubleID, "message_id", id)
	return m, nil
}

// GetMessage looks a message up by id alone.
func GetMessage(id int64) (models.Message, error) {
	if db == nil {
		return models.Message{}, errNotOpen
	}
	v, closer, err := db.Get(idKey(messageIDPrefix, id))
	if err != nil {
		return models.Message{}, fmt.Errorf("message %d: %w", id, ErrNotFound)
	}
	tid, perr := strconv.ParseInt(string(v), 10, 64)
	closer.Close()
	if perr != nil {
		return models.Message{}, fmt.Errorf("corrupt message index %d: %w", id, perr)
	}
	var m models.Message
	if err := getJSON(messageKey(tid, id), &m); err != nil {
		return models.Message{}, fmt.Errorf("message %d: %w", id, err)
	}
	return m, nil
}

// ListMessages returns all messages for a trouble in insertion order.
func ListMessages(troubleID int64) ([]models.Message, error) {
	out := []models.Message{}
	err := scanPrefix(troubleMessagesPrefix(troubleID), func(k, v []byte) error {
		var m models.Message
		if err := json.Unmarshal(v, &m); err != nil {
			logger.Error("listmessages_invalid_message_json", "key", string(k), "error", err)
			return fmt.Errorf("invalid message JSON: %w", err)
		}
		out = append(out, m)
		return nil
	})
	return out, err
}

func CountMessages(troubleID int64) (int, error) {
	return countPrefix(troubleMessagesPrefix(troubleID))
}
