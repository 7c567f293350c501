package store

import (
	"encoding/json"
	"fmt"
	"time"

	"cocreate/pkg/logger"
	"cocreate/pkg/models"
)

const sessionPrefix = "session:"

func SaveSession(s models.Session) error {
	if db == nil {
		return errNotOpen
	}
	b := db.NewBatch()
	defer b.Close()
	if err := setJSON(b, []byte(sessionPrefix+s.Token), s); err != nil {
		return err
	}
	return commit(b)
}

// GetSession returns the session for token. Expired sessions are reported
// as ErrNotFound.
func GetSession(token string, now time.Time) (models.Session, error) {
	var s models.Session
	if err := getJSON([]byte(sessionPrefix+token), &s); err != nil {
		return models.Session{}, err
	}
	if s.Expired(now) {
		return models.Session{}, fmt.Errorf("session expired: %w", ErrNotFound)
	}
	return s, nil
}

func DeleteSession(token string) error {
	if db == nil {
		return errNotOpen
	}
	b := db.NewBatch()
	defer b.Close()
	if err := b.Delete([]byte(sessionPrefix+token), nil); err != nil {
		return err
	}
	return commit(b)
}

// RenameSessions updates the cached user name of every session of userID.
func RenameSessions(userID int64, name string) error {
	if db == nil {
		return errNotOpen
	}
	b := db.NewBatch()
	defer b.Close()
	err := scanPrefix([]byte(sessionPrefix), func(k, v []byte) error {
		var s models.Session
		if json.Unmarshal(v, &s) != nil || s.UserID != userID {
			return nil
		}
		s.UserName = name
		return setJSON(b, append([]byte(nil), k...), s)
	})
	if err != nil {
		return err
	}
	return commit(b)
}

// PurgeExpiredSessions deletes sessions that expired before now and returns
// how many were (or, with dryRun, would be) removed.
func PurgeExpiredSessions(now time.Time, dryRun bool) (int, error) {
	if db == nil {
		return 0, errNotOpen
	}
	b := db.NewBatch()
	defer b.Close()
	n := 0
	err := scanPrefix([]byte(sessionPrefix), func(k, v []byte) error {
		var s models.Session
		if err := json.Unmarshal(v, &s); err != nil {
			logger.Warn("purge_session_invalid_json", "key", string(k), "error", err)
			return nil
		}
		if !s.Expired(now) {
			return nil
		}
		n++
		if dryRun {
			return nil
		}
		return b.Delete(append([]byte(nil), k...), nil)
	})
	if err != nil {
		return 0, err
	}
	if dryRun || n == 0 {
		return n, nil
	}
	if err := commit(b); err != nil {
		return 0, err
	}
	return n, nil
}
