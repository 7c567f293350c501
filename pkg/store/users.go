package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"cocreate/pkg/logger"
	"cocreate/pkg/models"
)

const (
	userPrefix     = "user:"
	userNamePrefix = "username:"
)

func userNameKey(name string) []byte {
	return []byte(userNamePrefix + strings.ToLower(name))
}

// CreateUser stores u under a freshly allocated id. Names are unique
// case-insensitively; a duplicate returns ErrConflict.
func CreateUser(u models.User) (models.User, error) {
	if db == nil {
		return models.User{}, errNotOpen
	}
	writeMu.Lock()
	defer writeMu.Unlock()

	taken, err := has(userNameKey(u.Name))
	if err != nil {
		return models.User{}, err
	}
	if taken {
		return models.User{}, fmt.Errorf("user %q: %w", u.Name, ErrConflict)
	}
	b := db.NewBatch()
	defer b.Close()
	id, err := nextID(b, "user")
	if err != nil {
		return models.User{}, err
	}
	u.ID = id
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if err := setJSON(b, idKey(userPrefix, id), u); err != nil {
		return models.User{}, err
	}
	if err := b.Set(userNameKey(u.Name), idKey("", id), nil); err != nil {
		return models.User{}, err
	}
	if err := commit(b); err != nil {
		logger.Error("create_user_failed", "name", u.Name, "error", err)
		return models.User{}, err
	}
	logger.Info("user_created", "user_id", id)
	return u, nil
}

func GetUser(id int64) (models.User, error) {
	var u models.User
	if err := getJSON(idKey(userPrefix, id), &u); err != nil {
		return models.User{}, fmt.Errorf("user %d: %w", id, err)
	}
	return u, nil
}

func GetUserByName(name string) (models.User, error) {
	if db == nil {
		return models.User{}, errNotOpen
	}
	v, closer, err := db.Get(userNameKey(name))
	if err != nil {
		return models.User{}, fmt.Errorf("user %q: %w", name, ErrNotFound)
	}
	ref := string(v)
	closer.Close()
	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil {
		return models.User{}, fmt.Errorf("corrupt username index for %q: %w", name, err)
	}
	return GetUser(id)
}

// UpdateUser rewrites an existing user, moving the name index when the
// name changed.
func UpdateUser(u models.User) (models.User, error) {
	if db == nil {
		return models.User{}, errNotOpen
	}
	writeMu.Lock()
	defer writeMu.Unlock()

	prev, err := GetUser(u.ID)
	if err != nil {
		return models.User{}, err
	}
	b := db.NewBatch()
	defer b.Close()
	if !strings.EqualFold(prev.Name, u.Name) {
		taken, err := has(userNameKey(u.Name))
		if err != nil {
			return models.User{}, err
		}
		if taken {
			return models.User{}, fmt.Errorf("user %q: %w", u.Name, ErrConflict)
		}
		if err := b.Delete(userNameKey(prev.Name), nil); err != nil {
			return models.User{}, err
		}
		if err := b.Set(userNameKey(u.Name), idKey("", u.ID), nil); err != nil {
			return models.User{}, err
		}
	}
	u.CreatedAt = prev.CreatedAt
	if err := setJSON(b, idKey(userPrefix, u.ID), u); err != nil {
		return models.User{}, err
	}
	if err := commit(b); err != nil {
		return models.User{}, err
	}
	logger.Info("user_updated", "user_id", u.ID)
	return u, nil
}
