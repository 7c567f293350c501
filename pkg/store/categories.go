package store

import (
	"encoding/json"
	"fmt"

	"cocreate/pkg/models"
)

// CategoryKind separates the project and trouble category namespaces.
type CategoryKind string

const (
	ProjectCategories CategoryKind = "pcat"
	TroubleCategories CategoryKind = "tcat"
)

func categoryPrefix(kind CategoryKind) string {
	return string(kind) + ":"
}

// PutCategory stores c under its own id, replacing any previous value.
func PutCategory(kind CategoryKind, c models.Category) error {
	if db == nil {
		return errNotOpen
	}
	if c.ID <= 0 {
		return fmt.Errorf("category id must be positive, got %d", c.ID)
	}
	b := db.NewBatch()
	defer b.Close()
	if err := setJSON(b, idKey(categoryPrefix(kind), c.ID), c); err != nil {
		return err
	}
	return commit(b)
}

func GetCategory(kind CategoryKind, id int64) (models.Category, error) {
	var c models.Category
	if err := getJSON(idKey(categoryPrefix(kind), id), &c); err != nil {
		return models.Category{}, fmt.Errorf("category %s/%d: %w", kind, id, err)
	}
	return c, nil
}

// ListCategories returns the categories of kind ordered by id.
func ListCategories(kind CategoryKind) ([]models.Category, error) {
	out := []models.Category{}
	err := scanPrefix([]byte(categoryPrefix(kind)), func(k, v []byte) error {
		var c models.Category
		if err := json.Unmarshal(v, &c); err != nil {
			return fmt.Errorf("decode %s: %w", k, err)
		}
		out = append(out, c)
		return nil
	})
	return out, err
}
