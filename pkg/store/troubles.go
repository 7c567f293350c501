package store

import (
	"fmt"
	"strconv"
	"time"

	"cocreate/pkg/logger"
	"cocreate/pkg/models"
)

const (
	troublePrefix = "trouble:"
	// idx:project_trouble:<project>:<trouble> -> ""
	projectTroublePrefix = "idx:project_trouble:"
)

func projectTroubleKey(projectID, troubleID int64) []byte {
	return []byte(fmt.Sprintf("%s%020d:%020d", projectTroublePrefix, projectID, troubleID))
}

// CreateTrouble stores t under a freshly allocated id and indexes it under
// its project. The project must exist.
func CreateTrouble(t models.Trouble) (models.Trouble, error) {
	if db == nil {
		return models.Trouble{}, errNotOpen
	}
	writeMu.Lock()
	defer writeMu.Unlock()

	var p models.Project
	if err := getJSON(idKey(projectPrefix, t.ProjectID), &p); err != nil {
		return models.Trouble{}, fmt.Errorf("project %d: %w", t.ProjectID, err)
	}
	b := db.NewBatch()
	defer b.Close()
	id, err := nextID(b, "trouble")
	if err != nil {
		return models.Trouble{}, err
	}
	t.ID = id
	t.ProjectTitle = p.Title
	t.Comments = 0
	if t.Status == "" {
		t.Status = models.TroubleUnresolved
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	if err := setJSON(b, idKey(troublePrefix, id), t); err != nil {
		return models.Trouble{}, err
	}
	if err := b.Set(projectTroubleKey(t.ProjectID, id), nil, nil); err != nil {
		return models.Trouble{}, err
	}
	if err := commit(b); err != nil {
		logger.Error("create_trouble_failed", "project_id", t.ProjectID, "error", err)
		return models.Trouble{}, err
	}
	logger.Info("trouble_created", "trouble_id", id, "project_id", t.ProjectID)
	return t, nil
}

// GetTrouble returns the trouble with its message count.
func GetTrouble(id int64) (models.Trouble, error) {
	var t models.Trouble
	if err := getJSON(idKey(troublePrefix, id), &t); err != nil {
		return models.Trouble{}, fmt.Errorf("trouble %d: %w", id, err)
	}
	n, err := CountMessages(id)
	if err != nil {
		return models.Trouble{}, err
	}
	t.Comments = n
	return t, nil
}

// ListTroubles returns the troubles of a project in creation order.
func ListTroubles(projectID int64) ([]models.Trouble, error) {
	prefix := []byte(fmt.Sprintf("%s%020d:", projectTroublePrefix, projectID))
	var ids []int64
	err := scanPrefix(prefix, func(k, _ []byte) error {
		id, err := strconv.ParseInt(string(k[len(prefix):]), 10, 64)
		if err != nil {
			return fmt.Errorf("corrupt trouble index %s: %w", k, err)
		}
		ids = append(ids, id)
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]models.Trouble, 0, len(ids))
	for _, id := range ids {
		t, err := GetTrouble(id)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// UpdateTroubleStatus sets the status of an existing trouble.
func UpdateTroubleStatus(id int64, status string) (models.Trouble, error) {
	if !models.ValidTroubleStatus(status) {
		return models.Trouble{}, fmt.Errorf("invalid status %q", status)
	}
	writeMu.Lock()
	defer writeMu.Unlock()

	var t models.Trouble
	if err := getJSON(idKey(troublePrefix, id), &t); err != nil {
		return models.Trouble{}, fmt.Errorf("trouble %d: %w", id, err)
	}
	t.Status = status
	b := db.NewBatch()
	defer b.Close()
	if err := setJSON(b, idKey(troublePrefix, id), t); err != nil {
		return models.Trouble{}, err
	}
	if err := commit(b); err != nil {
		return models.Trouble{}, err
	}
	logger.Info("trouble_status_updated", "trouble_id", id, "status", status)
	return GetTrouble(id)
}

