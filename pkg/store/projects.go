package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"cocreate/pkg/logger"
	"cocreate/pkg/models"
)

const (
	projectPrefix = "project:"
	// favorite:user:<user>:<project> -> favorited-at (RFC 3339)
	favUserPrefix = "favorite:user:"
	// favorite:project:<project>:<user> -> ""
	favProjectPrefix = "favorite:project:"
)

func favUserKey(userID, projectID int64) []byte {
	return []byte(fmt.Sprintf("%s%020d:%020d", favUserPrefix, userID, projectID))
}

func favProjectKey(projectID, userID int64) []byte {
	return []byte(fmt.Sprintf("%s%020d:%020d", favProjectPrefix, projectID, userID))
}

// CreateProject stores p under a freshly allocated id.
func CreateProject(p models.Project) (models.Project, error) {
	if db == nil {
		return models.Project{}, errNotOpen
	}
	writeMu.Lock()
	defer writeMu.Unlock()

	b := db.NewBatch()
	defer b.Close()
	id, err := nextID(b, "project")
	if err != nil {
		return models.Project{}, err
	}
	p.ID = id
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if p.Status == "" {
		p.Status = models.ProjectStatusActive
	}
	p.IsFavorite, p.Likes, p.Comments = false, 0, 0
	if err := setJSON(b, idKey(projectPrefix, id), p); err != nil {
		return models.Project{}, err
	}
	if err := commit(b); err != nil {
		logger.Error("create_project_failed", "title", p.Title, "error", err)
		return models.Project{}, err
	}
	logger.Info("project_created", "project_id", id, "owner_id", p.OwnerID)
	return p, nil
}

// GetProject returns the stored project with Likes and Comments filled in.
// IsFavorite is caller-relative and left false.
func GetProject(id int64) (models.Project, error) {
	var p models.Project
	if err := getJSON(idKey(projectPrefix, id), &p); err != nil {
		return models.Project{}, fmt.Errorf("project %d: %w", id, err)
	}
	if err := decorateProject(&p); err != nil {
		return models.Project{}, err
	}
	return p, nil
}

func decorateProject(p *models.Project) error {
	likes, err := countPrefix([]byte(fmt.Sprintf("%s%020d:", favProjectPrefix, p.ID)))
	if err != nil {
		return err
	}
	p.Likes = likes
	troubles, err := ListTroubles(p.ID)
	if err != nil {
		return err
	}
	p.Comments = 0
	for _, t := range troubles {
		p.Comments += t.Comments
	}
	if p.CreatorName == "" {
		p.CreatorName = p.OwnerName
	}
	return nil
}

// ListProjects returns every project that satisfies keep, newest first.
// A limit <= 0 returns all matches.
func ListProjects(keep func(models.Project) bool, limit int) ([]models.Project, error) {
	var all []models.Project
	err := scanPrefix([]byte(projectPrefix), func(k, v []byte) error {
		var p models.Project
		if err := json.Unmarshal(v, &p); err != nil {
			return fmt.Errorf("decode %s: %w", k, err)
		}
		if keep == nil || keep(p) {
			all = append(all, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	for i := range all {
		if err := decorateProject(&all[i]); err != nil {
			return nil, err
		}
	}
	if all == nil {
		all = []models.Project{}
	}
	return all, nil
}

// ListRecentProjects returns projects created at or after since.
func ListRecentProjects(since time.Time, limit int) ([]models.Project, error) {
	return ListProjects(func(p models.Project) bool { return !p.CreatedAt.Before(since) }, limit)
}

func ListProjectsByOwner(ownerID int64) ([]models.Project, error) {
	return ListProjects(func(p models.Project) bool { return p.OwnerID == ownerID }, 0)
}

// SetFavorite adds or removes the (user, project) favorite. It is
// idempotent and fails with ErrNotFound for unknown projects.
func SetFavorite(userID, projectID int64, favorite bool, now time.Time) error {
	if db == nil {
		return errNotOpen
	}
	exists, err := has(idKey(projectPrefix, projectID))
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("project %d: %w", projectID, ErrNotFound)
	}
	writeMu.Lock()
	defer writeMu.Unlock()

	b := db.NewBatch()
	defer b.Close()
	if favorite {
		already, err := has(favUserKey(userID, projectID))
		if err != nil {
			return err
		}
		if already {
			return nil
		}
		if err := b.Set(favUserKey(userID, projectID), []byte(now.UTC().Format(time.RFC3339Nano)), nil); err != nil {
			return err
		}
		if err := b.Set(favProjectKey(projectID, userID), nil, nil); err != nil {
			return err
		}
	} else {
		if err := b.Delete(favUserKey(userID, projectID), nil); err != nil {
			return err
		}
		if err := b.Delete(favProjectKey(projectID, userID), nil); err != nil {
			return err
		}
	}
	if err := commit(b); err != nil {
		return err
	}
	logger.Info("favorite_set", "user_id", userID, "project_id", projectID, "favorite", favorite)
	return nil
}

func IsFavorite(userID, projectID int64) (bool, error) {
	return has(favUserKey(userID, projectID))
}

// ListFavorites returns the user's favorite projects, most recently
// favorited first, each with IsFavorite set.
func ListFavorites(userID int64, limit int) ([]models.Project, error) {
	type fav struct {
		projectID int64
		at        time.Time
	}
	var favs []fav
	prefix := []byte(fmt.Sprintf("%s%020d:", favUserPrefix, userID))
	err := scanPrefix(prefix, func(k, v []byte) error {
		pid, err := strconv.ParseInt(string(k[len(prefix):]), 10, 64)
		if err != nil {
			return fmt.Errorf("corrupt favorite key %s: %w", k, err)
		}
		at, _ := time.Parse(time.RFC3339Nano, string(v))
		favs = append(favs, fav{projectID: pid, at: at})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(favs, func(i, j int) bool { return favs[i].at.After(favs[j].at) })

	out := []models.Project{}
	for _, f := range favs {
		if limit > 0 && len(out) >= limit {
			break
		}
		p, err := GetProject(f.projectID)
		if err != nil {
			logger.Warn("favorite_dangling_project", "user_id", userID, "project_id", f.projectID, "error", err)
			continue
		}
		p.IsFavorite = true
		out = append(out, p)
	}
	return out, nil
}
