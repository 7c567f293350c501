package frontend

import (
	"context"
	"fmt"
	"strings"

	"cocreate/pkg/models"
	"cocreate/pkg/session"
)

// Board is the home page: recently created projects and the user's
// favorites.
type Board struct {
	Deps

	New       []models.Project
	Favorites []models.Project
	// Fallback is set when the lists hold built-in projects.
	Fallback bool
}

func NewBoard(d Deps) *Board { return &Board{Deps: d} }

// Load fetches both collections. On failure it toasts and either falls back
// to the built-in projects or leaves the lists empty and returns the error.
func (b *Board) Load(ctx context.Context, limit int) error {
	b.Fallback = false
	err := b.fetch(ctx, limit)
	if err == nil {
		return nil
	}
	logFailure("projects_load_failed", err)
	b.fail("Could not load projects", err)
	if b.Policy.FallbackData {
		now := b.now()
		b.New = DummyProjects(false, now)
		b.Favorites = DummyProjects(true, now)
		b.Fallback = true
		return nil
	}
	b.New, b.Favorites = nil, nil
	return err
}

func (b *Board) fetch(ctx context.Context, limit int) error {
	if _, err := b.authed(); err != nil {
		return err
	}
	recent, err := b.Client.RecentProjects(ctx, limit)
	if err != nil {
		return fmt.Errorf("recent projects: %w", err)
	}
	favs, err := b.Client.FavoriteProjects(ctx, limit)
	if err != nil {
		return fmt.Errorf("favorite projects: %w", err)
	}
	b.New, b.Favorites = recent, favs
	return nil
}

// ToggleFavorite flips the favorite flag of project id and moves it between
// the lists.
func (b *Board) ToggleFavorite(ctx context.Context, id int64) (bool, error) {
	p, ok := b.find(id)
	if !ok && !b.Policy.Offline && !b.Fallback {
		fetched, err := b.Project(ctx, id)
		if err != nil {
			return false, err
		}
		p, ok = fetched, true
	}
	if !ok {
		err := fmt.Errorf("project %d is not on the board", id)
		b.fail("Could not update favorite", err)
		return false, err
	}
	want := !p.IsFavorite

	if !b.Policy.Offline && !b.Fallback {
		if _, err := b.authed(); err != nil {
			b.fail("Could not update favorite", err)
			return p.IsFavorite, err
		}
		res, err := b.Client.SetFavorite(ctx, id, want)
		if err != nil {
			logFailure("favorite_toggle_failed", err, "project_id", id)
			b.fail("Could not update favorite", err)
			return p.IsFavorite, err
		}
		want = res.IsFavorite
	}

	p.IsFavorite = want
	b.New = without(b.New, id)
	b.Favorites = without(b.Favorites, id)
	if want {
		b.Favorites = append([]models.Project{p}, b.Favorites...)
		b.notify("Added to favorites", p.Title)
	} else {
		b.New = append([]models.Project{p}, b.New...)
		b.notify("Removed from favorites", p.Title)
	}
	return want, nil
}

func (b *Board) find(id int64) (models.Project, bool) {
	for _, list := range [][]models.Project{b.Favorites, b.New} {
		for _, p := range list {
			if p.ID == id {
				return p, true
			}
		}
	}
	return models.Project{}, false
}

func without(list []models.Project, id int64) []models.Project {
	out := list[:0:0]
	for _, p := range list {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}

// Select remembers p as the current project.
func (b *Board) Select(p models.Project) error {
	if _, err := session.Update(b.Store, func(s *session.State) { s.SelectProject(p) }); err != nil {
		b.fail("Could not select project", err)
		return err
	}
	b.notify("Project selected", p.Title)
	return nil
}

// Selected returns the current project selection, if any.
func (b *Board) Selected() *session.ProjectSelection {
	s, err := b.state()
	if err != nil {
		return nil
	}
	return s.Project
}

// Categories returns the project categories, falling back to the built-in
// table under FallbackData.
func (b *Board) Categories(ctx context.Context) ([]models.Category, error) {
	cats, err := b.categories(ctx)
	if err == nil {
		return cats, nil
	}
	logFailure("project_categories_load_failed", err)
	if b.Policy.FallbackData {
		return append([]models.Category(nil), ProjectCategories...), nil
	}
	b.fail("Could not load categories", err)
	return nil, err
}

func (b *Board) categories(ctx context.Context) ([]models.Category, error) {
	if _, err := b.authed(); err != nil {
		return nil, err
	}
	return b.Client.ProjectCategories(ctx)
}

// Mine lists the projects owned by the current user.
func (b *Board) Mine(ctx context.Context) ([]models.Project, error) {
	if _, err := b.authed(); err != nil {
		b.fail("Could not load your projects", err)
		return nil, err
	}
	ps, err := b.Client.MyProjects(ctx)
	if err != nil {
		logFailure("my_projects_load_failed", err)
		b.fail("Could not load your projects", err)
		return nil, err
	}
	return ps, nil
}

// Project fetches one project by id.
func (b *Board) Project(ctx context.Context, id int64) (models.Project, error) {
	if _, err := b.authed(); err != nil {
		b.fail("Could not load project", err)
		return models.Project{}, err
	}
	p, err := b.Client.Project(ctx, id)
	if err != nil {
		logFailure("project_load_failed", err, "project_id", id)
		b.fail("Could not load project", err)
		return models.Project{}, err
	}
	return p, nil
}

// CreateProject validates and posts a new project, then fetches it back.
func (b *Board) CreateProject(ctx context.Context, in models.NewProject) (models.Project, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		err := &ValidationError{Field: "title", Message: "enter a title"}
		b.fail("Could not create project", err)
		return models.Project{}, err
	}
	if _, err := b.authed(); err != nil {
		b.fail("Could not create project", err)
		return models.Project{}, err
	}
	created, err := b.Client.CreateProject(ctx, in)
	if err != nil {
		logFailure("project_create_failed", err)
		b.fail("Could not create project", err)
		return models.Project{}, err
	}
	p, err := b.Client.Project(ctx, created.ProjectID)
	if err != nil {
		logFailure("project_load_failed", err, "project_id", created.ProjectID)
		b.fail("Could not load project", err)
		return models.Project{}, err
	}
	b.New = append([]models.Project{p}, without(b.New, p.ID)...)
	b.notify("Project created", p.Title)
	return p, nil
}
