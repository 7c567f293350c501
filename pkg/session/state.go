// Package session holds the client's application state: who is logged in
// and which project and trouble are selected. It replaces ad-hoc string
// keys with one typed value that is loaded, changed and saved as a whole.
package session

import (
	"cocreate/pkg/models"
)

// Auth is the logged-in user's session.
type Auth struct {
	Token    string `yaml:"token,omitempty"`
	UserID   int64  `yaml:"user_id,omitempty"`
	UserName string `yaml:"user_name,omitempty"`
	LoggedIn bool   `yaml:"logged_in,omitempty"`
}

// Valid reports whether token, user id and user name are all present.
func (a Auth) Valid() bool {
	return a.Token != "" && a.UserID != 0 && a.UserName != ""
}

// ProjectSelection is the project chosen on the board.
type ProjectSelection struct {
	ID          int64  `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	OwnerID     int64  `yaml:"owner_id,omitempty"`
	OwnerName   string `yaml:"owner_name,omitempty"`
	Category    string `yaml:"category,omitempty"`
}

// TroubleSelection is the trouble chosen in a project's trouble list.
type TroubleSelection struct {
	ID          int64  `yaml:"id"`
	ProjectID   int64  `yaml:"project_id"`
	Description string `yaml:"description,omitempty"`
	Status      string `yaml:"status,omitempty"`
	CategoryID  int64  `yaml:"category_id,omitempty"`
	Category    string `yaml:"category,omitempty"`
}

// State is everything that crosses from one page to the next.
type State struct {
	Auth    Auth              `yaml:"auth"`
	Project *ProjectSelection `yaml:"project,omitempty"`
	Trouble *TroubleSelection `yaml:"trouble,omitempty"`
}

// Login replaces the auth part from a token response.
func (s *State) Login(tok models.TokenResponse) {
	s.Auth = Auth{Token: tok.AccessToken, UserID: tok.UserID, UserName: tok.UserName, LoggedIn: true}
}

// SelectProject records p. Choosing a different project drops the trouble
// selection, which only makes sense within its project.
func (s *State) SelectProject(p models.Project) {
	if s.Project == nil || s.Project.ID != p.ID {
		s.Trouble = nil
	}
	owner := p.OwnerName
	if owner == "" {
		owner = p.CreatorName
	}
	s.Project = &ProjectSelection{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		OwnerID:     p.OwnerID,
		OwnerName:   owner,
		Category:    p.CategoryName,
	}
}

// SelectTrouble records t; category is its display name.
func (s *State) SelectTrouble(t models.Trouble, category string) {
	s.Trouble = &TroubleSelection{
		ID:          t.ID,
		ProjectID:   t.ProjectID,
		Description: t.Description,
		Status:      t.Status,
		CategoryID:  t.CategoryID,
		Category:    category,
	}
}

// Clear drops auth and both selections.
func (s *State) Clear() { *s = State{} }
