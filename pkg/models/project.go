package models

import "time"

type Category struct {
	ID   int64  `json:"category_id"`
	Name string `json:"name"`
}

type Project struct {
	ID           int64     `json:"project_id"`
	Title        string    `json:"title"`
	Summary      string    `json:"summary,omitempty"`
	Description  string    `json:"description,omitempty"`
	OwnerID      int64     `json:"owner_id"`
	OwnerName    string    `json:"owner_name"`
	CreatorName  string    `json:"creator_name,omitempty"`
	CategoryID   int64     `json:"category_id,omitempty"`
	CategoryName string    `json:"category_name,omitempty"`
	Status       string    `json:"status,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	IsFavorite   bool      `json:"is_favorite"`
	Likes        int       `json:"likes"`
	Comments     int       `json:"comments"`
}

// ProjectStatusActive is the status of newly created projects.
const ProjectStatusActive = "active"

type FavoriteResult struct {
	ProjectID  int64 `json:"project_id"`
	IsFavorite bool  `json:"is_favorite"`
}

type CreatedProject struct {
	ProjectID int64 `json:"project_id"`
}
