package models

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name            string   `json:"name"`
	Password        string   `json:"password"`
	ConfirmPassword string   `json:"confirm_password"`
	Categories      []string `json:"categories"`
}

// UserUpdate changes the caller's name and/or password. Empty fields are
// left untouched.
type UserUpdate struct {
	Name            string `json:"name,omitempty"`
	Password        string `json:"password,omitempty"`
	ConfirmPassword string `json:"confirm_password,omitempty"`
}

type NewProject struct {
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	Description string `json:"description"`
	CategoryID  int64  `json:"category_id"`
}

type NewTrouble struct {
	ProjectID   int64  `json:"project_id"`
	CategoryID  int64  `json:"category_id"`
	Description string `json:"description"`
	Status      string `json:"status,omitempty"`
}

type StatusUpdate struct {
	Status string `json:"status"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
