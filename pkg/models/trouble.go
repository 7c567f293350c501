package models

import "time"

// Trouble statuses.
const (
	TroubleUnresolved = "unresolved"
	TroubleInProgress = "in_progress"
	TroubleResolved   = "resolved"
)

// TroubleStatuses lists the valid statuses in lifecycle order.
var TroubleStatuses = []string{TroubleUnresolved, TroubleInProgress, TroubleResolved}

// ValidTroubleStatus reports whether s is one of TroubleStatuses.
func ValidTroubleStatus(s string) bool {
	for _, v := range TroubleStatuses {
		if v == s {
			return true
		}
	}
	return false
}

type Trouble struct {
	ID            int64     `json:"trouble_id"`
	ProjectID     int64     `json:"project_id"`
	ProjectTitle  string    `json:"project_title,omitempty"`
	CategoryID    int64     `json:"category_id"`
	Description   string    `json:"description"`
	Status        string    `json:"status"`
	CreatorUserID int64     `json:"creator_user_id"`
	CreatorName   string    `json:"creator_name,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	Comments      int       `json:"comments"`
}

type TroubleList struct {
	Troubles []Trouble `json:"troubles"`
	Total    int       `json:"total"`
}

// Participant roles.
const (
	RoleOwner     = "owner"
	RoleSupporter = "supporter"
)

type Participant struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Avatar string `json:"avatar"`
}
