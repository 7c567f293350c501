package frontend

import (
	"time"

	"cocreate/pkg/models"
)

// DemoPassword is the password of every built-in user.
const DemoPassword = "password"

// dummyUser is a built-in account used in offline mode.
type dummyUser struct {
	ID       int64
	Name     string
	Password string
}

func defaultDummyUsers() []dummyUser {
	return []dummyUser{
		{1, "Owl", DemoPassword},
		{2, "Fox", DemoPassword},
		{3, "Raccoon", DemoPassword},
		{4, "Bear", DemoPassword},
		{5, "Deer", DemoPassword},
	}
}

// ProjectCategories is the built-in project category table.
var ProjectCategories = []models.Category{
	{ID: 1, Name: "Education"},
	{ID: 2, Name: "Community"},
	{ID: 3, Name: "Healthcare"},
	{ID: 4, Name: "Business"},
	{ID: 5, Name: "Environment"},
	{ID: 6, Name: "Other"},
}

// TroubleCategories is the built-in trouble category table.
var TroubleCategories = []models.Category{
	{ID: 1, Name: "Technical issue"},
	{ID: 2, Name: "Design & planning"},
	{ID: 3, Name: "UI/UX design"},
	{ID: 4, Name: "Content creation"},
	{ID: 5, Name: "Mobile development"},
}

// UnknownCategory names a category id missing from the table.
const UnknownCategory = "Other"

// CategoryName looks id up in cats.
func CategoryName(cats []models.Category, id int64) string {
	for _, c := range cats {
		if c.ID == id {
			return c.Name
		}
	}
	return UnknownCategory
}

// DummyProjects returns the built-in projects with IsFavorite set to
// favorite, newest first.
func DummyProjects(favorite bool, now time.Time) []models.Project {
	type row struct {
		id       int64
		title    string
		summary  string
		owner    string
		ownerID  int64
		category int64
		age      time.Duration
	}
	rows := []row{
		{101, "Online learning platform", "A place where anyone can teach and learn skills online.", "Owl", 1, 1, 2 * time.Hour},
		{102, "Local community app", "Connects neighbours for events, help requests and sharing.", "Fox", 2, 2, 5 * time.Hour},
		{103, "Health tracking service", "Daily habits, sleep and meals in one simple dashboard.", "Raccoon", 3, 3, 8 * time.Hour},
	}
	if favorite {
		rows = []row{
			{104, "Freelance job matching", "Matches freelancers with small projects from local businesses.", "Bear", 4, 4, 26 * time.Hour},
			{105, "Sharing economy platform", "Lend and borrow tools, rooms and skills within a city.", "Deer", 5, 5, 50 * time.Hour},
		}
	}
	out := make([]models.Project, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.Project{
			ID:           r.id,
			Title:        r.title,
			Summary:      r.summary,
			Description:  r.summary,
			OwnerID:      r.ownerID,
			OwnerName:    r.owner,
			CreatorName:  r.owner,
			CategoryID:   r.category,
			CategoryName: CategoryName(ProjectCategories, r.category),
			Status:       models.ProjectStatusActive,
			CreatedAt:    now.Add(-r.age),
			IsFavorite:   favorite,
		})
	}
	return out
}

// DummyParticipants is shown when a trouble's participants cannot be fetched.
func DummyParticipants() []models.Participant {
	return []models.Participant{
		{UserID: 1, Name: "Owl", Role: models.RoleOwner, Avatar: "O"},
		{UserID: 2, Name: "Fox", Role: models.RoleSupporter, Avatar: "F"},
	}
}

// DemoConversation is the fixed thread shown for troubleID when the real
// one is empty or unavailable.
func DemoConversation(troubleID int64, now time.Time) []models.Message {
	return []models.Message{
		{ID: 1, TroubleID: troubleID, SenderUserID: 1, SenderName: "Owl",
			Content: "Thanks for joining! Here is where we are stuck right now.", SentAt: now.Add(-3 * time.Hour)},
		{ID: 2, TroubleID: troubleID, SenderUserID: 2, SenderName: "Fox",
			Content: "I had the same problem last year. Could you share the error you see?", SentAt: now.Add(-2 * time.Hour), ParentMessageID: 1},
		{ID: 3, TroubleID: troubleID, SenderUserID: 1, SenderName: "Owl",
			Content: "It only happens on mobile, the page freezes after a few seconds.", SentAt: now.Add(-90 * time.Minute), ParentMessageID: 2},
		{ID: 4, TroubleID: troubleID, SenderUserID: 3, SenderName: "Raccoon",
			Content: "That sounds like a memory issue. Let's pair on it tomorrow.", SentAt: now.Add(-30 * time.Minute)},
	}
}
