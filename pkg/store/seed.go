package store

import (
	"fmt"
	"time"

	"cocreate/pkg/logger"
	"cocreate/pkg/models"
)

// DefaultProjectCategories are written on every start.
var DefaultProjectCategories = []models.Category{
	{ID: 1, Name: "Education"},
	{ID: 2, Name: "Community"},
	{ID: 3, Name: "Healthcare"},
	{ID: 4, Name: "Business"},
	{ID: 5, Name: "Environment"},
	{ID: 6, Name: "Other"},
}

// DefaultTroubleCategories are written on every start.
var DefaultTroubleCategories = []models.Category{
	{ID: 1, Name: "Technical issue"},
	{ID: 2, Name: "Design & planning"},
	{ID: 3, Name: "UI/UX design"},
	{ID: 4, Name: "Content creation"},
	{ID: 5, Name: "Mobile development"},
}

// DemoPassword is the password of every demo account.
const DemoPassword = "password"

var demoUsers = []string{"Owl", "Fox", "Raccoon", "Bear", "Deer"}

type demoProject struct {
	title, summary string
	owner          int // index into demoUsers
	category       int64
	age            time.Duration
}

var demoProjects = []demoProject{
	{"Online learning platform", "A place where anyone can teach and learn skills online.", 0, 1, 2 * time.Hour},
	{"Local community app", "Connects neighbours for events, help requests and sharing.", 1, 2, 5 * time.Hour},
	{"Health tracking service", "Daily habits, sleep and meals in one simple dashboard.", 2, 3, 8 * time.Hour},
	{"Freelance job matching", "Matches freelancers with small projects from local businesses.", 3, 4, 12 * time.Hour},
	{"Sharing economy platform", "Lend and borrow tools, rooms and skills within a city.", 4, 5, 20 * time.Hour},
}

// SeedDefaults writes the category tables and, when demo is set and the
// database has no users yet, a small demo dataset. hash turns the demo
// password into a stored hash.
func SeedDefaults(demo bool, hash func(string) (string, error)) error {
	if db == nil {
		return errNotOpen
	}
	for _, c := range DefaultProjectCategories {
		if err := PutCategory(ProjectCategories, c); err != nil {
			return err
		}
	}
	for _, c := range DefaultTroubleCategories {
		if err := PutCategory(TroubleCategories, c); err != nil {
			return err
		}
	}
	if !demo {
		return nil
	}
	seeded, err := has([]byte("seq:user"))
	if err != nil {
		return err
	}
	if seeded {
		logger.Info("seed_demo_skipped", "reason", "users exist")
		return nil
	}
	return seedDemo(time.Now().UTC(), hash)
}

func seedDemo(now time.Time, hash func(string) (string, error)) error {
	pw, err := hash(DemoPassword)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}
	users := make([]models.User, 0, len(demoUsers))
	for _, name := range demoUsers {
		u, err := CreateUser(models.User{Name: name, PasswordHash: pw, CreatedAt: now.Add(-48 * time.Hour)})
		if err != nil {
			return err
		}
		users = append(users, u)
	}

	projects := make([]models.Project, 0, len(demoProjects))
	for _, dp := range demoProjects {
		owner := users[dp.owner]
		cat, err := GetCategory(ProjectCategories, dp.category)
		if err != nil {
			return err
		}
		p, err := CreateProject(models.Project{
			Title:        dp.title,
			Summary:      dp.summary,
			Description:  dp.summary,
			OwnerID:      owner.ID,
			OwnerName:    owner.Name,
			CategoryID:   cat.ID,
			CategoryName: cat.Name,
			CreatedAt:    now.Add(-dp.age),
		})
		if err != nil {
			return err
		}
		projects = append(projects, p)
	}

	// Fox follows the learning platform and the health tracker.
	if err := SetFavorite(users[1].ID, projects[0].ID, true, now.Add(-time.Hour)); err != nil {
		return err
	}
	if err := SetFavorite(users[1].ID, projects[2].ID, true, now); err != nil {
		return err
	}

	tr, err := CreateTrouble(models.Trouble{
		ProjectID:     projects[0].ID,
		CategoryID:    1,
		Description:   "Video playback stutters on slow connections. Looking for ideas on adaptive streaming.",
		Status:        models.TroubleUnresolved,
		CreatorUserID: users[0].ID,
		CreatorName:   users[0].Name,
		CreatedAt:     now.Add(-90 * time.Minute),
	})
	if err != nil {
		return err
	}
	if _, err := CreateTrouble(models.Trouble{
		ProjectID:     projects[0].ID,
		CategoryID:    3,
		Description:   "The course page feels crowded. How should lessons and quizzes be grouped?",
		Status:        models.TroubleInProgress,
		CreatorUserID: users[0].ID,
		CreatorName:   users[0].Name,
		CreatedAt:     now.Add(-80 * time.Minute),
	}); err != nil {
		return err
	}

	first, err := CreateMessage(models.Message{
		TroubleID:    tr.ID,
		SenderUserID: users[0].ID,
		SenderName:   users[0].Name,
		Content:      "Playback stalls every few seconds for users on mobile data. Any suggestions?",
		SentAt:       now.Add(-60 * time.Minute),
	})
	if err != nil {
		return err
	}
	if _, err := CreateMessage(models.Message{
		TroubleID:       tr.ID,
		SenderUserID:    users[1].ID,
		SenderName:      users[1].Name,
		Content:         "HLS with a few bitrate renditions usually fixes this. I can help set up the encoder.",
		SentAt:          now.Add(-45 * time.Minute),
		ParentMessageID: first.ID,
	}); err != nil {
		return err
	}
	logger.Info("seed_demo_done", "users", len(users), "projects", len(projects))
	return nil
}
