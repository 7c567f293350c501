package frontend

import (
	"context"
	"fmt"
	"strings"

	"cocreate/pkg/models"
	"cocreate/pkg/session"
)

// TroubleItem is a trouble with its category name resolved.
type TroubleItem struct {
	models.Trouble
	Category string
}

// TroubleList is the page listing the selected project's troubles.
type TroubleList struct {
	Deps

	Project    *session.ProjectSelection
	Categories []models.Category
	Items      []TroubleItem
}

func NewTroubleList(d Deps) *TroubleList { return &TroubleList{Deps: d} }

// Load reads the selected project and fetches its categories and troubles.
// Category failures fall back to the built-in table, trouble failures to an
// empty list.
func (l *TroubleList) Load(ctx context.Context) error {
	s, err := l.state()
	if err != nil {
		l.fail("Could not load troubles", err)
		return err
	}
	if s.Project == nil {
		l.Project, l.Items = nil, nil
		l.fail("No project selected", ErrNoProjectSelected)
		return ErrNoProjectSelected
	}
	l.Project = s.Project

	if _, err := l.authed(); err != nil {
		l.Categories = append([]models.Category(nil), TroubleCategories...)
		l.Items = nil
		l.fail("Could not load troubles", err)
		return err
	}

	cats, err := l.Client.TroubleCategories(ctx)
	if err != nil || len(cats) == 0 {
		if err != nil {
			logFailure("trouble_categories_load_failed", err)
		}
		cats = append([]models.Category(nil), TroubleCategories...)
	}
	l.Categories = cats

	list, err := l.Client.Troubles(ctx, s.Project.ID)
	if err != nil {
		logFailure("troubles_load_failed", err, "project_id", s.Project.ID)
		l.fail("Could not load troubles", err)
		l.Items = nil
		return nil
	}
	l.Items = make([]TroubleItem, 0, len(list.Troubles))
	for _, t := range list.Troubles {
		l.Items = append(l.Items, TroubleItem{Trouble: t, Category: CategoryName(cats, t.CategoryID)})
	}
	return nil
}

// Filter returns the items matching category and status; empty matches any.
func (l *TroubleList) Filter(category, status string) []TroubleItem {
	var out []TroubleItem
	for _, it := range l.Items {
		if category != "" && !strings.EqualFold(it.Category, category) {
			continue
		}
		if status != "" && it.Status != status {
			continue
		}
		out = append(out, it)
	}
	return out
}

// Find returns the loaded item with id.
func (l *TroubleList) Find(id int64) (TroubleItem, bool) {
	for _, it := range l.Items {
		if it.ID == id {
			return it, true
		}
	}
	return TroubleItem{}, false
}

// Select remembers it as the current trouble.
func (l *TroubleList) Select(it TroubleItem) error {
	if _, err := session.Update(l.Store, func(s *session.State) { s.SelectTrouble(it.Trouble, it.Category) }); err != nil {
		l.fail("Could not select trouble", err)
		return err
	}
	l.notify("Trouble selected", it.Category)
	return nil
}

// Create validates and posts a trouble for the selected project.
func (l *TroubleList) Create(ctx context.Context, in models.NewTrouble) (TroubleItem, error) {
	in.Description = strings.TrimSpace(in.Description)
	if in.ProjectID == 0 {
		s, err := l.state()
		if err == nil && s.Project != nil {
			in.ProjectID = s.Project.ID
		}
	}
	var verr error
	switch {
	case in.ProjectID == 0:
		verr = ErrNoProjectSelected
	case in.CategoryID == 0:
		verr = &ValidationError{Field: "category_id", Message: "choose a category"}
	case in.Description == "":
		verr = &ValidationError{Field: "description", Message: "describe the trouble"}
	case in.Status != "" && !models.ValidTroubleStatus(in.Status):
		verr = &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", in.Status)}
	}
	if verr != nil {
		l.fail("Could not create trouble", verr)
		return TroubleItem{}, verr
	}
	if in.Status == "" {
		in.Status = models.TroubleUnresolved
	}

	if _, err := l.authed(); err != nil {
		l.fail("Could not create trouble", err)
		return TroubleItem{}, err
	}
	t, err := l.Client.CreateTrouble(ctx, in)
	if err != nil {
		logFailure("trouble_create_failed", err, "project_id", in.ProjectID)
		l.fail("Could not create trouble", err)
		return TroubleItem{}, err
	}
	cats := l.Categories
	if len(cats) == 0 {
		cats = TroubleCategories
	}
	it := TroubleItem{Trouble: t, Category: CategoryName(cats, t.CategoryID)}
	if l.Project != nil && l.Project.ID == t.ProjectID {
		l.Items = append(l.Items, it)
	}
	l.notify("Trouble created", it.Category)
	return it, nil
}

// UpdateStatus changes the status of trouble id.
func (l *TroubleList) UpdateStatus(ctx context.Context, id int64, status string) (TroubleItem, error) {
	if !models.ValidTroubleStatus(status) {
		err := &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", status)}
		l.fail("Could not update status", err)
		return TroubleItem{}, err
	}
	if _, err := l.authed(); err != nil {
		l.fail("Could not update status", err)
		return TroubleItem{}, err
	}
	t, err := l.Client.UpdateTroubleStatus(ctx, id, status)
	if err != nil {
		logFailure("trouble_status_failed", err, "trouble_id", id)
		l.fail("Could not update status", err)
		return TroubleItem{}, err
	}
	cats := l.Categories
	if len(cats) == 0 {
		cats = TroubleCategories
	}
	it := TroubleItem{Trouble: t, Category: CategoryName(cats, t.CategoryID)}
	for i := range l.Items {
		if l.Items[i].ID == id {
			l.Items[i] = it
		}
	}
	if _, err := session.Update(l.Store, func(s *session.State) {
		if s.Trouble != nil && s.Trouble.ID == id {
			s.Trouble.Status = t.Status
		}
	}); err != nil {
		logFailure("state_save_failed", err)
	}
	l.notify("Status updated", t.Status)
	return it, nil
}

// Participants lists the people involved in the selected trouble.
func (l *TroubleList) Participants(ctx context.Context) ([]models.Participant, error) {
	s, err := l.state()
	if err != nil {
		l.fail("Could not load participants", err)
		return nil, err
	}
	if s.Trouble == nil {
		l.fail("No trouble selected", ErrNoTroubleSelected)
		return nil, ErrNoTroubleSelected
	}
	ps, err := l.participants(ctx, s.Trouble.ID)
	if err == nil {
		return ps, nil
	}
	logFailure("participants_load_failed", err, "trouble_id", s.Trouble.ID)
	if l.Policy.FallbackData {
		return DummyParticipants(), nil
	}
	l.fail("Could not load participants", err)
	return nil, err
}

func (l *TroubleList) participants(ctx context.Context, troubleID int64) ([]models.Participant, error) {
	if _, err := l.authed(); err != nil {
		return nil, err
	}
	return l.Client.Participants(ctx, troubleID)
}
