package frontend

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"cocreate/pkg/api"
	"cocreate/pkg/auth"
	"cocreate/pkg/client"
	"cocreate/pkg/config"
	"cocreate/pkg/models"
	"cocreate/pkg/session"
	"cocreate/pkg/store"
)

var fixedNow = time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	config.SetRuntime(&config.RuntimeConfig{BcryptCost: bcrypt.MinCost})
	require.NoError(t, store.Open(t.TempDir()))
	require.NoError(t, store.SeedDefaults(true, auth.HashPassword))
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(func() {
		srv.Close()
		_ = store.Close()
		config.SetRuntime(nil)
	})
	return srv
}

// newDeps wires a client to srv, or to an unreachable address when srv is nil.
func newDeps(t *testing.T, srv *httptest.Server, p Policy) (Deps, *Recorder) {
	t.Helper()
	rec := &Recorder{}
	c := client.New("http://127.0.0.1:1")
	if srv != nil {
		c = client.New(srv.URL, client.WithHTTPClient(srv.Client()))
	}
	return Deps{
		Client:   c,
		Store:    &session.MemoryStore{},
		Notifier: rec,
		Policy:   p,
		Now:      func() time.Time { return fixedNow },
	}, rec
}

func login(t *testing.T, d Deps, name string) session.Auth {
	t.Helper()
	a, err := NewAuth(d).Login(context.Background(), name, DemoPassword)
	require.NoError(t, err)
	return a
}

func ids(ps []models.Project) []int64 {
	out := make([]int64, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func TestAuth_ValidationBeforeNetwork(t *testing.T) {
	d, rec := newDeps(t, nil, Policy{})
	a := NewAuth(d)
	ctx := context.Background()

	_, err := a.Login(ctx, "  ", "password")
	assert.True(t, IsValidation(err))
	assert.Equal(t, VariantDestructive, rec.Last().Variant)

	_, err = a.Login(ctx, "Owl", "")
	assert.True(t, IsValidation(err))

	_, err = a.Register(ctx, models.RegisterRequest{Name: "Newt", Password: "a", ConfirmPassword: "b"})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "confirm_password", verr.Field)

	_, err = a.Register(ctx, models.RegisterRequest{Name: "Newt", Password: "a"})
	assert.True(t, IsValidation(err))

	s, err := d.Store.Load()
	require.NoError(t, err)
	assert.False(t, s.Auth.Valid())
	assert.Len(t, rec.Toasts(), 4)
}

func TestAuth_RemoteLoginLogout(t *testing.T) {
	srv := newTestServer(t)
	d, rec := newDeps(t, srv, Policy{})
	a := NewAuth(d)
	ctx := context.Background()

	_, err := a.Login(ctx, "Owl", "nope")
	require.Error(t, err)
	assert.Equal(t, VariantDestructive, rec.Last().Variant)
	assert.Nil(t, a.CurrentUser())

	got, err := a.Login(ctx, "Owl", DemoPassword)
	require.NoError(t, err)
	assert.True(t, got.LoggedIn)
	assert.Equal(t, "Owl", got.UserName)
	assert.Equal(t, VariantDefault, rec.Last().Variant)

	u := a.CurrentUser()
	require.NotNil(t, u)
	assert.Equal(t, got.UserID, u.ID)

	_, err = session.Update(d.Store, func(s *session.State) {
		s.SelectProject(models.Project{ID: 1, Title: "Online learning platform"})
		s.SelectTrouble(models.Trouble{ID: 1, ProjectID: 1}, "Technical issue")
	})
	require.NoError(t, err)

	require.NoError(t, a.Logout(ctx))
	s, err := d.Store.Load()
	require.NoError(t, err)
	assert.Equal(t, session.State{}, s)
	assert.Nil(t, a.CurrentUser())
}

func TestAuth_RegisterAndUpdate(t *testing.T) {
	srv := newTestServer(t)
	d, _ := newDeps(t, srv, Policy{})
	a := NewAuth(d)
	ctx := context.Background()

	got, err := a.Register(ctx, models.RegisterRequest{Name: "Heron", Password: "pw", ConfirmPassword: "pw", Categories: []string{"Education"}})
	require.NoError(t, err)
	assert.Equal(t, "Heron", got.UserName)

	_, err = a.Register(ctx, models.RegisterRequest{Name: "Owl", Password: "pw", ConfirmPassword: "pw"})
	assert.Equal(t, 409, client.StatusOf(err))

	u, err := a.UpdateUser(ctx, models.UserUpdate{Name: "Grey Heron"})
	require.NoError(t, err)
	assert.Equal(t, "Grey Heron", u.Name)
	assert.Equal(t, "Grey Heron", a.CurrentUser().Name)
}

func TestAuth_CurrentUserNeedsAllFields(t *testing.T) {
	d, _ := newDeps(t, nil, Policy{})
	a := NewAuth(d)
	require.NoError(t, d.Store.Save(session.State{Auth: session.Auth{Token: "t", UserName: "Owl", LoggedIn: true}}))
	assert.Nil(t, a.CurrentUser())
	require.NoError(t, d.Store.Save(session.State{Auth: session.Auth{Token: "t", UserID: 1, UserName: "Owl"}}))
	assert.NotNil(t, a.CurrentUser())
}

func TestAuth_Offline(t *testing.T) {
	d, _ := newDeps(t, nil, Policy{Offline: true})
	a := NewAuth(d)
	ctx := context.Background()

	got, err := a.Login(ctx, "fox", DemoPassword)
	require.NoError(t, err)
	assert.Equal(t, "dummy-token-2", got.Token)
	assert.Equal(t, int64(2), got.UserID)

	_, err = a.Login(ctx, "Fox", "wrong")
	require.Error(t, err)

	_, err = a.Register(ctx, models.RegisterRequest{Name: "Bear", Password: "x", ConfirmPassword: "x"})
	assert.True(t, IsValidation(err))

	got, err = a.Register(ctx, models.RegisterRequest{Name: "Lynx", Password: "x", ConfirmPassword: "x"})
	require.NoError(t, err)
	assert.Equal(t, int64(6), got.UserID)

	_, err = a.Login(ctx, "Lynx", "x")
	require.NoError(t, err)
}

func TestBoard_LoadAndToggle(t *testing.T) {
	srv := newTestServer(t)
	d, rec := newDeps(t, srv, Policy{})
	login(t, d, "Fox")
	b := NewBoard(d)
	ctx := context.Background()

	require.NoError(t, b.Load(ctx, 5))
	assert.False(t, b.Fallback)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids(b.New))
	assert.Equal(t, []int64{3, 1}, ids(b.Favorites))

	fav, err := b.ToggleFavorite(ctx, 2)
	require.NoError(t, err)
	assert.True(t, fav)
	assert.Equal(t, []int64{2, 3, 1}, ids(b.Favorites))
	assert.NotContains(t, ids(b.New), int64(2))
	assert.Equal(t, "Added to favorites", rec.Last().Title)

	fav, err = b.ToggleFavorite(ctx, 3)
	require.NoError(t, err)
	assert.False(t, fav)
	assert.Equal(t, []int64{2, 1}, ids(b.Favorites))
	assert.Equal(t, int64(3), b.New[0].ID)
	assert.False(t, b.New[0].IsFavorite)

	require.NoError(t, b.Load(ctx, 5))
	assert.Equal(t, []int64{2, 1}, ids(b.Favorites))

	_, err = b.ToggleFavorite(ctx, 999)
	require.Error(t, err)
}

func TestBoard_FallbackAndEmpty(t *testing.T) {
	ctx := context.Background()

	d, rec := newDeps(t, nil, Policy{FallbackData: true})
	require.NoError(t, d.Store.Save(session.State{Auth: session.Auth{Token: "t", UserID: 1, UserName: "Owl"}}))
	b := NewBoard(d)
	require.NoError(t, b.Load(ctx, 5))
	assert.True(t, b.Fallback)
	assert.Len(t, b.New, 3)
	assert.Len(t, b.Favorites, 2)
	for _, p := range b.Favorites {
		assert.True(t, p.IsFavorite)
	}
	assert.Equal(t, VariantDestructive, rec.Toasts()[0].Variant)

	fav, err := b.ToggleFavorite(ctx, 101)
	require.NoError(t, err)
	assert.True(t, fav)
	assert.Equal(t, int64(101), b.Favorites[0].ID)

	cats, err := b.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, ProjectCategories, cats)

	d2, _ := newDeps(t, nil, Policy{})
	b2 := NewBoard(d2)
	err = b2.Load(ctx, 5)
	assert.ErrorIs(t, err, client.ErrUnauthenticated)
	assert.Empty(t, b2.New)
	assert.Empty(t, b2.Favorites)
}

func TestBoard_SelectAndCreate(t *testing.T) {
	srv := newTestServer(t)
	d, rec := newDeps(t, srv, Policy{})
	login(t, d, "Fox")
	b := NewBoard(d)
	ctx := context.Background()

	p, err := b.Project(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, b.Select(p))
	assert.Equal(t, "Project selected", rec.Last().Title)
	sel := b.Selected()
	require.NotNil(t, sel)
	assert.Equal(t, "Owl", sel.OwnerName)
	assert.Equal(t, "Education", sel.Category)

	_, err = session.Update(d.Store, func(s *session.State) {
		s.SelectTrouble(models.Trouble{ID: 1, ProjectID: 1}, "Technical issue")
	})
	require.NoError(t, err)

	_, err = b.CreateProject(ctx, models.NewProject{Title: " "})
	assert.True(t, IsValidation(err))

	created, err := b.CreateProject(ctx, models.NewProject{Title: "Garden share", Summary: "Shared plots", CategoryID: 5})
	require.NoError(t, err)
	assert.Equal(t, "Fox", created.OwnerName)
	assert.Equal(t, created.ID, b.New[0].ID)

	require.NoError(t, b.Select(created))
	s, err := d.Store.Load()
	require.NoError(t, err)
	assert.Nil(t, s.Trouble)

	mine, err := b.Mine(ctx)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestTroubleList_RequiresProject(t *testing.T) {
	d, rec := newDeps(t, nil, Policy{})
	l := NewTroubleList(d)
	err := l.Load(context.Background())
	assert.ErrorIs(t, err, ErrNoProjectSelected)
	assert.Equal(t, VariantDestructive, rec.Last().Variant)

	_, err = l.Participants(context.Background())
	assert.ErrorIs(t, err, ErrNoTroubleSelected)
}

func TestTroubleList_LoadFilterCreate(t *testing.T) {
	srv := newTestServer(t)
	d, _ := newDeps(t, srv, Policy{})
	login(t, d, "Owl")
	ctx := context.Background()

	b := NewBoard(d)
	p, err := b.Project(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, b.Select(p))

	l := NewTroubleList(d)
	require.NoError(t, l.Load(ctx))
	require.Len(t, l.Items, 2)
	assert.Equal(t, "Technical issue", l.Items[0].Category)
	assert.Equal(t, "UI/UX design", l.Items[1].Category)
	assert.Len(t, l.Categories, 5)

	assert.Len(t, l.Filter("ui/ux design", ""), 1)
	assert.Len(t, l.Filter("", models.TroubleInProgress), 1)
	assert.Empty(t, l.Filter("Technical issue", models.TroubleResolved))
	assert.Len(t, l.Filter("", ""), 2)

	_, err = l.Create(ctx, models.NewTrouble{CategoryID: 2})
	assert.True(t, IsValidation(err))

	it, err := l.Create(ctx, models.NewTrouble{CategoryID: 2, Description: "Need a roadmap"})
	require.NoError(t, err)
	assert.Equal(t, models.TroubleUnresolved, it.Status)
	assert.Equal(t, "Design & planning", it.Category)
	assert.Len(t, l.Items, 3)

	require.NoError(t, l.Select(it))
	upd, err := l.UpdateStatus(ctx, it.ID, models.TroubleResolved)
	require.NoError(t, err)
	assert.Equal(t, models.TroubleResolved, upd.Status)
	s, err := d.Store.Load()
	require.NoError(t, err)
	assert.Equal(t, models.TroubleResolved, s.Trouble.Status)

	_, err = l.UpdateStatus(ctx, it.ID, "done")
	assert.True(t, IsValidation(err))

	ps, err := l.Participants(ctx)
	require.NoError(t, err)
	require.Len(t, ps, 1)
	assert.Equal(t, models.RoleOwner, ps[0].Role)
}

func TestTroubleList_Fallbacks(t *testing.T) {
	d, _ := newDeps(t, nil, Policy{FallbackData: true})
	require.NoError(t, d.Store.Save(session.State{
		Auth:    session.Auth{Token: "t", UserID: 1, UserName: "Owl"},
		Project: &session.ProjectSelection{ID: 1, Title: "x"},
		Trouble: &session.TroubleSelection{ID: 1, ProjectID: 1},
	}))
	l := NewTroubleList(d)
	require.NoError(t, l.Load(context.Background()))
	assert.Equal(t, TroubleCategories, l.Categories)
	assert.Empty(t, l.Items)

	ps, err := l.Participants(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DummyParticipants(), ps)
}

func TestThread_LoadSendReply(t *testing.T) {
	srv := newTestServer(t)
	d, rec := newDeps(t, srv, Policy{})
	me := login(t, d, "Raccoon")
	ctx := context.Background()

	th := NewThread(d)
	assert.ErrorIs(t, th.Load(ctx, 0), ErrNoTroubleSelected)

	require.NoError(t, th.Load(ctx, 1))
	require.Len(t, th.Messages, 2)
	assert.Equal(t, "Owl", th.Messages[0].SenderName)
	assert.Equal(t, th.Messages[0].ID, th.Messages[1].ParentMessageID)
	assert.NotEmpty(t, th.QuotePreview(th.Messages[1]))
	assert.Empty(t, th.QuotePreview(th.Messages[0]))
	assert.False(t, th.IsOwn(th.Messages[0]))

	n := len(rec.Toasts())
	m, err := th.SendText(ctx, "  \n\t", 0)
	require.NoError(t, err)
	assert.Nil(t, m)
	assert.Len(t, rec.Toasts(), n)

	th.SetDraft("I can test on my phone")
	th.ReplyTo(th.Messages[1])
	m, err = th.Send(ctx)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, th.Messages[1].ID, m.ParentMessageID)
	assert.Equal(t, me.UserID, m.SenderUserID)
	assert.True(t, th.IsOwn(*m))
	assert.Empty(t, th.Draft)
	assert.Nil(t, th.ReplyTarget)
	assert.Len(t, th.Messages, 3)
	assert.Equal(t, "Message sent", rec.Last().Title)

	_, err = session.Update(d.Store, func(s *session.State) {
		s.SelectTrouble(models.Trouble{ID: 1, ProjectID: 1}, "Technical issue")
	})
	require.NoError(t, err)
	fresh := NewThread(d)
	require.NoError(t, fresh.Load(ctx, 0))
	require.Len(t, fresh.Messages, 3)
	assert.Equal(t, m.ID, fresh.Messages[2].ID)
	assert.Equal(t, m.Content, fresh.Messages[2].Content)
}

func TestThread_EmptyAndDemo(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	d, _ := newDeps(t, srv, Policy{})
	login(t, d, "Owl")
	th := NewThread(d)
	require.NoError(t, th.Load(ctx, 2))
	assert.Empty(t, th.Messages)
	assert.False(t, th.Demo)

	d.Policy.DemoConversation = true
	th = NewThread(d)
	require.NoError(t, th.Load(ctx, 2))
	assert.True(t, th.Demo)
	assert.Equal(t, DemoConversation(2, fixedNow), th.Messages)

	m, err := th.SendText(ctx, "first real message", 0)
	require.NoError(t, err)
	assert.False(t, th.Demo)
	assert.Equal(t, []models.Message{*m}, th.Messages)
}

func TestThread_FailureAndPlaceholder(t *testing.T) {
	ctx := context.Background()
	d, rec := newDeps(t, nil, Policy{})
	require.NoError(t, d.Store.Save(session.State{Auth: session.Auth{Token: "t", UserID: 4, UserName: "Bear"}}))

	th := NewThread(d)
	require.Error(t, th.Load(ctx, 7))
	assert.Empty(t, th.Messages)
	assert.Equal(t, VariantDestructive, rec.Last().Variant)

	th.SetDraft("hello")
	m, err := th.Send(ctx)
	require.Error(t, err)
	assert.Nil(t, m)
	assert.Equal(t, "hello", th.Draft)

	d.Policy.DevPlaceholders = true
	th = NewThread(d)
	th.TroubleID = 7
	th.ReplyTo(models.Message{ID: 1, TroubleID: 7, Content: "earlier"})
	th.SetDraft("hello")
	m, err = th.Send(ctx)
	require.Error(t, err)
	require.NotNil(t, m)
	assert.True(t, m.Placeholder)
	assert.Equal(t, fixedNow.UnixMilli(), m.ID)
	assert.Equal(t, int64(1), m.ParentMessageID)
	assert.Equal(t, "Bear", m.SenderName)
	assert.Empty(t, th.Draft)
	assert.Nil(t, th.ReplyTarget)
	assert.Len(t, th.Messages, 1)
	assert.True(t, th.IsOwn(th.Messages[0]))
}

func TestThread_PlaceholderReplacesDemo(t *testing.T) {
	ctx := context.Background()
	d, _ := newDeps(t, nil, Policy{DevPlaceholders: true, DemoConversation: true})
	require.NoError(t, d.Store.Save(session.State{Auth: session.Auth{Token: "t", UserID: 4, UserName: "Bear"}}))

	th := NewThread(d)
	require.NoError(t, th.Load(ctx, 7))
	require.True(t, th.Demo)
	require.NotEmpty(t, th.Messages)

	m, err := th.SendText(ctx, "hi", 0)
	require.Error(t, err)
	require.NotNil(t, m)
	assert.False(t, th.Demo)
	assert.Equal(t, []models.Message{*m}, th.Messages)
}

func TestThread_ResolveParentAndQuote(t *testing.T) {
	long := "This message is deliberately long so the quoted preview has to be cut somewhere"
	th := &Thread{Messages: []models.Message{
		{ID: 10, Content: long},
		{ID: 11, Content: "reply", ParentMessageID: 10},
		{ID: 12, Content: "dangling", ParentMessageID: 99},
	}}
	assert.Nil(t, th.ResolveParent(0))
	assert.Nil(t, th.ResolveParent(99))
	require.NotNil(t, th.ResolveParent(10))

	q := th.QuotePreview(th.Messages[1])
	assert.Equal(t, []rune(long)[:QuoteLen], []rune(q)[:QuoteLen])
	assert.Equal(t, "...", q[len(q)-3:])
	assert.Empty(t, th.QuotePreview(th.Messages[2]))

	th.ReplyTo(th.Messages[0])
	require.NotNil(t, th.ReplyTarget)
	assert.Equal(t, int64(10), th.ReplyTarget.ID)
	th.CancelReply()
	assert.Nil(t, th.ReplyTarget)
}

func TestCategoryName(t *testing.T) {
	assert.Equal(t, "UI/UX design", CategoryName(TroubleCategories, 3))
	assert.Equal(t, UnknownCategory, CategoryName(TroubleCategories, 42))
}
