package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"cocreate/pkg/auth"
	"cocreate/pkg/config"
	"cocreate/pkg/models"
	"cocreate/pkg/store"
)

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()
	config.SetRuntime(&config.RuntimeConfig{BcryptCost: bcrypt.MinCost})
	if err := store.Open(t.TempDir()); err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	if err := store.SeedDefaults(true, auth.HashPassword); err != nil {
		t.Fatalf("SeedDefaults: %v", err)
	}
	srv := httptest.NewServer(Handler())
	t.Cleanup(func() {
		srv.Close()
		_ = store.Close()
		config.SetRuntime(nil)
	})
	return srv
}

// do sends a request and decodes a JSON response into out when non-nil.
func do(t *testing.T, srv *httptest.Server, method, path, token string, body interface{}, out interface{}) int {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req, _ := http.NewRequest(method, srv.URL+path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func loginAs(t *testing.T, srv *httptest.Server, name string) models.TokenResponse {
	t.Helper()
	var tok models.TokenResponse
	code := do(t, srv, http.MethodPost, Prefix+"/auth/login", "", models.LoginRequest{Username: name, Password: store.DemoPassword}, &tok)
	if code != http.StatusOK {
		t.Fatalf("login %s: status %d", name, code)
	}
	if tok.AccessToken == "" || tok.TokenType != "bearer" {
		t.Fatalf("unexpected token response: %+v", tok)
	}
	return tok
}

func TestAuthFlow(t *testing.T) {
	srv := setupServer(t)

	var e models.ErrorResponse
	if code := do(t, srv, http.MethodPost, Prefix+"/auth/login", "", models.LoginRequest{Username: "Owl", Password: "nope"}, &e); code != http.StatusUnauthorized {
		t.Fatalf("bad password: expected 401 got %d", code)
	}
	if e.Detail == "" {
		t.Fatalf("expected error detail")
	}

	// query-string form
	resp, err := srv.Client().Post(srv.URL+Prefix+"/auth/login?username=Owl&password=password", "", nil)
	if err != nil {
		t.Fatalf("query login: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("query login: expected 200 got %d", resp.StatusCode)
	}

	var reg models.TokenResponse
	code := do(t, srv, http.MethodPost, Prefix+"/auth/register", "", models.RegisterRequest{
		Name: "Heron", Password: "pw", ConfirmPassword: "pw", Categories: []string{"Education"},
	}, &reg)
	if code != http.StatusCreated {
		t.Fatalf("register: expected 201 got %d", code)
	}
	if reg.UserName != "Heron" {
		t.Fatalf("register: unexpected user %q", reg.UserName)
	}
	if code := do(t, srv, http.MethodPost, Prefix+"/auth/register", "", models.RegisterRequest{
		Name: "heron", Password: "pw", ConfirmPassword: "pw",
	}, nil); code != http.StatusConflict {
		t.Fatalf("duplicate register: expected 409 got %d", code)
	}
	if code := do(t, srv, http.MethodPost, Prefix+"/auth/register", "", models.RegisterRequest{
		Name: "Egret", Password: "a", ConfirmPassword: "b",
	}, nil); code != http.StatusBadRequest {
		t.Fatalf("mismatched passwords: expected 400 got %d", code)
	}

	var u models.User
	if code := do(t, srv, http.MethodGet, Prefix+"/auth/me", reg.AccessToken, nil, &u); code != http.StatusOK {
		t.Fatalf("me: expected 200 got %d", code)
	}
	if u.Name != "Heron" || u.PasswordHash != "" {
		t.Fatalf("me: unexpected user %+v", u)
	}

	if code := do(t, srv, http.MethodPost, Prefix+"/auth/logout", reg.AccessToken, nil, nil); code != http.StatusNoContent {
		t.Fatalf("logout: expected 204 got %d", code)
	}
	if code := do(t, srv, http.MethodGet, Prefix+"/auth/me", reg.AccessToken, nil, nil); code != http.StatusUnauthorized {
		t.Fatalf("me after logout: expected 401 got %d", code)
	}
	if code := do(t, srv, http.MethodGet, Prefix+"/projects/recent", "", nil, nil); code != http.StatusUnauthorized {
		t.Fatalf("anonymous projects: expected 401 got %d", code)
	}
}

func TestProjectsAndFavorites(t *testing.T) {
	srv := setupServer(t)
	tok := loginAs(t, srv, "Fox").AccessToken

	var cats []models.Category
	if code := do(t, srv, http.MethodGet, Prefix+"/project-categories", tok, nil, &cats); code != http.StatusOK || len(cats) != len(store.DefaultProjectCategories) {
		t.Fatalf("categories: status %d, %d entries", code, len(cats))
	}

	var recent []models.Project
	do(t, srv, http.MethodGet, Prefix+"/projects/recent?limit=10", tok, nil, &recent)
	if len(recent) != 5 {
		t.Fatalf("recent: expected 5 got %d", len(recent))
	}
	for i := 1; i < len(recent); i++ {
		if recent[i].CreatedAt.After(recent[i-1].CreatedAt) {
			t.Fatalf("recent not newest first at %d", i)
		}
	}

	var favs []models.Project
	do(t, srv, http.MethodGet, Prefix+"/projects/favorites", tok, nil, &favs)
	if len(favs) != 2 {
		t.Fatalf("favorites: expected 2 got %d", len(favs))
	}
	for _, p := range favs {
		if !p.IsFavorite {
			t.Fatalf("favorite %d not marked", p.ID)
		}
	}

	var created models.CreatedProject
	code := do(t, srv, http.MethodPost, Prefix+"/projects", tok, models.NewProject{
		Title: "Garden share", Summary: "Plots for neighbours", CategoryID: 2,
	}, &created)
	if code != http.StatusCreated || created.ProjectID == 0 {
		t.Fatalf("create project: status %d id %d", code, created.ProjectID)
	}
	if code := do(t, srv, http.MethodPost, Prefix+"/projects", tok, models.NewProject{CategoryID: 2}, nil); code != http.StatusBadRequest {
		t.Fatalf("create without title: expected 400 got %d", code)
	}

	path := fmt.Sprintf("%s/projects/%d/favorite", Prefix, created.ProjectID)
	var fr models.FavoriteResult
	if code := do(t, srv, http.MethodPost, path, tok, nil, &fr); code != http.StatusOK || !fr.IsFavorite {
		t.Fatalf("favorite: status %d result %+v", code, fr)
	}
	// idempotent
	if code := do(t, srv, http.MethodPost, path, tok, nil, &fr); code != http.StatusOK || !fr.IsFavorite {
		t.Fatalf("favorite again: status %d result %+v", code, fr)
	}
	do(t, srv, http.MethodGet, Prefix+"/projects/favorites", tok, nil, &favs)
	if len(favs) != 3 || favs[0].ID != created.ProjectID {
		t.Fatalf("expected new favorite first, got %+v", favs)
	}
	if code := do(t, srv, http.MethodDelete, path, tok, nil, &fr); code != http.StatusOK || fr.IsFavorite {
		t.Fatalf("unfavorite: status %d result %+v", code, fr)
	}
	if code := do(t, srv, http.MethodPost, Prefix+"/projects/9999/favorite", tok, nil, nil); code != http.StatusNotFound {
		t.Fatalf("favorite unknown: expected 404 got %d", code)
	}

	var own []models.Project
	do(t, srv, http.MethodGet, Prefix+"/projects/user", tok, nil, &own)
	if len(own) != 2 {
		t.Fatalf("own projects: expected 2 got %d", len(own))
	}
}

func TestTroublesAndMessages(t *testing.T) {
	srv := setupServer(t)
	owl := loginAs(t, srv, "Owl")
	fox := loginAs(t, srv, "Fox")

	if code := do(t, srv, http.MethodGet, Prefix+"/troubles", owl.AccessToken, nil, nil); code != http.StatusBadRequest {
		t.Fatalf("troubles without project: expected 400 got %d", code)
	}
	var list models.TroubleList
	do(t, srv, http.MethodGet, Prefix+"/troubles?project_id=1", owl.AccessToken, nil, &list)
	if list.Total != 2 || len(list.Troubles) != 2 {
		t.Fatalf("troubles: expected 2 got %+v", list)
	}

	var tr models.Trouble
	code := do(t, srv, http.MethodPost, Prefix+"/troubles", fox.AccessToken, models.NewTrouble{
		ProjectID: 1, CategoryID: 2, Description: "Need a roadmap",
	}, &tr)
	if code != http.StatusCreated || tr.Status != models.TroubleUnresolved || tr.CreatorName != "Fox" {
		t.Fatalf("create trouble: status %d trouble %+v", code, tr)
	}
	resp, err := srv.Client().Do(mustReq(t, http.MethodPost,
		srv.URL+Prefix+"/troubles/simple?project_id=2&category_id=1&description=Slow+build", fox.AccessToken))
	if err != nil {
		t.Fatalf("simple trouble: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("simple trouble: expected 201 got %d", resp.StatusCode)
	}

	// only the creator or project owner may change status
	statusPath := fmt.Sprintf("%s/troubles/%d/status", Prefix, list.Troubles[0].ID)
	if code := do(t, srv, http.MethodPut, statusPath, fox.AccessToken, models.StatusUpdate{Status: models.TroubleResolved}, nil); code != http.StatusForbidden {
		t.Fatalf("status by stranger: expected 403 got %d", code)
	}
	if code := do(t, srv, http.MethodPut, statusPath, owl.AccessToken, models.StatusUpdate{Status: "done"}, nil); code != http.StatusBadRequest {
		t.Fatalf("bad status: expected 400 got %d", code)
	}
	var updated models.Trouble
	if code := do(t, srv, http.MethodPut, statusPath, owl.AccessToken, models.StatusUpdate{Status: models.TroubleResolved}, &updated); code != http.StatusOK || updated.Status != models.TroubleResolved {
		t.Fatalf("status by owner: status %d trouble %+v", code, updated)
	}

	var msgs models.MessageList
	do(t, srv, http.MethodGet, fmt.Sprintf("%s/messages/trouble/%d", Prefix, tr.ID), owl.AccessToken, nil, &msgs)
	if msgs.Total != 0 || len(msgs.Messages) != 0 {
		t.Fatalf("expected empty thread, got %+v", msgs)
	}

	var first, reply models.Message
	if code := do(t, srv, http.MethodPost, Prefix+"/messages", owl.AccessToken, models.NewMessage{TroubleID: tr.ID, Content: "Start with milestones"}, &first); code != http.StatusCreated {
		t.Fatalf("post message: expected 201 got %d", code)
	}
	if first.SenderName != "Owl" || first.SenderUserID != owl.UserID {
		t.Fatalf("sender not taken from session: %+v", first)
	}
	if code := do(t, srv, http.MethodPost, Prefix+"/messages", fox.AccessToken, models.NewMessage{TroubleID: tr.ID, Content: "Agreed", ParentMessageID: first.ID}, &reply); code != http.StatusCreated {
		t.Fatalf("post reply: expected 201 got %d", code)
	}
	if reply.ParentMessageID != first.ID {
		t.Fatalf("reply parent: expected %d got %d", first.ID, reply.ParentMessageID)
	}
	if code := do(t, srv, http.MethodPost, Prefix+"/messages", fox.AccessToken, models.NewMessage{TroubleID: tr.ID, Content: "   "}, nil); code != http.StatusBadRequest {
		t.Fatalf("blank message: expected 400 got %d", code)
	}
	if code := do(t, srv, http.MethodPost, Prefix+"/messages", fox.AccessToken, models.NewMessage{TroubleID: 1, Content: "x", ParentMessageID: first.ID}, nil); code != http.StatusBadRequest {
		t.Fatalf("cross-trouble parent: expected 400 got %d", code)
	}
	if code := do(t, srv, http.MethodPost, Prefix+"/messages", fox.AccessToken, models.NewMessage{TroubleID: tr.ID, Content: "x", ParentMessageID: 987654}, nil); code != http.StatusBadRequest {
		t.Fatalf("unknown parent: expected 400 got %d", code)
	}
	if code := do(t, srv, http.MethodPost, Prefix+"/messages", fox.AccessToken, models.NewMessage{TroubleID: 9999, Content: "x"}, nil); code != http.StatusNotFound {
		t.Fatalf("unknown trouble: expected 404 got %d", code)
	}

	do(t, srv, http.MethodGet, fmt.Sprintf("%s/messages/trouble/%d", Prefix, tr.ID), owl.AccessToken, nil, &msgs)
	if msgs.Total != 2 || msgs.Messages[0].ID != first.ID || msgs.Messages[1].ID != reply.ID {
		t.Fatalf("thread order: %+v", msgs)
	}

	var parts []models.Participant
	do(t, srv, http.MethodGet, fmt.Sprintf("%s/troubles/%d/participants", Prefix, tr.ID), owl.AccessToken, nil, &parts)
	if len(parts) != 2 {
		t.Fatalf("participants: expected 2 got %+v", parts)
	}
	if parts[0].Name != "Owl" || parts[0].Role != models.RoleOwner || parts[0].Avatar != "O" {
		t.Fatalf("owner entry: %+v", parts[0])
	}
	if parts[1].Name != "Fox" || parts[1].Role != models.RoleSupporter {
		t.Fatalf("supporter entry: %+v", parts[1])
	}
}

func TestUnknownRouteIsJSON(t *testing.T) {
	srv := setupServer(t)
	var e models.ErrorResponse
	if code := do(t, srv, http.MethodGet, Prefix+"/nope", "", nil, &e); code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", code)
	}
	if e.Detail != "not found" {
		t.Fatalf("unexpected detail %q", e.Detail)
	}
}

func mustReq(t *testing.T, method, url, token string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}
