package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"cocreate/pkg/models"
)

// Login exchanges credentials for a session. The token is kept on the
// client for subsequent calls.
func (c *Client) Login(ctx context.Context, username, password string) (models.TokenResponse, error) {
	var tok models.TokenResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", nil, false, models.LoginRequest{Username: username, Password: password}, &tok)
	if err == nil {
		c.token = tok.AccessToken
	}
	return tok, err
}

// Register creates an account and keeps the returned session token.
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (models.TokenResponse, error) {
	var tok models.TokenResponse
	err := c.do(ctx, http.MethodPost, "/auth/register", nil, false, req, &tok)
	if err == nil {
		c.token = tok.AccessToken
	}
	return tok, err
}

// Logout revokes the session and forgets the token even if the call fails.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/auth/logout", nil, true, nil, nil)
	c.token = ""
	return err
}

func (c *Client) Me(ctx context.Context) (models.User, error) {
	var u models.User
	err := c.do(ctx, http.MethodGet, "/auth/me", nil, true, nil, &u)
	return u, err
}

func (c *Client) UpdateMe(ctx context.Context, req models.UserUpdate) (models.User, error) {
	var u models.User
	err := c.do(ctx, http.MethodPut, "/users/me", nil, true, req, &u)
	return u, err
}

func (c *Client) ProjectCategories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	err := c.do(ctx, http.MethodGet, "/project-categories", nil, true, nil, &out)
	return out, err
}

func limitQuery(limit int) url.Values {
	if limit <= 0 {
		return nil
	}
	return url.Values{"limit": {strconv.Itoa(limit)}}
}

func (c *Client) RecentProjects(ctx context.Context, limit int) ([]models.Project, error) {
	var out []models.Project
	err := c.do(ctx, http.MethodGet, "/projects/recent", limitQuery(limit), true, nil, &out)
	return out, err
}

func (c *Client) FavoriteProjects(ctx context.Context, limit int) ([]models.Project, error) {
	var out []models.Project
	err := c.do(ctx, http.MethodGet, "/projects/favorites", limitQuery(limit), true, nil, &out)
	return out, err
}

func (c *Client) MyProjects(ctx context.Context) ([]models.Project, error) {
	var out []models.Project
	err := c.do(ctx, http.MethodGet, "/projects/user", nil, true, nil, &out)
	return out, err
}

func (c *Client) Project(ctx context.Context, id int64) (models.Project, error) {
	var p models.Project
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/projects/%d", id), nil, true, nil, &p)
	return p, err
}

func (c *Client) CreateProject(ctx context.Context, req models.NewProject) (models.CreatedProject, error) {
	var out models.CreatedProject
	err := c.do(ctx, http.MethodPost, "/projects", nil, true, req, &out)
	return out, err
}

// SetFavorite adds (POST) or removes (DELETE) a favorite.
func (c *Client) SetFavorite(ctx context.Context, projectID int64, favorite bool) (models.FavoriteResult, error) {
	method := http.MethodPost
	if !favorite {
		method = http.MethodDelete
	}
	var out models.FavoriteResult
	err := c.do(ctx, method, fmt.Sprintf("/projects/%d/favorite", projectID), nil, true, nil, &out)
	return out, err
}

func (c *Client) TroubleCategories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	err := c.do(ctx, http.MethodGet, "/trouble-categories", nil, true, nil, &out)
	return out, err
}

func (c *Client) Troubles(ctx context.Context, projectID int64) (models.TroubleList, error) {
	var out models.TroubleList
	q := url.Values{"project_id": {strconv.FormatInt(projectID, 10)}}
	err := c.do(ctx, http.MethodGet, "/troubles", q, true, nil, &out)
	return out, err
}

func (c *Client) Trouble(ctx context.Context, id int64) (models.Trouble, error) {
	var t models.Trouble
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/troubles/%d", id), nil, true, nil, &t)
	return t, err
}

func (c *Client) CreateTrouble(ctx context.Context, req models.NewTrouble) (models.Trouble, error) {
	var t models.Trouble
	err := c.do(ctx, http.MethodPost, "/troubles", nil, true, req, &t)
	return t, err
}

func (c *Client) UpdateTroubleStatus(ctx context.Context, id int64, status string) (models.Trouble, error) {
	var t models.Trouble
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/troubles/%d/status", id), nil, true, models.StatusUpdate{Status: status}, &t)
	return t, err
}

func (c *Client) Participants(ctx context.Context, troubleID int64) ([]models.Participant, error) {
	var out []models.Participant
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/troubles/%d/participants", troubleID), nil, true, nil, &out)
	return out, err
}

func (c *Client) Messages(ctx context.Context, troubleID int64) (models.MessageList, error) {
	var out models.MessageList
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/messages/trouble/%d", troubleID), nil, true, nil, &out)
	return out, err
}

func (c *Client) SendMessage(ctx context.Context, req models.NewMessage) (models.Message, error) {
	var m models.Message
	err := c.do(ctx, http.MethodPost, "/messages", nil, true, req, &m)
	return m, err
}
