package frontend

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"cocreate/pkg/models"
	"cocreate/pkg/session"
)

// Auth logs users in and out, against the API or, under Policy.Offline,
// against the built-in users.
type Auth struct {
	Deps

	mu    sync.Mutex
	users []dummyUser
}

func NewAuth(d Deps) *Auth {
	return &Auth{Deps: d, users: defaultDummyUsers()}
}

// Login validates input, authenticates and stores the session.
func (a *Auth) Login(ctx context.Context, username, password string) (session.Auth, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return a.invalid("Login failed", &ValidationError{Field: "username", Message: "enter your username"})
	}
	if strings.TrimSpace(password) == "" {
		return a.invalid("Login failed", &ValidationError{Field: "password", Message: "enter your password"})
	}

	var (
		tok models.TokenResponse
		err error
	)
	if a.Policy.Offline {
		tok, err = a.dummyLogin(username, password)
	} else {
		tok, err = a.Client.Login(ctx, username, password)
	}
	if err != nil {
		logFailure("login_failed", err, "username", username)
		a.fail("Login failed", err)
		return session.Auth{}, err
	}
	s, err := session.Update(a.Store, func(s *session.State) { s.Login(tok) })
	if err != nil {
		a.fail("Login failed", err)
		return session.Auth{}, err
	}
	a.notify("Logged in", "Welcome, "+tok.UserName)
	return s.Auth, nil
}

// Register validates input, creates the account and logs it in.
func (a *Auth) Register(ctx context.Context, req models.RegisterRequest) (session.Auth, error) {
	req.Name = strings.TrimSpace(req.Name)
	switch {
	case req.Name == "":
		return a.invalid("Registration failed", &ValidationError{Field: "name", Message: "enter a name"})
	case strings.TrimSpace(req.Password) == "":
		return a.invalid("Registration failed", &ValidationError{Field: "password", Message: "enter a password"})
	case strings.TrimSpace(req.ConfirmPassword) == "":
		return a.invalid("Registration failed", &ValidationError{Field: "confirm_password", Message: "confirm your password"})
	case req.Password != req.ConfirmPassword:
		return a.invalid("Registration failed", &ValidationError{Field: "confirm_password", Message: "passwords do not match"})
	}

	var (
		tok models.TokenResponse
		err error
	)
	if a.Policy.Offline {
		tok, err = a.dummyRegister(req.Name, req.Password)
		if IsValidation(err) {
			return a.invalid("Registration failed", err)
		}
	} else {
		tok, err = a.Client.Register(ctx, req)
	}
	if err != nil {
		logFailure("register_failed", err, "name", req.Name)
		a.fail("Registration failed", err)
		return session.Auth{}, err
	}
	s, err := session.Update(a.Store, func(s *session.State) { s.Login(tok) })
	if err != nil {
		a.fail("Registration failed", err)
		return session.Auth{}, err
	}
	a.notify("Registered", "Welcome, "+tok.UserName)
	return s.Auth, nil
}

// Logout revokes the session (best effort) and clears all state.
func (a *Auth) Logout(ctx context.Context) error {
	if !a.Policy.Offline && a.Client != nil {
		if _, err := a.authed(); err == nil {
			if err := a.Client.Logout(ctx); err != nil {
				logFailure("logout_request_failed", err)
			}
		}
	}
	if err := a.Store.Clear(); err != nil {
		a.fail("Logout failed", err)
		return err
	}
	a.notify("Logged out", "")
	return nil
}

// CurrentUser returns the logged-in user, or nil unless token, id and name
// are all present.
func (a *Auth) CurrentUser() *models.User {
	s, err := a.state()
	if err != nil || !s.Auth.Valid() {
		return nil
	}
	return &models.User{ID: s.Auth.UserID, Name: s.Auth.UserName}
}

// UpdateUser renames the user and/or changes their password.
func (a *Auth) UpdateUser(ctx context.Context, req models.UserUpdate) (*models.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" && req.Password == "" {
		_, err := a.invalid("Update failed", &ValidationError{Message: "nothing to update"})
		return nil, err
	}
	if req.Password != req.ConfirmPassword {
		_, err := a.invalid("Update failed", &ValidationError{Field: "confirm_password", Message: "passwords do not match"})
		return nil, err
	}
	s, err := a.authed()
	if err != nil {
		a.fail("Update failed", err)
		return nil, err
	}

	var u models.User
	if a.Policy.Offline {
		u, err = a.dummyUpdate(s.Auth.UserID, req)
	} else {
		u, err = a.Client.UpdateMe(ctx, req)
	}
	if err != nil {
		logFailure("update_user_failed", err)
		a.fail("Update failed", err)
		return nil, err
	}
	if _, err := session.Update(a.Store, func(s *session.State) { s.Auth.UserName = u.Name }); err != nil {
		a.fail("Update failed", err)
		return nil, err
	}
	a.notify("Profile updated", u.Name)
	return &u, nil
}

func (a *Auth) invalid(title string, err error) (session.Auth, error) {
	a.fail(title, err)
	return session.Auth{}, err
}

func (a *Auth) dummyLogin(name, password string) (models.TokenResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, u := range a.users {
		if strings.EqualFold(u.Name, name) && u.Password == password {
			return dummyToken(u), nil
		}
	}
	return models.TokenResponse{}, fmt.Errorf("invalid username or password")
}

func (a *Auth) dummyRegister(name, password string) (models.TokenResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var maxID int64
	for _, u := range a.users {
		if strings.EqualFold(u.Name, name) {
			return models.TokenResponse{}, &ValidationError{Field: "name", Message: "name already taken"}
		}
		if u.ID > maxID {
			maxID = u.ID
		}
	}
	u := dummyUser{ID: maxID + 1, Name: name, Password: password}
	a.users = append(a.users, u)
	return dummyToken(u), nil
}

func (a *Auth) dummyUpdate(id int64, req models.UserUpdate) (models.User, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	idx := -1
	for i, u := range a.users {
		if u.ID == id {
			idx = i
		} else if req.Name != "" && strings.EqualFold(u.Name, req.Name) {
			return models.User{}, &ValidationError{Field: "name", Message: "name already taken"}
		}
	}
	if idx < 0 {
		return models.User{}, fmt.Errorf("user %d not found", id)
	}
	if req.Name != "" {
		a.users[idx].Name = req.Name
	}
	if req.Password != "" {
		a.users[idx].Password = req.Password
	}
	return models.User{ID: id, Name: a.users[idx].Name}, nil
}

func dummyToken(u dummyUser) models.TokenResponse {
	return models.TokenResponse{
		AccessToken: fmt.Sprintf("dummy-token-%d", u.ID),
		TokenType:   "bearer",
		UserID:      u.ID,
		UserName:    u.Name,
	}
}
