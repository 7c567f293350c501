// Package frontend implements the pages of the co-creation client: login
// and registration, the project board, a project's trouble list and a
// trouble's message thread. Pages share state through a session.Store and
// report outcomes as toasts.
package frontend

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"cocreate/pkg/client"
	"cocreate/pkg/logger"
	"cocreate/pkg/session"
)

// Variant is a toast's visual style.
type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Toast is a short notification shown to the user.
type Toast struct {
	Title       string
	Description string
	Variant     Variant
}

// Notifier displays toasts.
type Notifier interface {
	Notify(Toast)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Toast)

func (f NotifierFunc) Notify(t Toast) { f(t) }

// Recorder collects toasts in memory.
type Recorder struct {
	mu     sync.Mutex
	toasts []Toast
}

func (r *Recorder) Notify(t Toast) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = append(r.toasts, t)
}

// Toasts returns a copy of everything recorded so far.
func (r *Recorder) Toasts() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Toast(nil), r.toasts...)
}

// Last returns the most recent toast, or the zero Toast.
func (r *Recorder) Last() Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.toasts) == 0 {
		return Toast{}
	}
	return r.toasts[len(r.toasts)-1]
}

// Policy selects how pages behave when the API is unavailable.
type Policy struct {
	// FallbackData substitutes built-in projects, categories and
	// participants when a list cannot be fetched.
	FallbackData bool
	// DemoConversation shows a fixed conversation when a thread is empty or
	// cannot be fetched.
	DemoConversation bool
	// DevPlaceholders appends a local placeholder when sending fails.
	DevPlaceholders bool
	// Offline authenticates against the built-in users instead of the API.
	Offline bool
}

// ValidationError is input rejected before any request was made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

var (
	ErrNoProjectSelected = errors.New("no project selected")
	ErrNoTroubleSelected = errors.New("no trouble selected")
)

// Deps are the collaborators every page uses.
type Deps struct {
	Client   *client.Client
	Store    session.Store
	Notifier Notifier
	Policy   Policy
	// Now defaults to time.Now.
	Now func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Deps) notify(title, desc string) {
	if d.Notifier != nil {
		d.Notifier.Notify(Toast{Title: title, Description: desc, Variant: VariantDefault})
	}
}

func (d Deps) fail(title string, err error) {
	if d.Notifier != nil {
		d.Notifier.Notify(Toast{Title: title, Description: err.Error(), Variant: VariantDestructive})
	}
}

// state loads the session state.
func (d Deps) state() (session.State, error) {
	if d.Store == nil {
		return session.State{}, errors.New("no session store")
	}
	return d.Store.Load()
}

// authed loads the state, requires a valid session and hands its token to
// the client.
func (d Deps) authed() (session.State, error) {
	s, err := d.state()
	if err != nil {
		return s, err
	}
	if !s.Auth.Valid() {
		return s, client.ErrUnauthenticated
	}
	if d.Client != nil {
		d.Client.SetToken(s.Auth.Token)
	}
	return s, nil
}

func logFailure(event string, err error, args ...any) {
	logger.Warn(event, append([]any{"error", err}, args...)...)
}
