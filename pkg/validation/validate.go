package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"cocreate/pkg/models"
)

// MaxNameLen bounds user names.
const MaxNameLen = 64

// Error collects every violation found in one request body.
type Error struct {
	Problems []string
}

func (e *Error) Error() string { return strings.Join(e.Problems, "; ") }

// IsValidation reports whether err is a *Error.
func IsValidation(err error) bool {
	var v *Error
	return errors.As(err, &v)
}

type checker struct{ errs []string }

func (c *checker) require(field, v string) {
	if strings.TrimSpace(v) == "" {
		c.errs = append(c.errs, field+" is required")
	}
}

func (c *checker) maxLen(field, v string, max int) {
	if n := utf8.RuneCountInString(v); max > 0 && n > max {
		c.errs = append(c.errs, fmt.Sprintf("%s too long: %d > %d", field, n, max))
	}
}

func (c *checker) positive(field string, v int64) {
	if v <= 0 {
		c.errs = append(c.errs, field+" is required")
	}
}

func (c *checker) err() error {
	if len(c.errs) == 0 {
		return nil
	}
	return &Error{Problems: c.errs}
}

func ValidateLogin(req models.LoginRequest) error {
	var c checker
	c.require("username", req.Username)
	c.require("password", req.Password)
	return c.err()
}

func ValidateRegister(req models.RegisterRequest) error {
	var c checker
	c.require("name", req.Name)
	c.maxLen("name", req.Name, MaxNameLen)
	c.require("password", req.Password)
	c.require("confirm_password", req.ConfirmPassword)
	if req.Password != "" && req.ConfirmPassword != "" && req.Password != req.ConfirmPassword {
		c.errs = append(c.errs, "passwords do not match")
	}
	return c.err()
}

func ValidateUserUpdate(req models.UserUpdate) error {
	var c checker
	if req.Name == "" && req.Password == "" {
		c.errs = append(c.errs, "nothing to update")
	}
	c.maxLen("name", req.Name, MaxNameLen)
	if req.Password != req.ConfirmPassword {
		c.errs = append(c.errs, "passwords do not match")
	}
	return c.err()
}

func ValidateProject(req models.NewProject) error {
	var c checker
	c.require("title", req.Title)
	c.maxLen("title", req.Title, 200)
	c.positive("category_id", req.CategoryID)
	return c.err()
}

func ValidateTrouble(req models.NewTrouble) error {
	var c checker
	c.positive("project_id", req.ProjectID)
	c.positive("category_id", req.CategoryID)
	c.require("description", req.Description)
	if req.Status != "" && !models.ValidTroubleStatus(req.Status) {
		c.errs = append(c.errs, fmt.Sprintf("invalid status %q", req.Status))
	}
	return c.err()
}

func ValidateStatus(req models.StatusUpdate) error {
	if !models.ValidTroubleStatus(req.Status) {
		return &Error{Problems: []string{fmt.Sprintf("invalid status %q", req.Status)}}
	}
	return nil
}

// ValidateMessage checks a new message; maxLen <= 0 disables the length check.
func ValidateMessage(m models.NewMessage, maxLen int) error {
	var c checker
	c.positive("trouble_id", m.TroubleID)
	c.require("content", m.Content)
	c.maxLen("content", m.Content, maxLen)
	if m.ParentMessageID < 0 {
		c.errs = append(c.errs, "parent_message_id must be positive")
	}
	return c.err()
}
