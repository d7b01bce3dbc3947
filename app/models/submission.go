package models

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Length limits for submitted text, counted in characters.
const (
	MaxTitleLength   = 30
	MaxMessageLength = 50000
)

var validate = validator.New()

// Submission is the user-supplied part of a new post.
type Submission struct {
	Title    string `validate:"required,max=30"`
	Message  string `validate:"required,max=50000"`
	ParentID string `validate:"required,alphanum,max=32"`
}

// Attachment describes a file that has been stored for a post.
type Attachment struct {
	Name        string
	ContentType string
	Size        int64
}

// ValidationError is a user-correctable problem with a submission.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Normalize trims the text fields and defaults the parent to a new thread.
func (s *Submission) Normalize() {
	s.Title = strings.TrimSpace(s.Title)
	s.Message = strings.TrimSpace(s.Message)
	s.ParentID = strings.TrimSpace(s.ParentID)
	if s.ParentID == "" {
		s.ParentID = RootParentID
	}
}

// Validate checks the submission and reports the first failure as a
// *ValidationError.
func (s *Submission) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	switch {
	case fe.Field() == "ParentID":
		return &ValidationError{Field: fe.Field(), Reason: "ParentID is invalid."}
	case fe.Tag() == "required":
		return &ValidationError{Field: fe.Field(), Reason: "Title and message are mandatory."}
	case fe.Tag() == "max":
		return &ValidationError{
			Field:  fe.Field(),
			Reason: fmt.Sprintf("%s is too long (maximum %s characters).", fe.Field(), fe.Param()),
		}
	default:
		return &ValidationError{Field: fe.Field(), Reason: fmt.Sprintf("%s is invalid.", fe.Field())}
	}
}

// Escaped returns the title and message made safe for embedding in HTML.
func (s *Submission) Escaped() (title, message string) {
	return html.EscapeString(s.Title), html.EscapeString(s.Message)
}
