package validation

import (
	"fmt"
	"net/mail"
	"net/url"
	"strings"

	"github.com/comment-zero-api/internal/models"
)

// ErrorKind classifies a validation failure
type ErrorKind string

const (
	FieldEmpty    ErrorKind = "field_empty"
	FieldTooLong  ErrorKind = "field_too_long"
	FieldTooShort ErrorKind = "field_too_short"
	InvalidField  ErrorKind = "invalid_field"
)

// Message templates per error kind. Static catalog, never mutated.
var messageFormats = map[ErrorKind]string{
	FieldEmpty:    "The %s is empty. Please specify a valid %s.",
	FieldTooLong:  "The %s field is too long. %s character maximum.",
	FieldTooShort: "The %s field is too short. %s character minimum.",
	InvalidField:  "Invalid or incomplete %s. Please specify a valid %s.",
}

// ThrottledMessage formats the rejection shown to a throttled caller
func ThrottledMessage(action, wait string) string {
	return fmt.Sprintf("You are attempting to %s too quickly! Please wait %s and try again.", action, wait)
}

// FieldError is a single validation failure: the offending field, the kind
// of violation, and a caller-facing message
type FieldError struct {
	Field   string    `json:"field"`
	Kind    ErrorKind `json:"-"`
	Message string    `json:"error"`
}

func (e *FieldError) Error() string {
	return e.Message
}

func newFieldError(field string, kind ErrorKind, arg string) *FieldError {
	return &FieldError{
		Field:   field,
		Kind:    kind,
		Message: fmt.Sprintf(messageFormats[kind], field, arg),
	}
}

// ValidateDraft checks an inbound draft against the field rules and returns
// the first violation found, or nil if the draft is clean. Rule order is
// fixed and load-bearing: callers report exactly one error per attempt.
func ValidateDraft(draft *models.CommentDraft) *FieldError {
	if len(draft.Author) > models.MaxAuthorLength {
		return newFieldError("author", FieldTooLong, "250")
	}
	if !isBlank(draft.Website) && !isValidURL(draft.Website) {
		return newFieldError("website", InvalidField, "hyperlink")
	}
	if len(draft.Website) > models.MaxWebsiteLength {
		return newFieldError("website", FieldTooLong, "200")
	}
	if !isBlank(draft.Email) && !isValidEmail(draft.Email) {
		return newFieldError("email", InvalidField, "email")
	}
	if len(draft.Email) > models.MaxEmailLength {
		return newFieldError("email", FieldTooLong, "100")
	}
	if isBlank(draft.Content) {
		return newFieldError("comment", FieldEmpty, "comment")
	}
	if len(draft.Content) > models.MaxContentLength {
		return newFieldError("content", FieldTooLong, "50,000")
	}
	return nil
}

// isBlank reports whether s is empty or whitespace-only
func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// isValidURL requires an absolute URL with a scheme and host
func isValidURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// isValidEmail accepts RFC 5322 addresses without a display name
func isValidEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
