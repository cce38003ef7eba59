package validation

import (
	"strings"
	"testing"

	"github.com/comment-zero-api/internal/models"
)

func validDraft() *models.CommentDraft {
	return &models.CommentDraft{
		Moniker: "post-42",
		Author:  "Ada",
		Email:   "ada@example.com",
		Website: "https://example.com",
		Content: "Hello",
	}
}

func TestValidateDraft(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*models.CommentDraft)
		wantField string
		wantKind  ErrorKind
	}{
		{
			name:   "valid draft with all fields",
			mutate: func(d *models.CommentDraft) {},
		},
		{
			name: "valid draft with optional fields blank",
			mutate: func(d *models.CommentDraft) {
				d.Email = ""
				d.Website = ""
			},
		},
		{
			name: "author too long",
			mutate: func(d *models.CommentDraft) {
				d.Author = strings.Repeat("a", 251)
			},
			wantField: "author",
			wantKind:  FieldTooLong,
		},
		{
			name: "author at limit is accepted",
			mutate: func(d *models.CommentDraft) {
				d.Author = strings.Repeat("a", 250)
			},
		},
		{
			name: "website not a url",
			mutate: func(d *models.CommentDraft) {
				d.Website = "not a url"
			},
			wantField: "website",
			wantKind:  InvalidField,
		},
		{
			name: "website without scheme",
			mutate: func(d *models.CommentDraft) {
				d.Website = "example.com/page"
			},
			wantField: "website",
			wantKind:  InvalidField,
		},
		{
			name: "website too long",
			mutate: func(d *models.CommentDraft) {
				d.Website = "https://example.com/" + strings.Repeat("a", 200)
			},
			wantField: "website",
			wantKind:  FieldTooLong,
		},
		{
			name: "email not an address",
			mutate: func(d *models.CommentDraft) {
				d.Email = "not-an-email"
			},
			wantField: "email",
			wantKind:  InvalidField,
		},
		{
			name: "email too long",
			mutate: func(d *models.CommentDraft) {
				d.Email = strings.Repeat("a", 95) + "@example.com"
			},
			wantField: "email",
			wantKind:  FieldTooLong,
		},
		{
			name: "content empty",
			mutate: func(d *models.CommentDraft) {
				d.Content = ""
			},
			wantField: "comment",
			wantKind:  FieldEmpty,
		},
		{
			name: "content whitespace only counts as empty",
			mutate: func(d *models.CommentDraft) {
				d.Content = "  \t\n "
			},
			wantField: "comment",
			wantKind:  FieldEmpty,
		},
		{
			name: "content too long",
			mutate: func(d *models.CommentDraft) {
				d.Content = strings.Repeat("a", 50001)
			},
			wantField: "content",
			wantKind:  FieldTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := validDraft()
			tt.mutate(draft)

			err := ValidateDraft(draft)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("ValidateDraft() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("ValidateDraft() = nil, want error on field %q", tt.wantField)
			}
			if err.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", err.Field, tt.wantField)
			}
			if err.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", err.Kind, tt.wantKind)
			}
			if err.Message == "" {
				t.Error("Message is empty")
			}
		})
	}
}

// The rule order is fixed: a draft violating several rules reports only the
// earliest one.
func TestValidateDraftFirstFailureWins(t *testing.T) {
	tests := []struct {
		name      string
		draft     *models.CommentDraft
		wantField string
		wantKind  ErrorKind
	}{
		{
			name: "author too long beats empty content",
			draft: &models.CommentDraft{
				Author:  strings.Repeat("a", 300),
				Content: "",
			},
			wantField: "author",
			wantKind:  FieldTooLong,
		},
		{
			name: "invalid website beats website length",
			draft: &models.CommentDraft{
				Author:  "Ada",
				Website: strings.Repeat("x", 300),
				Content: "Hello",
			},
			wantField: "website",
			wantKind:  InvalidField,
		},
		{
			name: "invalid email beats empty content",
			draft: &models.CommentDraft{
				Author:  "Ada",
				Email:   "nope",
				Content: "   ",
			},
			wantField: "email",
			wantKind:  InvalidField,
		},
		{
			name: "empty content beats content length",
			draft: &models.CommentDraft{
				Author:  "Ada",
				Content: "",
			},
			wantField: "comment",
			wantKind:  FieldEmpty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDraft(tt.draft)
			if err == nil {
				t.Fatal("ValidateDraft() = nil, want error")
			}
			if err.Field != tt.wantField || err.Kind != tt.wantKind {
				t.Errorf("got (%s, %s), want (%s, %s)", err.Field, err.Kind, tt.wantField, tt.wantKind)
			}
		})
	}
}

func TestThrottledMessage(t *testing.T) {
	msg := ThrottledMessage("comment", "30 seconds")
	if !strings.Contains(msg, "comment") || !strings.Contains(msg, "30 seconds") {
		t.Errorf("ThrottledMessage() = %q, missing action or wait", msg)
	}
}
