package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/comment-zero-api/internal/mocks"
	"github.com/comment-zero-api/internal/models"
	"github.com/comment-zero-api/internal/throttle"
	"github.com/comment-zero-api/internal/validation"
	"github.com/rs/zerolog"
)

func newTestService(repo *mocks.MockCommentRepository, limiter *mocks.MockLimiter, recentOnly bool) CommentService {
	return NewCommentService(repo, limiter, &mocks.MockRenderer{}, recentOnly, zerolog.Nop())
}

func draft(moniker, author, content string) *models.CommentDraft {
	return &models.CommentDraft{
		Moniker:   moniker,
		Author:    author,
		Content:   content,
		AuthorIP:  "203.0.113.9",
		CreatedAt: time.Now().UTC(),
	}
}

func TestPostCommentSaves(t *testing.T) {
	repo := mocks.NewMockCommentRepository()
	limiter := &mocks.MockLimiter{}
	svc := newTestService(repo, limiter, false)

	comment, err := svc.PostComment(context.Background(), "s1", draft("post-42", "Ada", "Hello"))
	if err != nil {
		t.Fatalf("PostComment() error = %v", err)
	}
	if comment.ID == 0 {
		t.Error("saved comment has no id")
	}
	if comment.ContainerID == 0 {
		t.Error("saved comment has no resolved container")
	}
	if !comment.Approved || comment.Baked {
		t.Errorf("approved = %v, baked = %v; want true, false", comment.Approved, comment.Baked)
	}
	if len(limiter.Sessions) != 1 || limiter.Sessions[0] != "s1" {
		t.Errorf("limiter sessions = %v", limiter.Sessions)
	}
	if len(limiter.Actions) != 1 || limiter.Actions[0] != throttleAction {
		t.Errorf("limiter actions = %v", limiter.Actions)
	}
}

func TestPostCommentValidationShortCircuits(t *testing.T) {
	repo := mocks.NewMockCommentRepository()
	limiter := &mocks.MockLimiter{}
	svc := newTestService(repo, limiter, false)

	_, err := svc.PostComment(context.Background(), "s1", draft("post-42", "Ada", "   "))

	var fieldErr *validation.FieldError
	if !errors.As(err, &fieldErr) {
		t.Fatalf("PostComment() error = %v, want FieldError", err)
	}
	if fieldErr.Field != "comment" || fieldErr.Kind != validation.FieldEmpty {
		t.Errorf("got (%s, %s)", fieldErr.Field, fieldErr.Kind)
	}
	// Invalid drafts never reach the limiter or the store
	if len(limiter.Sessions) != 0 {
		t.Error("limiter consulted for invalid draft")
	}
	if len(repo.Comments) != 0 {
		t.Error("invalid draft was saved")
	}
}

func TestPostCommentThrottled(t *testing.T) {
	repo := mocks.NewMockCommentRepository()
	limiter := &mocks.MockLimiter{Wait: 30 * time.Second}
	svc := newTestService(repo, limiter, false)

	_, err := svc.PostComment(context.Background(), "s1", draft("post-42", "Ada", "Hello"))

	var throttled *throttle.ThrottledError
	if !errors.As(err, &throttled) {
		t.Fatalf("PostComment() error = %v, want ThrottledError", err)
	}
	if throttled.Wait != 30*time.Second {
		t.Errorf("Wait = %s, want 30s", throttled.Wait)
	}
	if len(repo.Comments) != 0 {
		t.Error("throttled draft was saved")
	}
}

func TestPostCommentPropagatesRepositoryFault(t *testing.T) {
	repo := mocks.NewMockCommentRepository()
	repo.SaveError = errors.New("connection refused")
	svc := newTestService(repo, &mocks.MockLimiter{}, false)

	_, err := svc.PostComment(context.Background(), "s1", draft("post-42", "Ada", "Hello"))
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("PostComment() error = %v, want repository fault", err)
	}
}

func TestReadCommentsBakesAfterFullRead(t *testing.T) {
	repo := mocks.NewMockCommentRepository()
	container := repo.AddContainer("post-42", true)
	svc := newTestService(repo, &mocks.MockLimiter{}, false)

	if _, err := svc.PostComment(context.Background(), "s1", draft("post-42", "Ada", "Hello")); err != nil {
		t.Fatalf("PostComment() error = %v", err)
	}

	doc, err := svc.ReadComments(context.Background(), 0, "post-42")
	if err != nil {
		t.Fatalf("ReadComments() error = %v", err)
	}

	var parsed struct {
		PostID   string            `json:"postid"`
		Comments []json.RawMessage `json:"comments"`
	}
	if err := json.Unmarshal(doc, &parsed); err != nil {
		t.Fatalf("document is not valid JSON: %v", err)
	}
	if len(parsed.Comments) != 1 {
		t.Fatalf("comments length = %d, want 1", len(parsed.Comments))
	}

	if len(repo.BakeCalls) != 1 || repo.BakeCalls[0] != container.ID {
		t.Errorf("BakeCalls = %v, want [%d]", repo.BakeCalls, container.ID)
	}
	if !repo.Comments[0].Baked {
		t.Error("comment not baked after full read")
	}
}

func TestReadCommentsRecentOnlySkipsBakedAndBake(t *testing.T) {
	repo := mocks.NewMockCommentRepository()
	repo.AddContainer("post-42", true)
	svc := newTestService(repo, &mocks.MockLimiter{}, true)

	full := newTestService(repo, &mocks.MockLimiter{}, false)
	if _, err := full.PostComment(context.Background(), "s1", draft("post-42", "Ada", "old")); err != nil {
		t.Fatal(err)
	}
	// Full read bakes the first comment
	if _, err := full.ReadComments(context.Background(), 0, "post-42"); err != nil {
		t.Fatal(err)
	}
	if _, err := full.PostComment(context.Background(), "s1", draft("post-42", "Ada", "new")); err != nil {
		t.Fatal(err)
	}

	bakesBefore := len(repo.BakeCalls)
	doc, err := svc.ReadComments(context.Background(), 0, "post-42")
	if err != nil {
		t.Fatalf("ReadComments() error = %v", err)
	}

	var parsed struct {
		Comments []commentView `json:"comments"`
	}
	if err := json.Unmarshal(doc, &parsed); err != nil {
		t.Fatalf("document is not valid JSON: %v", err)
	}
	if len(parsed.Comments) != 1 {
		t.Fatalf("comments length = %d, want only the unbaked comment", len(parsed.Comments))
	}
	if parsed.Comments[0].Content != "new" {
		t.Errorf("content = %q, want %q", parsed.Comments[0].Content, "new")
	}
	// Recent-mode reads never bake
	if len(repo.BakeCalls) != bakesBefore {
		t.Error("recent-only read triggered a bake")
	}
}

func TestReadCommentsEmptyContainer(t *testing.T) {
	repo := mocks.NewMockCommentRepository()
	svc := newTestService(repo, &mocks.MockLimiter{}, false)

	doc, err := svc.ReadComments(context.Background(), 0, "never-seen")
	if err != nil {
		t.Fatalf("ReadComments() error = %v", err)
	}
	if string(doc) != "{ }" {
		t.Errorf("document = %q, want %q", doc, "{ }")
	}
	if len(repo.BakeCalls) != 0 {
		t.Error("empty read triggered a bake")
	}
}

func TestReadCommentsOrderedNewestFirst(t *testing.T) {
	repo := mocks.NewMockCommentRepository()
	repo.AddContainer("post-42", true)
	svc := newTestService(repo, &mocks.MockLimiter{}, false)

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, content := range []string{"first", "second", "third"} {
		d := draft("post-42", "Ada", content)
		d.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if _, err := svc.PostComment(context.Background(), "s1", d); err != nil {
			t.Fatal(err)
		}
	}

	doc, err := svc.ReadComments(context.Background(), 0, "post-42")
	if err != nil {
		t.Fatalf("ReadComments() error = %v", err)
	}

	var parsed struct {
		Comments []commentView `json:"comments"`
	}
	if err := json.Unmarshal(doc, &parsed); err != nil {
		t.Fatal(err)
	}
	want := []string{"third", "second", "first"}
	for i, c := range parsed.Comments {
		if c.Content != want[i] {
			t.Errorf("comments[%d].content = %q, want %q", i, c.Content, want[i])
		}
	}
}

func TestReadCommentsBakeIsIdempotent(t *testing.T) {
	repo := mocks.NewMockCommentRepository()
	repo.AddContainer("post-42", true)
	svc := newTestService(repo, &mocks.MockLimiter{}, false)

	if _, err := svc.PostComment(context.Background(), "s1", draft("post-42", "Ada", "Hello")); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.ReadComments(context.Background(), 0, "post-42"); err != nil {
		t.Fatal(err)
	}
	bakedOnce := countBaked(repo)
	if _, err := svc.ReadComments(context.Background(), 0, "post-42"); err != nil {
		t.Fatal(err)
	}
	if got := countBaked(repo); got != bakedOnce {
		t.Errorf("baked count after second read = %d, want %d", got, bakedOnce)
	}
}

func TestReadCommentsPropagatesFetchFault(t *testing.T) {
	repo := mocks.NewMockCommentRepository()
	repo.FetchError = errors.New("connection reset")
	svc := newTestService(repo, &mocks.MockLimiter{}, false)

	_, err := svc.ReadComments(context.Background(), 0, "post-42")
	if err == nil {
		t.Fatal("ReadComments() error = nil, want fetch fault")
	}
}

func countBaked(repo *mocks.MockCommentRepository) int {
	n := 0
	for _, c := range repo.Comments {
		if c.Baked {
			n++
		}
	}
	return n
}
