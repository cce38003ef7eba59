package mocks

import (
	"context"
	"sort"
	"time"

	"github.com/comment-zero-api/internal/models"
	"github.com/comment-zero-api/internal/repository"
)

// MockCommentRepository is an in-memory implementation of
// repository.CommentRepository with moniker-variant semantics
type MockCommentRepository struct {
	Containers      map[int64]*models.Container
	MonikerIndex    map[string]*models.Container
	Comments        []*models.Comment
	EnforceOpenGate bool

	FetchError error
	SaveError  error
	BakeError  error
	BakeCalls  []int64

	nextContainerID int64
	nextCommentID   int64
}

func NewMockCommentRepository() *MockCommentRepository {
	return &MockCommentRepository{
		Containers:   make(map[int64]*models.Container),
		MonikerIndex: make(map[string]*models.Container),
	}
}

// AddContainer seeds a container and returns it
func (m *MockCommentRepository) AddContainer(moniker string, allowComments bool) *models.Container {
	m.nextContainerID++
	container := &models.Container{
		ID:            m.nextContainerID,
		Moniker:       moniker,
		AllowComments: allowComments,
	}
	m.Containers[container.ID] = container
	if moniker != "" {
		m.MonikerIndex[moniker] = container
	}
	return container
}

func (m *MockCommentRepository) Fetch(ctx context.Context, containerID int64, moniker string, unbakedOnly bool, fn func(*models.Comment) error) error {
	if m.FetchError != nil {
		return m.FetchError
	}

	if containerID == 0 {
		container, ok := m.MonikerIndex[moniker]
		if !ok {
			return nil
		}
		containerID = container.ID
	}

	var matched []*models.Comment
	for _, comment := range m.Comments {
		if comment.ContainerID != containerID || !comment.Approved {
			continue
		}
		if unbakedOnly && comment.Baked {
			continue
		}
		matched = append(matched, comment)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	for _, comment := range matched {
		if err := fn(comment); err != nil {
			return err
		}
	}
	return nil
}

func (m *MockCommentRepository) Save(ctx context.Context, draft *models.CommentDraft) (*models.Comment, error) {
	if m.SaveError != nil {
		return nil, m.SaveError
	}

	var container *models.Container
	if draft.ContainerID != 0 {
		container = m.Containers[draft.ContainerID]
	} else if draft.Moniker != "" {
		container = m.MonikerIndex[draft.Moniker]
	}

	if container == nil {
		if draft.ContainerID != 0 || draft.Moniker == "" {
			return nil, repository.ErrContainerNotFound
		}
		container = m.AddContainer(draft.Moniker, true)
	}

	if m.EnforceOpenGate && !container.AllowComments {
		return nil, repository.ErrContainerClosed
	}

	m.nextCommentID++
	comment := &models.Comment{
		ID:          m.nextCommentID,
		ContainerID: container.ID,
		Author:      draft.Author,
		Email:       draft.Email,
		Website:     draft.Website,
		Content:     draft.Content,
		AuthorIP:    draft.AuthorIP,
		CreatedAt:   draft.CreatedAt,
		Approved:    true,
		Baked:       false,
	}
	m.Comments = append(m.Comments, comment)
	return comment, nil
}

func (m *MockCommentRepository) Bake(ctx context.Context, containerID int64) error {
	m.BakeCalls = append(m.BakeCalls, containerID)
	if m.BakeError != nil {
		return m.BakeError
	}
	for _, comment := range m.Comments {
		if comment.ContainerID == containerID && comment.Approved {
			comment.Baked = true
		}
	}
	return nil
}

// MockLimiter is a throttle.Limiter returning a fixed wait
type MockLimiter struct {
	Wait     time.Duration
	Sessions []string
	Actions  []string
}

func (m *MockLimiter) Allow(sessionID, action string) time.Duration {
	m.Sessions = append(m.Sessions, sessionID)
	m.Actions = append(m.Actions, action)
	return m.Wait
}

// MockRenderer is a render.Renderer that echoes input, optionally failing
type MockRenderer struct {
	Err   error
	Calls int
}

func (m *MockRenderer) Render(markdown string) (string, error) {
	m.Calls++
	if m.Err != nil {
		return "", m.Err
	}
	return markdown, nil
}
