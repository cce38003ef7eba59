package service

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/comment-zero-api/internal/models"
	"github.com/comment-zero-api/internal/render"
)

// commentView is the wire shape of a single comment in the read document.
// Content carries rendered HTML, not the stored Markdown.
type commentView struct {
	ID          int64     `json:"id"`
	ContainerID int64     `json:"postid"`
	Author      string    `json:"author"`
	CreatedAt   time.Time `json:"date"`
	Content     string    `json:"content"`
	URL         string    `json:"url"`
}

// Assembler incrementally serializes a stream of comments into a JSON
// document. Comment sets can run to the thousands, so the full set is never
// materialized: only the current element and the growing output are live.
// Feed rows via Add, then Close exactly once to finish the document. An
// Assembler is single-use.
type Assembler struct {
	w           io.Writer
	renderer    render.Renderer
	started     bool
	containerID int64
}

// NewAssembler creates an assembler writing the document to w
func NewAssembler(w io.Writer, renderer render.Renderer) *Assembler {
	return &Assembler{w: w, renderer: renderer}
}

// Add serializes one comment into the document. The first comment opens the
// envelope and fixes the document's container id.
func (a *Assembler) Add(comment *models.Comment) error {
	rendered, err := a.renderer.Render(comment.Content)
	if err != nil {
		return err
	}

	view := commentView{
		ID:          comment.ID,
		ContainerID: comment.ContainerID,
		Author:      comment.Author,
		CreatedAt:   comment.CreatedAt,
		Content:     rendered,
		URL:         comment.Website,
	}
	encoded, err := json.Marshal(view)
	if err != nil {
		return err
	}

	if !a.started {
		a.started = true
		a.containerID = comment.ContainerID
		if _, err := fmt.Fprintf(a.w, `{"postid":"%d","comments":[`, comment.ContainerID); err != nil {
			return err
		}
	} else {
		if _, err := io.WriteString(a.w, ","); err != nil {
			return err
		}
	}

	_, err = a.w.Write(encoded)
	return err
}

// Close finishes the document. An empty stream yields the empty-object
// document and exposes no container id.
func (a *Assembler) Close() error {
	if !a.started {
		_, err := io.WriteString(a.w, "{ }")
		return err
	}
	_, err := io.WriteString(a.w, "]}")
	return err
}

// ContainerID returns the container resolved from the first comment, or
// zero when the stream was empty
func (a *Assembler) ContainerID() int64 {
	return a.containerID
}
