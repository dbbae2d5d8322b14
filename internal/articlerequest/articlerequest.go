package articlerequest

import (
	"net/http"
	"strings"

	"github.com/SergeyParamoshkin/speaksfer/internal/model"
	"github.com/SergeyParamoshkin/speaksfer/internal/validation"
)

// ArticleRequest is the request payload for Article data model.
//
// The author, reading time and engagement are never taken from the client;
// Apply copies only the editable fields onto an article.
type ArticleRequest struct {
	Title       string `json:"title" validate:"required,min=20,max=400"`
	Description string `json:"description" validate:"required,min=20,max=255"`
	Body        string `json:"body" validate:"required,min=20"`
	Slug        string `json:"slug" validate:"max=400"`
	TagList     string `json:"taglist" validate:"required"`

	ProtectedID string `json:"id"` // override 'id' json to have more control
}

func (a *ArticleRequest) Bind(r *http.Request) error {
	// just a post-process after a decode..
	a.ProtectedID = ""
	a.Title = strings.TrimSpace(a.Title)
	a.Description = strings.TrimSpace(a.Description)
	a.Slug = strings.TrimSpace(a.Slug)
	a.TagList = strings.TrimSpace(a.TagList)

	return validation.Struct(a)
}

// Apply copies the editable fields onto article.
func (a *ArticleRequest) Apply(article *model.Article) {
	article.Title = a.Title
	article.Description = a.Description
	article.Body = a.Body
}
