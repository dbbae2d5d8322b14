package articleresponse

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/SergeyParamoshkin/speaksfer/internal/engagement"
	"github.com/SergeyParamoshkin/speaksfer/internal/model"
	"github.com/SergeyParamoshkin/speaksfer/internal/rating"
	"github.com/SergeyParamoshkin/speaksfer/internal/userpayload"
)

// ArticleResponse is the response payload for the Article data model.
//
// In the ArticleResponse object, first a Render() is called on itself,
// then the next field, and so on, all the way down the tree.
// Render is called in top-down order, like a http handler middleware chain.
type ArticleResponse struct {
	*model.Article

	Author *userpayload.UserPayload `json:"author,omitempty"`

	TagNames         []string         `json:"tags"`
	Rating           rating.Summary   `json:"avg_rating"`
	FavouriteCount   int              `json:"favourite_count"`
	UnfavouriteCount int              `json:"unfavourite_count"`
	Engagement       engagement.State `json:"engagement,omitempty"`

	principal int64
}

// NewArticleResponse builds the payload of article for the acting user
// principal (0 for anonymous requests).
func NewArticleResponse(article *model.Article, author *model.User, ratings []model.Rating, principal int64) *ArticleResponse {
	resp := &ArticleResponse{
		Article:   article,
		Rating:    rating.Summarize(ratings),
		principal: principal,
	}
	if author != nil {
		resp.Author = userpayload.NewUserPayloadResponse(author)
	}

	return resp
}

func (rd *ArticleResponse) Render(w http.ResponseWriter, r *http.Request) error {
	// Pre-processing before a response is marshalled and sent across the wire
	rd.TagNames = rd.Article.TagNames()
	rd.FavouriteCount = rd.FavouritedBy.Len()
	rd.UnfavouriteCount = rd.UnfavouritedBy.Len()
	if rd.principal != 0 {
		rd.Engagement = engagement.StateOf(rd.Article, rd.principal)
	}

	return nil
}

func NewArticleListResponse(responses []*ArticleResponse) []render.Renderer {
	list := []render.Renderer{}
	for _, resp := range responses {
		list = append(list, resp)
	}

	return list
}

// EngagementResponse reports the outcome of a favourite or unfavourite toggle.
type EngagementResponse struct {
	Article          string           `json:"article"`
	Slug             string           `json:"slug"`
	State            engagement.State `json:"state"`
	FavouriteCount   int              `json:"favourite_count"`
	UnfavouriteCount int              `json:"unfavourite_count"`
}

func NewEngagementResponse(a *model.Article, state engagement.State) *EngagementResponse {
	return &EngagementResponse{
		Article:          a.ID,
		Slug:             a.Slug,
		State:            state,
		FavouriteCount:   a.FavouritedBy.Len(),
		UnfavouriteCount: a.UnfavouritedBy.Len(),
	}
}

func (e *EngagementResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// StatsResponse is the reading statistics payload.
type StatsResponse struct {
	model.ArticleStats
}

func (s *StatsResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}
