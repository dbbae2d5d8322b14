package articleresponse

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/SergeyParamoshkin/speaksfer/internal/engagement"
	"github.com/SergeyParamoshkin/speaksfer/internal/model"
)

func TestArticleResponseRender(t *testing.T) {
	t.Parallel()

	a := &model.Article{
		ID:             "a1",
		Title:          "title",
		Tags:           []model.Tag{{ID: 1, Name: "go"}, {ID: 2, Name: "rust"}},
		FavouritedBy:   model.NewUserSet(1, 2),
		UnfavouritedBy: model.NewUserSet(3),
		Version:        7,
	}
	ratings := []model.Rating{{Value: 1}, {Value: 1}, {Value: 5}}
	resp := NewArticleResponse(a, &model.User{ID: 9, Username: "writer_one"}, ratings, 3)

	if err := resp.Render(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil)); err != nil {
		t.Fatalf("Render: %v", err)
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got map[string]interface{}
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["favourite_count"] != float64(2) || got["unfavourite_count"] != float64(1) {
		t.Fatalf("unexpected counts %v", got)
	}
	if got["engagement"] != string(engagement.Unfavourited) {
		t.Fatalf("unexpected engagement %v", got["engagement"])
	}
	tags, _ := got["tags"].([]interface{})
	if len(tags) != 2 || tags[0] != "go" {
		t.Fatalf("unexpected tags %v", got["tags"])
	}
	summary, _ := got["avg_rating"].(map[string]interface{})
	if summary["avg_rating"] != float64(2) || summary["total_user_rates"] != float64(3) {
		t.Fatalf("unexpected rating summary %v", summary)
	}
	if _, ok := got["version"]; ok {
		t.Fatalf("version must not be exposed")
	}
	author, _ := got["author"].(map[string]interface{})
	if author["username"] != "writer_one" {
		t.Fatalf("unexpected author %v", author)
	}
}

func TestAnonymousHasNoEngagement(t *testing.T) {
	t.Parallel()

	resp := NewArticleResponse(&model.Article{ID: "a1"}, nil, nil, 0)
	if err := resp.Render(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil)); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if resp.Engagement != "" || resp.Author != nil {
		t.Fatalf("unexpected principal data %+v", resp)
	}
	if resp.Rating.TotalCount != 0 || resp.Rating.Average != 0 {
		t.Fatalf("unexpected empty summary %+v", resp.Rating)
	}
}
