package tag

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/SergeyParamoshkin/speaksfer/internal/errresponse"
	"github.com/SergeyParamoshkin/speaksfer/internal/model"
)

type Lister interface {
	ListTags(ctx context.Context) ([]model.Tag, error)
}

type Handler struct {
	store Lister
}

func NewHandler(store Lister) *Handler {
	return &Handler{store: store}
}

type Response struct {
	model.Tag
}

func (t *Response) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// Routes mounts under /tags.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListTags)

	return r
}

func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.store.ListTags(r.Context())
	if err != nil {
		errresponse.Respond(w, r, err)

		return
	}

	list := []render.Renderer{}
	for _, t := range tags {
		list = append(list, &Response{Tag: t})
	}
	errresponse.RenderList(w, r, list)
}
