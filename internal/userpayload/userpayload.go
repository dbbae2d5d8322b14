package userpayload

import (
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"github.com/SergeyParamoshkin/speaksfer/internal/model"
	"github.com/SergeyParamoshkin/speaksfer/internal/validation"
)

// UserPayload is the public view of a user.
type UserPayload struct {
	*model.User
	Role string `json:"role"`
}

func NewUserPayloadResponse(user *model.User) *UserPayload {
	return &UserPayload{User: user}
}

func NewUserListResponse(users []model.User) []render.Renderer {
	list := []render.Renderer{}
	for i := range users {
		list = append(list, NewUserPayloadResponse(&users[i]))
	}

	return list
}

func (u *UserPayload) Render(w http.ResponseWriter, r *http.Request) error {
	u.Role = "reader"
	if u.IsAdmin {
		u.Role = "admin"
	}

	return nil
}

// UserRequest is the registration payload.
type UserRequest struct {
	Username string `json:"username" validate:"required,min=8,max=20"`
	Email    string `json:"email" validate:"required,email"`
}

// Bind on UserRequest will run after the unmarshalling is complete, its
// a good time to normalize and validate the input.
func (u *UserRequest) Bind(r *http.Request) error {
	u.Username = strings.TrimSpace(u.Username)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))

	return validation.Struct(u)
}
