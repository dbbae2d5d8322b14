package errresponse

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/SergeyParamoshkin/speaksfer/internal/apperr"
	"github.com/SergeyParamoshkin/speaksfer/internal/logging"
)

//--
// Error response payloads & renderers
//--

// ErrResponse renderer type for handling all sorts of errors.
//
// Err keeps the low-level error for logging; AppCode and Fields are derived
// from the *apperr.Error it wraps, if any.
type ErrResponse struct {
	Err            error `json:"-"` // low-level runtime error
	HTTPStatusCode int   `json:"-"` // http response status code

	StatusText string              `json:"status"`           // user-level status message
	AppCode    string              `json:"code,omitempty"`   // application-specific error code
	ErrorText  string              `json:"error,omitempty"`  // application-level error message
	Fields     map[string][]string `json:"fields,omitempty"` // field keyed validation messages
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)

	return nil
}

func ErrInvalidRequest(err error) render.Renderer {
	resp := &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
	}
	if e, ok := apperr.As(err); ok {
		resp.AppCode = e.Code
		resp.ErrorText = e.Message
		if e.Field != "" {
			resp.Fields = map[string][]string{e.Field: {e.Message}}
		}
	}

	return resp
}

func ErrRender(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusUnprocessableEntity,
		StatusText:     "Error rendering response.",
		ErrorText:      err.Error(),
	}
}

func ErrNotFound(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusNotFound,
		StatusText:     "Resource not found.",
		ErrorText:      message(err),
	}
}

func ErrUnauthorized(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusUnauthorized,
		StatusText:     "Authentication required.",
		ErrorText:      message(err),
	}
}

func ErrForbidden(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusForbidden,
		StatusText:     "Permission denied.",
		ErrorText:      message(err),
	}
}

func ErrConflict(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusConflict,
		StatusText:     "Conflict.",
		ErrorText:      message(err),
	}
}

// ErrInternal hides the error text from the client.
func ErrInternal(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusInternalServerError,
		StatusText:     "Internal server error.",
	}
}

// FromError picks the renderer matching the kind of err.
func FromError(err error) render.Renderer {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return ErrInvalidRequest(err)
	case apperr.KindNotFound:
		return ErrNotFound(err)
	case apperr.KindConflict:
		return ErrConflict(err)
	case apperr.KindUnauthorized:
		return ErrUnauthorized(err)
	case apperr.KindForbidden:
		return ErrForbidden(err)
	default:
		return ErrInternal(err)
	}
}

func message(err error) string {
	if e, ok := apperr.As(err); ok {
		return e.Message
	}

	return err.Error()
}

// Respond renders err with the matching renderer. Server side failures are
// logged with the request logger.
func Respond(w http.ResponseWriter, r *http.Request, err error) {
	logger := logging.FromContext(r.Context())
	if apperr.KindOf(err) == apperr.KindInternal {
		logger.Errorw("request failed", "path", r.URL.Path, "error", err)
	}
	if rerr := render.Render(w, r, FromError(err)); rerr != nil {
		logger.Errorw(rerr.Error())
	}
}

// RespondInvalid renders a request binding failure.
func RespondInvalid(w http.ResponseWriter, r *http.Request, err error) {
	if rerr := render.Render(w, r, ErrInvalidRequest(err)); rerr != nil {
		logging.FromContext(r.Context()).Errorw(rerr.Error())
	}
}

// Render renders v, falling back to ErrRender when v cannot be rendered.
func Render(w http.ResponseWriter, r *http.Request, v render.Renderer) {
	if err := render.Render(w, r, v); err != nil {
		renderFailed(w, r, err)
	}
}

// RenderList is Render for lists.
func RenderList(w http.ResponseWriter, r *http.Request, l []render.Renderer) {
	if err := render.RenderList(w, r, l); err != nil {
		renderFailed(w, r, err)
	}
}

func renderFailed(w http.ResponseWriter, r *http.Request, err error) {
	if err = render.Render(w, r, ErrRender(err)); err != nil {
		logging.FromContext(r.Context()).Errorw(err.Error())
	}
}
