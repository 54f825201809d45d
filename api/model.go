package api

import (
	"net/http"

	"github.com/go-chi/render"
	"github.com/pkg/errors"
	"github.com/summitair/inventory-service/core"
)

//--
// Error response payloads & renderers
//--

// ErrResponse renderer type for handling all sorts of errors.
type ErrResponse struct {
	Err            error `json:"-"` // low-level runtime error
	HTTPStatusCode int   `json:"-"` // http response status code

	StatusText string `json:"status"`          // user-level status message
	AppCode    string `json:"code,omitempty"`  // application-specific error code
	ErrorText  string `json:"error,omitempty"` // application-level error message, for debugging
}

func (e *ErrResponse) Render(_ http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func ErrInvalidRequest(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
	}
}

var ErrNotFound = &ErrResponse{HTTPStatusCode: http.StatusNotFound, StatusText: "Resource not found."}
var ErrInternalServer = &ErrResponse{
	Err:            nil,
	HTTPStatusCode: http.StatusInternalServerError,
	StatusText:     "Internal server error.",
	ErrorText:      "An internal server error has occurred.",
}

// RenderErr maps the core's business-rule rejections onto HTTP responses.
// Quantity rejections are actionable validation messages for the caller; an
// invalid transition usually means the caller acted on stale state and
// should refresh and retry.
func RenderErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrInsufficientStock):
		Render(w, r, &ErrResponse{
			Err:            err,
			HTTPStatusCode: http.StatusConflict,
			StatusText:     "Insufficient stock.",
			AppCode:        "insufficient_stock",
			ErrorText:      "the requested quantity exceeds the on-hand stock",
		})
	case errors.Is(err, core.ErrInsufficientAvailability):
		Render(w, r, &ErrResponse{
			Err:            err,
			HTTPStatusCode: http.StatusConflict,
			StatusText:     "Insufficient availability.",
			AppCode:        "insufficient_availability",
			ErrorText:      "the requested quantity exceeds the available (unreserved) stock",
		})
	case errors.Is(err, core.ErrInvalidTransition):
		Render(w, r, &ErrResponse{
			Err:            err,
			HTTPStatusCode: http.StatusConflict,
			StatusText:     "Invalid transition.",
			AppCode:        "invalid_transition",
			ErrorText:      "the reservation does not permit this status change",
		})
	case errors.Is(err, core.ErrInvalidQuantity):
		Render(w, r, &ErrResponse{
			Err:            err,
			HTTPStatusCode: http.StatusBadRequest,
			StatusText:     "Invalid quantity.",
			AppCode:        "invalid_quantity",
			ErrorText:      "quantity must be positive and match the unit precision",
		})
	case errors.Is(err, core.ErrUnknownItem),
		errors.Is(err, core.ErrUnknownReservation),
		errors.Is(err, core.ErrNotFound):
		Render(w, r, ErrNotFound)
	default:
		Render(w, r, ErrInternalServer)
	}
}
