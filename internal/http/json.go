package httpx

import (
	"bytes"
	"encoding/json"
	"net/http"

	apperrors "github.com/gitnudge/portal/internal/errors"
)

// WriteJSON encodes v before touching the response so an encoding failure
// can still become a clean 500.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_, _ = buf.WriteTo(w)
}

// ErrorParams groups parameters for WriteError. Code and ErrCode may be left
// empty; they are then derived from Err's AppError code.
type ErrorParams struct {
	Code    int
	ErrCode string
	Err     error
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, p ErrorParams) {
	body := errorBody{Error: p.ErrCode}
	if p.Err != nil {
		body.Message = p.Err.Error()
		body.Field = apperrors.GetField(p.Err)
	}
	if body.Error == "" {
		body.Error = string(apperrors.GetCode(p.Err))
		if body.Error == "" {
			body.Error = string(apperrors.ErrCodeInternal)
		}
	}

	code := p.Code
	if code == 0 {
		code = StatusForError(p.Err)
	}
	WriteJSON(w, code, body)
}

// StatusForError maps an AppError code to an HTTP status. Plain errors are 500.
func StatusForError(err error) int {
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeValidation:
		return http.StatusUnprocessableEntity
	case apperrors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case apperrors.ErrCodeUpstream:
		return http.StatusBadGateway
	case apperrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case apperrors.ErrCodeCanceled:
		// nginx's "client closed request"
		return 499
	default:
		return http.StatusInternalServerError
	}
}
