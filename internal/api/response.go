// Package api holds the response envelope every endpoint answers with.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/Lohit-Behera/canva/internal/apperr"
)

// Response is the envelope shared by all endpoints.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// WriteJSON writes data wrapped in the envelope.
func WriteJSON(w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < 400,
	})
}

// WriteError translates err into the envelope. Server-side failures are
// logged with their cause; the client only sees the message.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	e := apperr.From(err)
	status := e.Status()
	if status >= 500 {
		log.Error().Err(e.Err).Str("kind", string(e.Kind)).Str("path", r.URL.Path).Msg(e.Message)
	}
	WriteJSON(w, status, nil, e.Message)
}

// DecodeJSON decodes a JSON body into v.
func DecodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Validation("Invalid request body.")
	}
	return nil
}
