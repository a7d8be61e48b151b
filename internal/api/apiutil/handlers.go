package apiutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/courtsidehq/courtside/internal/booking"
	"github.com/courtsidehq/courtside/internal/store"
)

type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

type HandlerError struct {
	Status  int
	Message string
	Err     error
}

func (e HandlerError) Error() string {
	return e.Message
}

func (e HandlerError) Unwrap() error {
	return e.Err
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return fmt.Errorf("missing request body")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	if err := encoder.Encode(payload); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

func WriteError(w http.ResponseWriter, status int, message string) {
	_ = WriteJSON(w, status, errorResponse{Error: message})
}

// RespondError maps domain errors onto the API's error taxonomy: validation
// failures carry the offending field and 422, missing rows 404, lost races
// 409. Anything unclassified is logged and reported as the fallback message
// with a 500.
func RespondError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var herr HandlerError
	var ferr FieldError
	var verr booking.ValidationError

	switch {
	case errors.As(err, &herr):
		if herr.Status >= http.StatusInternalServerError {
			log.Ctx(r.Context()).Error().Err(herr.Err).Msg(herr.Message)
		}
		WriteError(w, herr.Status, herr.Message)
	case errors.As(err, &verr):
		_ = WriteJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: verr.Reason, Field: verr.Field})
	case errors.As(err, &ferr):
		_ = WriteJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: ferr.Reason, Field: ferr.Field})
	case errors.Is(err, sql.ErrNoRows):
		WriteError(w, http.StatusNotFound, "Resource not found")
	case errors.Is(err, store.ErrConflict):
		WriteError(w, http.StatusConflict, "Conflicts with an existing record; refresh and retry")
	case errors.Is(err, store.ErrCheckViolation):
		WriteError(w, http.StatusUnprocessableEntity, "Value out of the allowed range")
	default:
		log.Ctx(r.Context()).Error().Err(err).Msg(fallback)
		WriteError(w, http.StatusInternalServerError, fallback)
	}
}
