// internal/middleware/validate.go
//
// Request-body schema validation.
//
// Context
// -------
// `ValidateJSON` guards a handler with a schema: the body is read (bounded
// by maxBytes), checked against the schema file or document named by the
// validator.Source, and only a conforming body reaches the next handler.
// The body is restored so the next handler can decode it normally.  The
// API uses it to check the envelope of `POST /v1/validate`.
//
// Responses on rejection
// ----------------------
//   • 413  body larger than maxBytes
//   • 400  body is not JSON
//   • 422  body fails the schema; payload is the validator Response
//   • 4xx/5xx  schema could not be loaded or compiled (see StatusFor)
//
// Notes
// -----
// • Oxford commas, two spaces after periods.

package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/yanizio/reqschema/internal/validator"
)

// ValidateJSON returns middleware that validates request bodies against
// src.  maxBytes ≤ 0 means no limit.
func ValidateJSON(v *validator.Validator, src validator.Source, maxBytes int64) func(http.Handler) http.Handler {
	name, _ := src.Filename()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, status, err := ReadBody(w, r, maxBytes)
			if err != nil {
				WriteJSON(w, status, ErrorBody{Error: err.Error()})
				return
			}

			resp, err := v.Validate(json.RawMessage(body), src, false)
			if err != nil {
				zap.S().Errorw("request schema unusable", "schema", name, "err", err)
				WriteValidatorError(w, err)
				return
			}
			if !resp.IsValid {
				WriteJSON(w, http.StatusUnprocessableEntity, resp)
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))
			r.ContentLength = int64(len(body))
			next.ServeHTTP(w, r)
		})
	}
}

// ReadBody reads the whole request body, enforcing maxBytes and JSON
// syntax.  On failure it returns the HTTP status to report.
func ReadBody(w http.ResponseWriter, r *http.Request, maxBytes int64) ([]byte, int, error) {
	src := r.Body
	if maxBytes > 0 {
		src = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	body, err := io.ReadAll(src)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, http.StatusRequestEntityTooLarge, errors.New("request body too large")
		}
		return nil, http.StatusBadRequest, errors.New("request body unreadable")
	}
	if !json.Valid(body) {
		return nil, http.StatusBadRequest, errors.New("request body is not valid JSON")
	}
	return body, http.StatusOK, nil
}

/*──────────────────────────────── replies ──────────────────────────────────*/

// ErrorBody is the JSON shape of every non-validation failure.
type ErrorBody struct {
	Error string         `json:"error"`
	Kind  validator.Kind `json:"kind,omitempty"`
}

// StatusFor maps a validator error kind to an HTTP status.
func StatusFor(k validator.Kind) int {
	switch k {
	case validator.KindIO:
		return http.StatusNotFound
	case validator.KindCompile:
		return http.StatusUnprocessableEntity
	default: // config, parse, engine: the server's schemas are at fault
		return http.StatusInternalServerError
	}
}

// WriteValidatorError replies with the error's message and kind.
func WriteValidatorError(w http.ResponseWriter, err error) {
	k := validator.KindOf(err)
	WriteJSON(w, StatusFor(k), ErrorBody{Error: err.Error(), Kind: k})
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false) // keep "must be >= 1" readable
	if err := enc.Encode(v); err != nil {
		zap.S().Warnw("response encode failed", "err", err)
	}
}
