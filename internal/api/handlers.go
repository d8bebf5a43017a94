// internal/api/handlers.go
//
// Validation endpoints.  Both reply 200 with the validator Response for
// valid and invalid documents alike; only failures to validate at all map
// to 4xx/5xx (see middleware.StatusFor).

package api

import (
	"encoding/json"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/reqschema/internal/middleware"
	"github.com/yanizio/reqschema/internal/validator"
)

type handlers struct {
	v        *validator.Validator
	maxBytes int64
}

// inlineRequest is the body of POST /v1/validate.  A JSON string in Schema
// names a file under the schema path; any other value is the schema itself.
type inlineRequest struct {
	Data          json.RawMessage `json:"data"`
	Schema        json.RawMessage `json:"schema"`
	AjvFormatting bool            `json:"ajvFormatting"`
}

var jsonNull = json.RawMessage("null")

// inlineEnvelope is checked by middleware.ValidateJSON before
// validateInline runs.
var inlineEnvelope = json.RawMessage(`{
  "type": "object",
  "required": ["schema"],
  "properties": {
    "schema": {"type": ["string", "object", "boolean"]},
    "ajvFormatting": {"type": "boolean"}
  }
}`)

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	if h.v.Options().SchemaPath == "" {
		middleware.WriteJSON(w, http.StatusServiceUnavailable,
			map[string]string{"status": "uninitialized"})
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) validateNamed(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")
	if !fs.ValidPath(name) || name == "." {
		middleware.WriteJSON(w, http.StatusBadRequest, middleware.ErrorBody{Error: "invalid schema name"})
		return
	}

	body, status, err := middleware.ReadBody(w, r, h.maxBytes)
	if err != nil {
		middleware.WriteJSON(w, status, middleware.ErrorBody{Error: err.Error()})
		return
	}

	engine := r.URL.Query().Get("format") == "engine"
	h.reply(w, r, validator.ByFilename(name), json.RawMessage(body), engine)
}

func (h *handlers) validateInline(w http.ResponseWriter, r *http.Request) {
	body, status, err := middleware.ReadBody(w, r, h.maxBytes)
	if err != nil {
		middleware.WriteJSON(w, status, middleware.ErrorBody{Error: err.Error()})
		return
	}

	var req inlineRequest
	if err := json.Unmarshal(body, &req); err != nil {
		middleware.WriteJSON(w, http.StatusBadRequest, middleware.ErrorBody{Error: "request body must be an object"})
		return
	}
	if len(req.Data) == 0 {
		req.Data = jsonNull
	}

	var src validator.Source
	var name string
	if json.Unmarshal(req.Schema, &name) == nil {
		if !fs.ValidPath(name) || name == "." {
			middleware.WriteJSON(w, http.StatusBadRequest, middleware.ErrorBody{Error: "invalid schema name"})
			return
		}
		src = validator.ByFilename(name)
	} else {
		src = validator.ByDocument(req.Schema)
	}

	h.reply(w, r, src, req.Data, req.AjvFormatting)
}

func (h *handlers) reply(w http.ResponseWriter, r *http.Request, src validator.Source, data json.RawMessage, engine bool) {
	resp, err := h.v.Validate(data, src, engine)
	if err != nil {
		if validator.KindOf(err) != validator.KindCompile {
			zap.S().Errorw("validate failed", "path", r.URL.Path, "err", err)
		}
		middleware.WriteValidatorError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, resp)
}
