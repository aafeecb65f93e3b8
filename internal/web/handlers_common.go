package web

// Shared request helpers for the handlers.

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/JonMunkholm/stockledger/internal/core"
	"github.com/go-chi/chi/v5"
)

// maxJSONBody bounds request bodies of the JSON endpoints.
const maxJSONBody = 1 << 20

// decodeJSON reads a single JSON object from the request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		var mbe *http.MaxBytesError
		switch {
		case errors.As(err, &mbe):
			return &core.ValidationError{Field: "body", Message: "request body too large"}
		case errors.Is(err, io.EOF):
			return &core.ValidationError{Field: "body", Message: "request body is empty"}
		}
		return &core.ValidationError{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	return nil
}

// pathParam returns the unescaped chi URL parameter.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

// parseBoolParam treats 1, true, yes and on as true.
func parseBoolParam(r *http.Request, name string) bool {
	v := strings.ToLower(strings.TrimSpace(r.URL.Query().Get(name)))
	if v == "yes" || v == "on" {
		return true
	}
	b, _ := strconv.ParseBool(v)
	return b
}
