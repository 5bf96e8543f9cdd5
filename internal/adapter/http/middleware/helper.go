package middleware

import (
	"encoding/json"
	"errors"
	"maps"
	"net/http"
)

type envelope map[string]any

// errorResponse sends a JSON error body. Used by the middlewares that must
// answer before a handler ever runs, so it cannot share the handler
// package's responders.
func errorResponse(w http.ResponseWriter, status int, message any) {
	if err := writeJSON(w, status, envelope{"error": message}, nil); err != nil {
		w.WriteHeader(500)
	}
}

func writeJSON(w http.ResponseWriter, status int, data envelope, headers http.Header) error {
	js, err := json.Marshal(data)
	if err != nil {
		return errors.New("failed to encode json")
	}

	maps.Copy(w.Header(), headers)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(js)

	return nil
}
