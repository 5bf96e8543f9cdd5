package handler

import "net/http"

func errorResponse(w http.ResponseWriter, status int, message any) {
	env := envelope{"message": message}

	// Write the response using the writeJSON() helper. If this happens to return an
	// error then fall back to sending the client an empty response with a
	// 500 Internal Server Error status code.
	if err := writeJSON(w, status, env, nil); err != nil {
		w.WriteHeader(500)
	}
}

// failedValidationResponse returns 400 BadRequest with the full ordered list
// of field errors and an echo of which fields the request actually carried,
// so a producer can fix its payload in one round trip.
func failedValidationResponse(w http.ResponseWriter, errors []string, receivedData envelope) {
	env := envelope{
		"message":      "Validation failed",
		"errors":       errors,
		"receivedData": receivedData,
	}
	if err := writeJSON(w, http.StatusBadRequest, env, nil); err != nil {
		w.WriteHeader(500)
	}
}

// internalErrorResponse returns 500 InternalServerError with a
// human-readable message, without leaking backend detail.
func internalErrorResponse(w http.ResponseWriter, message any) {
	env := envelope{
		"message": "Internal server error",
		"error":   message,
	}
	if err := writeJSON(w, http.StatusInternalServerError, env, nil); err != nil {
		w.WriteHeader(500)
	}
}
