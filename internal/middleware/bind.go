package middleware

import (
	"encoding/json"
	"net/http"

	"incidentService/pkg/validator"
)

// BindJSON decodes and validates the request body into a fresh T per request
// before calling next.
func BindJSON[T any](next func(w http.ResponseWriter, r *http.Request, body T)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var target T
		if err := json.NewDecoder(r.Body).Decode(&target); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		if err := validator.ValidateStruct(target); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		next(w, r, target)
	}
}
