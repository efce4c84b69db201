// Package httpx provides JSON response helpers for the mock backend.
package httpx

import (
	"encoding/json"
	"net/http"
)

type detailBody struct {
	Detail string `json:"detail"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Detail sends an error body of the form {"detail": "..."}.
func Detail(w http.ResponseWriter, status int, detail string) {
	JSON(w, status, detailBody{Detail: detail})
}

// Msg acknowledges a mutation with {"msg": "..."}.
func Msg(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusOK, map[string]string{"msg": msg})
}

// DecodeJSON decodes JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(target); err != nil {
		return Errorf(ErrValidation, "Invalid request body")
	}
	return nil
}
