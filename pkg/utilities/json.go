package utilities

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
)

// JSON is the codec used for request and response bodies.
var JSON = jsoniter.ConfigCompatibleWithStandardLibrary

// maxBodyBytes caps request bodies read by DecodeJSON.
const maxBodyBytes = 1 << 20

// MessageResponse is the body of every error response.
type MessageResponse struct {
	Message string `json:"message"`
}

// WriteJSON encodes v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = JSON.NewEncoder(w).Encode(v)
}

// WriteMessage writes a {"message": msg} body.
func WriteMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, MessageResponse{Message: msg})
}

// DecodeJSON reads at most 1 MB of r.Body into dst.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return JSON.NewDecoder(r.Body).Decode(dst)
}
