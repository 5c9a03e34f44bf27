package middleware

import (
	"encoding/json"
	"net/http"
)

// writeJSONError rejects a request with the same JSON error shape the
// handlers use, so middleware refusals look no different to the client.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
