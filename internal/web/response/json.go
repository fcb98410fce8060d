package response

import (
	"encoding/json"
	"net/http"
)

// ContentTypeJSON is the Content-Type of every JSON response
const ContentTypeJSON = "application/json"

// RenderJSON encodes v as the response body. Encoding happens before the
// status is written so a failure can still become a 500.
func RenderJSON(w http.ResponseWriter, statusCode int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("Internal Server Error"))
		return
	}
	RenderRawJSON(w, statusCode, body)
}

// RenderRawJSON writes an already encoded JSON body
func RenderRawJSON(w http.ResponseWriter, statusCode int, body []byte) {
	w.Header().Set("Content-Type", ContentTypeJSON)
	w.WriteHeader(statusCode)
	_, _ = w.Write(body)
}
