package response

import (
	"encoding/json"
	"net/http"
)

// JSON writes a JSON response. The body is encoded before the header is
// sent, so an unencodable value becomes a 500 rather than a truncated body.
func JSON(w http.ResponseWriter, status int, data any) {
	var body []byte
	if data != nil {
		var err error
		body, err = json.Marshal(data)
		if err != nil {
			http.Error(w, `{"error":{"code":"INTERNAL_ERROR","message":"Internal server error"}}`, http.StatusInternalServerError)
			return
		}
		body = append(body, '\n')
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// NoContent writes a 204 No Content response
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
