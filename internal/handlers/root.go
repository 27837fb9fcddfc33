package handlers

import "net/http"

// RootResponse identifies the API.
type RootResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
}

// Root returns a handler for GET / that reports the API name and version.
func Root(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(r.Context(), w, http.StatusOK, RootResponse{
			Message: "Integrated RAG Chatbot API",
			Version: version,
		})
	}
}
