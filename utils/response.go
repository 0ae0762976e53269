package utils

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Response is the envelope of every JSON reply.
type Response struct {
	OK      bool        `json:"ok"`
	Kind    string      `json:"kind,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// RespondJSON writes a success envelope.
func RespondJSON(w http.ResponseWriter, status int, message string, data interface{}) {
	write(w, status, Response{OK: true, Message: message, Data: data})
}

// RespondError writes a failure envelope.
func RespondError(w http.ResponseWriter, status int, kind, message string) {
	write(w, status, Response{OK: false, Kind: kind, Message: message})
}

func write(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Default().Error("failed to encode response", "error", err)
	}
}
