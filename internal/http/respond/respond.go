package respond

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// MessageBody is the shape of every error response and of bare confirmations.
type MessageBody struct {
	Message string `json:"message"`
}

// JSON writes payload as the response body.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Warn("respond: encode payload failed", zap.Error(err))
	}
}

// Message writes {"message": message} with the given status.
func Message(w http.ResponseWriter, status int, message string) {
	JSON(w, status, MessageBody{Message: message})
}

// Error writes an error response. Only message reaches the client.
func Error(w http.ResponseWriter, status int, message string) {
	Message(w, status, message)
}
