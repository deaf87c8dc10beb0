package handler

import (
	"encoding/json"
	"net/http"

	"github.com/dukerupert/familypulse/internal/push"
)

// Notifier dispatches a push notification. It is nil when push is not
// configured; handlers degrade to doing their database work silently.
type Notifier interface {
	Send(req push.Request) push.Result
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// resultStatus maps a dispatcher result onto the HTTP status of endpoints
// that mirror it: 200 when delivered, 400 when refused or failed.
func resultStatus(res push.Result) int {
	if res.Success {
		return http.StatusOK
	}
	return http.StatusBadRequest
}
