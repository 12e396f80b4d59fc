package handler

import (
	"net/http"

	"medfeed/internal/handler/http/respond"
)

// Health handles GET /healthz. The process is healthy as soon as it can
// answer; snapshot freshness is a metrics concern, not a liveness one.
func Health(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
