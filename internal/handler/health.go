package handler

import "net/http"

// HandleHealthz reports liveness. No auth, no dependencies — load balancers
// hit this.
func HandleHealthz(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]string{"status": "ok"}, "healthy")
}
