package health

import (
	"encoding/json"
	"net/http"
)

// Handler returns 200 {"status":"ok"} whenever the process is live. It makes
// no dependency checks: catalog-service reachability is a per-request
// concern, not a liveness one.
func Handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
