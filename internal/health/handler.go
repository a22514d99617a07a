// Package health exposes the liveness endpoint used by deployment probes.
package health

import "net/http"

// Handler reports the process as alive. It does not touch the database;
// a probe hitting this endpoint must stay cheap.
func Handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
