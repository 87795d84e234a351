package api

import "net/http"

// schedulerStatusHandler reports whether the scrape loop is running
func (h *Handler) schedulerStatusHandler(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"running": h.scheduler.IsRunning(),
	})
}

// startSchedulerHandler starts the scrape loop; starting an already-running
// loop is a no-op and reported as such
func (h *Handler) startSchedulerHandler(w http.ResponseWriter, r *http.Request) {
	started := h.scheduler.Start()
	h.writeJSON(w, http.StatusOK, map[string]any{
		"running": true,
		"started": started,
	})
}

// stopSchedulerHandler stops the scrape loop
func (h *Handler) stopSchedulerHandler(w http.ResponseWriter, r *http.Request) {
	stopped := h.scheduler.Stop()
	h.writeJSON(w, http.StatusOK, map[string]any{
		"running": false,
		"stopped": stopped,
	})
}
