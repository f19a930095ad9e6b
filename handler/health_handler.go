package handler

import (
	"context"
	"database/sql"
	"joban-api/common"
	"net/http"
	"time"
)

// HealthCheck godoc
// @Summary      Show the status of server
// @Description  get the status of server
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "API is healthy and running"})
}

// Ready godoc
// @Summary      Readiness probe
// @Description  Reports whether the database answers a ping.
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]bool
// @Failure      503  {object}  map[string]bool
// @Router       /ready [get]
func Ready(conn *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if conn == nil || conn.PingContext(ctx) != nil {
			common.RespondJSON(w, http.StatusServiceUnavailable, map[string]bool{"ready": false})
			return
		}
		common.RespondJSON(w, http.StatusOK, map[string]bool{"ready": true})
	}
}
