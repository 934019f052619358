package controllers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"go-storefront/utils"
)

// HealthController reports whether the database is reachable
type HealthController struct {
	DB *sql.DB
}

// NewHealthController creates a new HealthController
func NewHealthController(db *sql.DB) *HealthController {
	return &HealthController{DB: db}
}

// Check pings the database
func (hc *HealthController) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := hc.DB.PingContext(ctx); err != nil {
		utils.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
