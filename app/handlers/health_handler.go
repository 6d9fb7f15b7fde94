package handlers

import (
	"net/http"

	"github.com/unrolled/render"
	"gorm.io/gorm"
)

type HealthHandler struct {
	render *render.Render
	db     *gorm.DB
}

func NewHealthHandler(r *render.Render, db *gorm.DB) *HealthHandler {
	return &HealthHandler{render: r, db: db}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(r.Context())
	}
	if err != nil {
		_ = h.render.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	_ = h.render.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
