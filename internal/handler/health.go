package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthHandler struct {
	DB      *gorm.DB // nil when run history is disabled
	Started time.Time
}

func (h *HealthHandler) Register(r *gin.Engine) {
	r.GET("/healthz", h.health)
	r.GET("/readyz", h.ready)
}

func (h *HealthHandler) health(c *gin.Context) {
	payload := gin.H{"status": "ok"}
	if !h.Started.IsZero() {
		payload["uptime"] = time.Since(h.Started).Round(time.Second).String()
	}
	Ok(c, payload)
}

func (h *HealthHandler) ready(c *gin.Context) {
	if h.DB == nil {
		Error(c, http.StatusServiceUnavailable, "db_missing")
		return
	}
	sqlDB, err := h.DB.DB()
	if err != nil {
		Error(c, http.StatusServiceUnavailable, "db_error")
		return
	}
	if err := sqlDB.Ping(); err != nil {
		Error(c, http.StatusServiceUnavailable, "db_unreachable")
		return
	}
	Ok(c, gin.H{"status": "ready"})
}
