package handler

import (
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/logger"
)

type SystemHandler struct {
	db        *sqlx.DB
	redis     *redis.Client
	logger    logger.Logger
	startTime time.Time
}

func NewSystemHandler(db *sqlx.DB, redisClient *redis.Client, log logger.Logger) *SystemHandler {
	return &SystemHandler{
		db:        db,
		redis:     redisClient,
		logger:    log,
		startTime: time.Now(),
	}
}

// Health is a liveness probe: the process is up and serving.
func (h *SystemHandler) Health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(h.startTime).Round(time.Second).String(),
	})
}

// Ready is a readiness probe: both backing stores must answer.
func (h *SystemHandler) Ready(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{
		"database": "ok",
		"redis":    "ok",
	}
	status := http.StatusOK

	if err := h.db.PingContext(r.Context()); err != nil {
		checks["database"] = err.Error()
		status = http.StatusServiceUnavailable
		h.logger.Error("Database ping failed", map[string]interface{}{"error": err.Error()})
	}
	if err := h.redis.Ping(r.Context()).Err(); err != nil {
		checks["redis"] = err.Error()
		status = http.StatusServiceUnavailable
		h.logger.Error("Redis ping failed", map[string]interface{}{"error": err.Error()})
	}

	respondJSON(w, status, map[string]interface{}{"checks": checks})
}
