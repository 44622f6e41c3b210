package server

import (
	"context"
	"net/http"
	"time"

	"musicbox/logger"
)

type healthStatus struct {
	Status    string `json:"status,omitempty"`
	Connected *bool  `json:"connected,omitempty"`
	Backend   string `json:"backend,omitempty"`
	Message   string `json:"message"`
}

// HealthHandler 服务存活检查
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthStatus{Status: "ok", Message: "服务器运行正常"})
}

// DBHealthHandler 数据存储检查，内存存储始终可用
func (h *APIHandler) DBHealthHandler(w http.ResponseWriter, r *http.Request) {
	connected := true
	writeJSON(w, http.StatusOK, healthStatus{Connected: &connected, Message: "数据库连接正常"})
}

// RedisHealthHandler 缓存后端检查
func (h *APIHandler) RedisHealthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	backend := "memory"
	if h.cfg != nil && h.cfg.UseRedisCache() {
		backend = "redis"
	}

	connected := true
	if err := h.svc.CacheHealth(ctx); err != nil {
		logger.Warn("缓存健康检查失败", logger.ErrorField(err))
		connected = false
		writeJSON(w, http.StatusServiceUnavailable, healthStatus{Connected: &connected, Backend: backend, Message: "Redis连接失败"})
		return
	}
	writeJSON(w, http.StatusOK, healthStatus{Connected: &connected, Backend: backend, Message: "Redis连接正常"})
}
