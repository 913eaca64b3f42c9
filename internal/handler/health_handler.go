package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger はストアへの疎通確認のインターフェース。*sql.DBが満たす。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler はヘルスチェックのHTTPハンドラー。
type HealthHandler struct {
	pinger Pinger
}

// NewHealthHandler はHealthHandlerを生成する。
func NewHealthHandler(pinger Pinger) *HealthHandler {
	return &HealthHandler{pinger: pinger}
}

// healthResponse はヘルスチェックのAPIレスポンス。
type healthResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
}

// Liveness はプロセスの生存確認を返す。外部依存には触れない。
// GET /health
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Success: true, Status: "ok"})
}

// Readiness はストアへの疎通を確認する。
// GET /healthz
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.pinger.PingContext(ctx); err != nil {
		slog.Error("database ping failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Success: false, Status: "unavailable"})
		return
	}

	writeJSON(w, http.StatusOK, healthResponse{Success: true, Status: "ok"})
}
