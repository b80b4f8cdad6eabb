package httpapi

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"vitalwatch/internal/models"
	"vitalwatch/internal/service"
	"vitalwatch/internal/session"
)

// MonitorController 监测会话控制接口
type MonitorController interface {
	Start(ctx context.Context, userID string) error
	Stop()
	Snapshot() service.Snapshot
	SessionSummary(ctx context.Context) (session.Summary, error)
	RecentReadings(ctx context.Context) ([]models.Reading, error)
	AcknowledgeAlert(ctx context.Context, alertID string) error
	DismissAnomaly(id string)
	Subscribe() chan models.AnomalyEvent
	Unsubscribe(ch chan models.AnomalyEvent)
}

// ProfileStore 用户档案查询接口
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
}

// DashboardHandler 仪表盘 HTTP 处理器
type DashboardHandler struct {
	monitor  MonitorController
	profiles ProfileStore
	logger   *zap.Logger
}

// NewDashboardHandler 创建仪表盘处理器
func NewDashboardHandler(monitor MonitorController, profiles ProfileStore, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		monitor:  monitor,
		profiles: profiles,
		logger:   logger,
	}
}

// StartSession POST /api/v1/session/start
func (h *DashboardHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID string `json:"user_id"`
	}
	if err := readBodyJSON(r, 1<<20, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}
	if body.UserID == "" {
		writeJSON(w, http.StatusBadRequest, Fail("user_id is required"))
		return
	}

	if err := h.monitor.Start(r.Context(), body.UserID); err != nil {
		writeJSON(w, http.StatusConflict, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"user_id": body.UserID}))
}

// StopSession POST /api/v1/session/stop
func (h *DashboardHandler) StopSession(w http.ResponseWriter, r *http.Request) {
	h.monitor.Stop()
	writeJSON(w, http.StatusOK, Ok[any](nil))
}

// SessionSummary GET /api/v1/session/summary
func (h *DashboardHandler) SessionSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.monitor.SessionSummary(r.Context())
	if err != nil {
		writeJSON(w, http.StatusNotFound, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(summary))
}

// Snapshot GET /api/v1/snapshot
func (h *DashboardHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Ok(h.monitor.Snapshot()))
}

// RecentReadings GET /api/v1/readings
func (h *DashboardHandler) RecentReadings(w http.ResponseWriter, r *http.Request) {
	readings, err := h.monitor.RecentReadings(r.Context())
	if err != nil {
		writeJSON(w, http.StatusNotFound, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"items": readings,
		"total": len(readings),
	}))
}

// ActiveAlerts GET /api/v1/alerts
func (h *DashboardHandler) ActiveAlerts(w http.ResponseWriter, r *http.Request) {
	alerts := h.monitor.Snapshot().Alerts
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"items": alerts,
		"total": len(alerts),
	}))
}

// AcknowledgeAlert POST /api/v1/alerts/acknowledge
func (h *DashboardHandler) AcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	var body struct {
		AlertID string `json:"alert_id"`
	}
	if err := readBodyJSON(r, 1<<20, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}
	if body.AlertID == "" {
		writeJSON(w, http.StatusBadRequest, Fail("alert_id is required"))
		return
	}

	if err := h.monitor.AcknowledgeAlert(r.Context(), body.AlertID); err != nil {
		writeJSON(w, http.StatusInternalServerError, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"acknowledged": body.AlertID}))
}

// DismissAnomaly POST /api/v1/anomalies/dismiss/{id}
func (h *DashboardHandler) DismissAnomaly(w http.ResponseWriter, r *http.Request, id string) {
	h.monitor.DismissAnomaly(id)
	writeJSON(w, http.StatusOK, Ok[any](nil))
}

// ExportReport GET /api/v1/export/report
func (h *DashboardHandler) ExportReport(w http.ResponseWriter, r *http.Request) {
	snap := h.monitor.Snapshot()
	if snap.UserID == "" {
		writeJSON(w, http.StatusNotFound, Fail("no monitoring session"))
		return
	}

	readings, err := h.monitor.RecentReadings(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, Fail(err.Error()))
		return
	}

	profile := models.UserProfile{UserID: snap.UserID, Name: snap.UserID}
	if p, err := h.profiles.GetProfile(r.Context(), snap.UserID); err != nil {
		h.logger.Warn("Failed to load profile for report",
			zap.String("user_id", snap.UserID),
			zap.Error(err),
		)
	} else if p != nil {
		profile = *p
	}

	report, err := session.GenerateReport(profile, readings, snap.HealthScore)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, Fail(err.Error()))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(report)
}

// ExportCSV GET /api/v1/export/csv
func (h *DashboardHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	readings, err := h.monitor.RecentReadings(r.Context())
	if err != nil {
		writeJSON(w, http.StatusNotFound, Fail(err.Error()))
		return
	}

	data, err := session.GenerateCSV(readings)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, Fail(err.Error()))
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="health-data.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// ExportExcel GET /api/v1/export/excel
func (h *DashboardHandler) ExportExcel(w http.ResponseWriter, r *http.Request) {
	readings, err := h.monitor.RecentReadings(r.Context())
	if err != nil {
		writeJSON(w, http.StatusNotFound, Fail(err.Error()))
		return
	}

	data, err := session.GenerateExcel(readings)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, Fail(err.Error()))
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="health-data.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
