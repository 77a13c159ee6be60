package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/teewatch/teewatch/internal/api/middleware"
	"github.com/teewatch/teewatch/internal/application/services"
	"github.com/teewatch/teewatch/internal/domain/entities"
)

// AlertHandler serves alert rule CRUD. Every route requires an
// authenticated user; the router wraps them in the auth middleware.
type AlertHandler struct {
	alerts *services.AlertService
}

// NewAlertHandler creates a new alert handler.
func NewAlertHandler(alerts *services.AlertService) *AlertHandler {
	return &AlertHandler{alerts: alerts}
}

type createAlertRequest struct {
	CourseIDs []int64 `json:"course_ids"`
	AlertDate string  `json:"alert_date"`
	StartTime string  `json:"start_time"`
	EndTime   string  `json:"end_time"`
	Players   int     `json:"players"`
}

type setActiveRequest struct {
	IsActive bool `json:"is_active"`
}

// CreateAlert handles POST /api/alerts
func (h *AlertHandler) CreateAlert(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req createAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	alertDate, err := time.Parse(searchDateLayout, req.AlertDate)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "alert_date must be YYYY-MM-DD")
		return
	}

	rule := &entities.AlertRule{
		CourseIDs: req.CourseIDs,
		AlertDate: alertDate,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Players:   req.Players,
	}

	created, err := h.alerts.Create(r.Context(), user.ID, rule)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

// ListAlerts handles GET /api/alerts
func (h *AlertHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	rules, err := h.alerts.ListByUser(r.Context(), user.ID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	if rules == nil {
		rules = []*entities.AlertRule{}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"alerts": rules,
		"count":  len(rules),
	})
}

// SetAlertActive handles PATCH /api/alerts/{id}
func (h *AlertHandler) SetAlertActive(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	alertID := r.PathValue("id")
	if alertID == "" {
		respondWithError(w, http.StatusBadRequest, "alert ID is required")
		return
	}

	var req setActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.alerts.SetActive(r.Context(), user.ID, alertID, req.IsActive); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"id":        alertID,
		"is_active": req.IsActive,
	})
}

// DeleteAlert handles DELETE /api/alerts/{id}
func (h *AlertHandler) DeleteAlert(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	alertID := r.PathValue("id")
	if alertID == "" {
		respondWithError(w, http.StatusBadRequest, "alert ID is required")
		return
	}

	if err := h.alerts.Delete(r.Context(), user.ID, alertID); err != nil {
		respondWithAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
