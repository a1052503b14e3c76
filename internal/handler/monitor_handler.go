package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/anatomyace/anatomy-ace/internal/model"
	"github.com/anatomyace/anatomy-ace/internal/response"
	"github.com/anatomyace/anatomy-ace/internal/service"
	"github.com/anatomyace/anatomy-ace/internal/validator"
)

const defaultMonitorHours = 24

// MonitorHandler serves the admin activity dashboard.
type MonitorHandler struct {
	monitorService *service.MonitorService
	log            zerolog.Logger
}

// NewMonitorHandler creates a new MonitorHandler.
func NewMonitorHandler(monitorService *service.MonitorService, log zerolog.Logger) *MonitorHandler {
	return &MonitorHandler{
		monitorService: monitorService,
		log:            log.With().Str("component", "monitor_handler").Logger(),
	}
}

// GetActivity godoc
// GET /api/v1/admin/monitor?hours=24
// Session counts, tier distribution and the hardest questions for the window.
func (h *MonitorHandler) GetActivity(c *gin.Context) {
	var q model.MonitorQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	if q.Hours == 0 {
		q.Hours = defaultMonitorHours
	}

	since := time.Now().Add(-time.Duration(q.Hours) * time.Hour).UTC()
	snapshot, err := h.monitorService.Snapshot(c.Request.Context(), since)
	if err != nil {
		h.log.Error().Err(err).Msg("Activity snapshot failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, snapshot)
}
