package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Kilat-Pet-Delivery/service-appointment/internal/application"
	"github.com/Kilat-Pet-Delivery/service-appointment/internal/domain/schedule"
	"github.com/Kilat-Pet-Delivery/service-appointment/internal/response"
)

// AddDateRequest opens a date without slots.
type AddDateRequest struct {
	Date schedule.Date `json:"date"`
}

// AddSlotRequest adds a slot; time is "HH:MM" or "hh:mm AM".
type AddSlotRequest struct {
	Time string `json:"time" binding:"required"`
}

// AdminHandler handles schedule management and the appointment ledger.
type AdminHandler struct {
	service  *application.BookingService
	settings *application.SettingsService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(service *application.BookingService, settings *application.SettingsService) *AdminHandler {
	return &AdminHandler{service: service, settings: settings}
}

// RegisterRoutes registers admin routes.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup) {
	admin := r.Group("/api/v1/admin")
	{
		admin.GET("/dates", h.ListDates)
		admin.POST("/dates", h.AddDate)
		admin.DELETE("/dates/:date", h.RemoveDate)
		admin.POST("/dates/:date/slots", h.AddSlot)
		admin.DELETE("/dates/:date/slots/:slotId", h.RemoveSlot)

		admin.GET("/appointments", h.ListAppointments)
		admin.GET("/appointments/export", h.ExportAppointments)
		admin.GET("/appointments/:id", h.GetAppointment)
		admin.DELETE("/appointments", h.ClearAppointments)
		admin.GET("/stats", h.Stats)

		admin.GET("/settings", h.GetSettings)
		admin.PUT("/settings", h.UpdateSettings)
		admin.DELETE("/settings", h.ResetSettings)
	}
}

// ListDates handles GET /api/v1/admin/dates.
func (h *AdminHandler) ListDates(c *gin.Context) {
	response.Success(c, h.service.ListDates())
}

// AddDate handles POST /api/v1/admin/dates. It answers 201 for a new date and
// 200 when the date already existed.
func (h *AdminHandler) AddDate(c *gin.Context) {
	var req AddDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if req.Date.IsZero() {
		response.BadRequest(c, "date is required")
		return
	}

	created := h.service.AddAvailableDate(c.Request.Context(), req.Date)
	result, err := h.service.GetDate(req.Date)
	if err != nil {
		response.Error(c, err)
		return
	}
	if created {
		response.Created(c, result)
		return
	}
	response.Success(c, result)
}

// RemoveDate handles DELETE /api/v1/admin/dates/:date.
func (h *AdminHandler) RemoveDate(c *gin.Context) {
	date, ok := dateParam(c)
	if !ok {
		return
	}
	if err := h.service.RemoveAvailableDate(c.Request.Context(), date); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"removed": date})
}

// AddSlot handles POST /api/v1/admin/dates/:date/slots.
func (h *AdminHandler) AddSlot(c *gin.Context) {
	date, ok := dateParam(c)
	if !ok {
		return
	}
	var req AddSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	slot, err := h.service.AddTimeSlot(c.Request.Context(), date, req.Time)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, slot)
}

// RemoveSlot handles DELETE /api/v1/admin/dates/:date/slots/:slotId.
func (h *AdminHandler) RemoveSlot(c *gin.Context) {
	date, ok := dateParam(c)
	if !ok {
		return
	}
	slotID := c.Param("slotId")
	if err := h.service.RemoveTimeSlot(c.Request.Context(), date, slotID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"removed": slotID})
}

// ListAppointments handles GET /api/v1/admin/appointments.
func (h *AdminHandler) ListAppointments(c *gin.Context) {
	page, limit := parsePagination(c)

	result, err := h.service.ListAppointments(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetAppointment handles GET /api/v1/admin/appointments/:id.
func (h *AdminHandler) GetAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid appointment ID")
		return
	}

	result, err := h.service.GetAppointment(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ExportAppointments handles GET /api/v1/admin/appointments/export.
func (h *AdminHandler) ExportAppointments(c *gin.Context) {
	filename := fmt.Sprintf("appointments-%s.csv", time.Now().UTC().Format("20060102"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)

	if err := h.service.ExportAppointments(c.Request.Context(), c.Writer); err != nil {
		// Headers are already sent; record the error for the request log.
		_ = c.Error(err)
	}
}

// ClearAppointments handles DELETE /api/v1/admin/appointments.
func (h *AdminHandler) ClearAppointments(c *gin.Context) {
	removed, err := h.service.ClearAppointments(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"removed": removed})
}

// Stats handles GET /api/v1/admin/stats.
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.service.GetStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, stats)
}

// GetSettings handles GET /api/v1/admin/settings.
func (h *AdminHandler) GetSettings(c *gin.Context) {
	result, err := h.settings.Get(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateSettings handles PUT /api/v1/admin/settings.
func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	var req application.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.settings.Update(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ResetSettings handles DELETE /api/v1/admin/settings.
func (h *AdminHandler) ResetSettings(c *gin.Context) {
	result, err := h.settings.Reset(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return page, limit
}
