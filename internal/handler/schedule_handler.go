package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Kilat-Pet-Delivery/service-appointment/internal/application"
	"github.com/Kilat-Pet-Delivery/service-appointment/internal/domain/schedule"
	"github.com/Kilat-Pet-Delivery/service-appointment/internal/middleware"
	"github.com/Kilat-Pet-Delivery/service-appointment/internal/response"
)

// SelectDateRequest selects a date; a null date clears the selection.
type SelectDateRequest struct {
	Date *schedule.Date `json:"date"`
}

// SelectSlotRequest selects a slot of the selected date; an empty id clears it.
type SelectSlotRequest struct {
	SlotID string `json:"slot_id"`
}

// ScheduleHandler serves the public booking widget.
type ScheduleHandler struct {
	service *application.BookingService
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(service *application.BookingService) *ScheduleHandler {
	return &ScheduleHandler{service: service}
}

// RegisterRoutes registers the widget routes.
func (h *ScheduleHandler) RegisterRoutes(r *gin.RouterGroup) {
	api := r.Group("/api/v1")
	{
		api.GET("/dates", h.ListDates)
		api.GET("/dates/:date/slots", h.ListSlots)
		api.POST("/bookings", h.Book)
	}

	selection := api.Group("/selection", middleware.SessionMiddleware())
	{
		selection.GET("", h.GetSelection)
		selection.PUT("/date", h.SelectDate)
		selection.PUT("/slot", h.SelectSlot)
		selection.DELETE("", h.ClearSelection)
	}
}

// ListDates handles GET /api/v1/dates.
func (h *ScheduleHandler) ListDates(c *gin.Context) {
	response.Success(c, h.service.ListBookableDates())
}

// ListSlots handles GET /api/v1/dates/:date/slots.
func (h *ScheduleHandler) ListSlots(c *gin.Context) {
	date, ok := dateParam(c)
	if !ok {
		return
	}

	slots, err := h.service.AvailableSlots(date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, slots)
}

// GetSelection handles GET /api/v1/selection. Selections belong to the caller's
// session (X-Session-ID header or cookie).
func (h *ScheduleHandler) GetSelection(c *gin.Context) {
	response.Success(c, h.service.GetSelection(middleware.GetSessionID(c)))
}

// SelectDate handles PUT /api/v1/selection/date.
func (h *ScheduleHandler) SelectDate(c *gin.Context) {
	var req SelectDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	sel, err := h.service.SelectDate(middleware.GetSessionID(c), req.Date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, sel)
}

// SelectSlot handles PUT /api/v1/selection/slot.
func (h *ScheduleHandler) SelectSlot(c *gin.Context) {
	var req SelectSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	sel, err := h.service.SelectTimeSlot(middleware.GetSessionID(c), req.SlotID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, sel)
}

// ClearSelection handles DELETE /api/v1/selection.
func (h *ScheduleHandler) ClearSelection(c *gin.Context) {
	session := middleware.GetSessionID(c)
	h.service.ClearSelection(session)
	response.Success(c, h.service.GetSelection(session))
}

// Book handles POST /api/v1/bookings.
func (h *ScheduleHandler) Book(c *gin.Context) {
	var req application.BookSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.Book(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// dateParam parses the :date path parameter and writes a 400 when it is malformed.
func dateParam(c *gin.Context) (schedule.Date, bool) {
	date, err := schedule.ParseDate(c.Param("date"))
	if err != nil {
		response.Error(c, err)
		return schedule.Date{}, false
	}
	return date, true
}
