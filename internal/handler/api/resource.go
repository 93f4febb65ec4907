package api

import (
	"net/http"

	"court-booking/internal/domain/reservation"
	resdto "court-booking/internal/handler/dto/response"
	"court-booking/internal/handler/httperr"
	"court-booking/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type ResourceHandler struct {
	q queries.ReservationQueries
}

func NewResourceHandler(q queries.ReservationQueries) *ResourceHandler {
	return &ResourceHandler{q: q}
}

// @Summary Resource availability
// @Description Slots held by pending or confirmed reservations on the given date
// @Tags resources
// @Produce json
// @Security BearerAuth
// @Param id path string true "Resource ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} resdto.AvailabilityResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /resources/{id}/availability [get]
func (h *ResourceHandler) Availability(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	date, err := reservation.ParseDate(c.Query("date"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid date", nil)
		return
	}

	view, err := h.q.Availability(c.Request.Context(), id, date)
	if err != nil {
		abortWithUseCaseError(c, err, "availability")
		return
	}
	c.JSON(http.StatusOK, resdto.FromAvailability(view))
}
