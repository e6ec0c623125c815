package api

import (
	"net/http"

	"github.com/Domenick1991/airtickets/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.POST("", h.create)
	router.GET("/:id", h.get)
	router.DELETE("/:id", h.cancel)
}

// list returns every booking, or the one matching ?number=.
func (h *BookingHandler) list(c *gin.Context) {
	if number := c.Query("number"); number != "" {
		b, err := h.service.GetByNumber(c.Request.Context(), number)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, b)
		return
	}

	list, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req booking.BookTicketInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b, err := h.service.BookTicket(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h *BookingHandler) get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	b, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) cancel(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	b, err := h.service.CancelBooking(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}
