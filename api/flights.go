package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/Domenick1991/airtickets/internal/service/flights"
	"github.com/gin-gonic/gin"
)

const searchDateLayout = "2006-01-02"

type FlightHandler struct {
	service flights.FlightUseCase
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/search", h.search)
	router.GET("/:id", h.get)
	router.POST("", h.create)
}

func (h *FlightHandler) list(c *gin.Context) {
	flights, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, flights)
}

// search takes from, to and an optional date (YYYY-MM-DD, UTC day).
func (h *FlightHandler) search(c *gin.Context) {
	query := domain.FlightSearch{
		DepartureCity: c.Query("from"),
		ArrivalCity:   c.Query("to"),
	}
	if raw := c.Query("date"); raw != "" {
		date, err := time.Parse(searchDateLayout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		query.Date = &date
	}

	flights, err := h.service.Search(c.Request.Context(), query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, flights)
}

func (h *FlightHandler) get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	flight, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, flight)
}

func (h *FlightHandler) create(c *gin.Context) {
	var flight domain.Flight
	if err := c.ShouldBindJSON(&flight); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	flight.ID, flight.Airline = 0, nil
	if err := h.service.Create(c.Request.Context(), &flight); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, flight)
}
