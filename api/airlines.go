package api

import (
	"net/http"

	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/Domenick1991/airtickets/internal/service/airlines"
	"github.com/gin-gonic/gin"
)

type AirlineHandler struct {
	service airlines.AirlineUseCase
}

func NewAirlineHandler(service airlines.AirlineUseCase) *AirlineHandler {
	return &AirlineHandler{service: service}
}

func (h *AirlineHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/:id", h.get)
	router.POST("", h.create)
}

func (h *AirlineHandler) list(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *AirlineHandler) get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	airline, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, airline)
}

func (h *AirlineHandler) create(c *gin.Context) {
	var airline domain.Airline
	if err := c.ShouldBindJSON(&airline); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	airline.ID = 0
	if err := h.service.Create(c.Request.Context(), &airline); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, airline)
}
