package api

import (
	"net/http"

	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/Domenick1991/airtickets/internal/service/passengers"
	"github.com/gin-gonic/gin"
)

type PassengerHandler struct {
	service passengers.PassengerUseCase
}

func NewPassengerHandler(service passengers.PassengerUseCase) *PassengerHandler {
	return &PassengerHandler{service: service}
}

func (h *PassengerHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.POST("", h.findOrCreate)
	router.GET("/:id", h.get)
	router.PUT("/:id", h.update)
}

// list returns every passenger, or the single holder of ?passport=.
func (h *PassengerHandler) list(c *gin.Context) {
	if passport := c.Query("passport"); passport != "" {
		p, err := h.service.GetByPassport(c.Request.Context(), passport)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
		return
	}

	list, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *PassengerHandler) get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	p, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// findOrCreate answers 201 for a new passenger and 200 when the passport is
// already registered.
func (h *PassengerHandler) findOrCreate(c *gin.Context) {
	var req domain.Passenger
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, created, err := h.service.FindOrCreate(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, p)
}

func (h *PassengerHandler) update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req domain.Passenger
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.ID = id
	if err := h.service.Update(c.Request.Context(), &req); err != nil {
		writeError(c, err)
		return
	}
	p, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
