package api

import (
	"net/http"

	"github.com/Domenick1991/airtickets/internal/service/stats"
	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	service stats.StatsUseCase
}

func NewStatsHandler(service stats.StatsUseCase) *StatsHandler {
	return &StatsHandler{service: service}
}

func (h *StatsHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.get)
}

func (h *StatsHandler) get(c *gin.Context) {
	st, err := h.service.Get(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}
