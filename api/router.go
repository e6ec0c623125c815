package api

import (
	"net/http"

	"github.com/Domenick1991/airtickets/config"
	"github.com/Domenick1991/airtickets/internal/logger"
	"github.com/Domenick1991/airtickets/internal/service/airlines"
	"github.com/Domenick1991/airtickets/internal/service/booking"
	"github.com/Domenick1991/airtickets/internal/service/flights"
	"github.com/Domenick1991/airtickets/internal/service/passengers"
	"github.com/Domenick1991/airtickets/internal/service/stats"
	"github.com/gin-gonic/gin"
)

type Services struct {
	Airlines   airlines.AirlineUseCase
	Flights    flights.FlightUseCase
	Passengers passengers.PassengerUseCase
	Bookings   booking.BookingUseCase
	Stats      stats.StatsUseCase
}

func NewRouter(cfg config.HTTPConfig, svc Services, log *logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(Recovery(log), RequestLogger(log))
	if cfg.RateLimitPerSec > 0 {
		router.Use(RateLimit(cfg.RateLimitPerSec, cfg.RateLimitBurst, log))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	NewAirlineHandler(svc.Airlines).Register(router.Group("/airlines"))
	NewFlightHandler(svc.Flights).Register(router.Group("/flights"))
	NewPassengerHandler(svc.Passengers).Register(router.Group("/passengers"))
	NewBookingHandler(svc.Bookings).Register(router.Group("/bookings"))
	NewStatsHandler(svc.Stats).Register(router.Group("/stats"))
	return router
}
