package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/airtickets/api"
	"github.com/Domenick1991/airtickets/config"
	"github.com/Domenick1991/airtickets/internal/cache"
	"github.com/Domenick1991/airtickets/internal/kafka"
	"github.com/Domenick1991/airtickets/internal/logger"
	"github.com/Domenick1991/airtickets/internal/repository"
	"github.com/Domenick1991/airtickets/internal/seed"
	"github.com/Domenick1991/airtickets/internal/service/airlines"
	"github.com/Domenick1991/airtickets/internal/service/booking"
	"github.com/Domenick1991/airtickets/internal/service/flights"
	"github.com/Domenick1991/airtickets/internal/service/passengers"
	"github.com/Domenick1991/airtickets/internal/service/stats"
	"github.com/Domenick1991/airtickets/internal/shell"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repositories struct {
	Airlines   repository.AirlineRepository
	Flights    repository.FlightRepository
	Passengers repository.PassengerRepository
	Bookings   repository.BookingRepository
}

// App holds the services shared by the HTTP API and the shell.
type App struct {
	Airlines   *airlines.AirlineService
	Flights    *flights.FlightService
	Passengers *passengers.PassengerService
	Bookings   *booking.BookingService
	Stats      *stats.StatsService

	closers []func()
}

// NewApp opens storage, seeds it when configured and wires the services.
// Redis and Kafka are optional: an empty address or broker list leaves them out.
func NewApp(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	app := &App{}

	repos, err := app.openStorage(ctx, cfg.Database, log)
	if err != nil {
		return nil, err
	}

	if cfg.Booking.Seed {
		if _, err := seed.Run(ctx, repos.Airlines, repos.Flights, time.Now(), log); err != nil {
			app.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	var flightCache flights.FlightCache
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.FlightsCacheTTL)*time.Second)
		if err := redisCache.Ping(ctx); err != nil {
			log.Warn("redis unavailable, flight cache disabled", "addr", cfg.Redis.Addr, "error", err)
			_ = redisCache.Close()
		} else {
			flightCache = redisCache
			app.closers = append(app.closers, func() { _ = redisCache.Close() })
		}
	}

	var opts []booking.BookingServiceOption
	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, log)
		if err := producer.CheckConnection(ctx); err != nil {
			log.Warn("kafka check failed, events may be lost", "error", err)
		}
		app.closers = append(app.closers, func() { _ = producer.Close() })
		opts = append(opts,
			booking.WithProducer(producer, cfg.Kafka.BookingEventsTopic),
			booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		)
	}

	app.Airlines = airlines.NewAirlineService(repos.Airlines)
	app.Flights = flights.NewFlightService(repos.Flights, flightCache, log)
	app.Passengers = passengers.NewPassengerService(repos.Passengers)
	app.Bookings = booking.NewBookingService(repos.Bookings, app.Flights, app.Passengers, log, opts...)
	app.Stats = stats.NewStatsService(repos.Flights, repos.Passengers, repos.Bookings)
	return app, nil
}

func (a *App) openStorage(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (Repositories, error) {
	if cfg.Driver == config.DriverMemory {
		log.Info("using in-memory storage")
		store := repository.NewMemoryStore()
		return Repositories{
			Airlines:   store.Airlines(),
			Flights:    store.Flights(),
			Passengers: store.Passengers(),
			Bookings:   store.Bookings(),
		}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		return Repositories{}, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return Repositories{}, fmt.Errorf("ping postgres: %w", err)
	}
	if err := repository.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return Repositories{}, err
	}
	a.closers = append(a.closers, pool.Close)
	log.Info("connected to postgres", "host", cfg.Host, "db", cfg.Name)

	return Repositories{
		Airlines:   repository.NewAirlineRepository(pool),
		Flights:    repository.NewFlightRepository(pool),
		Passengers: repository.NewPassengerRepository(pool),
		Bookings:   repository.NewBookingRepository(pool),
	}, nil
}

func (a *App) APIServices() api.Services {
	return api.Services{
		Airlines:   a.Airlines,
		Flights:    a.Flights,
		Passengers: a.Passengers,
		Bookings:   a.Bookings,
		Stats:      a.Stats,
	}
}

func (a *App) ShellServices() shell.Services {
	return shell.Services{
		Flights:    a.Flights,
		Passengers: a.Passengers,
		Bookings:   a.Bookings,
		Stats:      a.Stats,
	}
}

// Close releases connections in reverse order of opening.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
