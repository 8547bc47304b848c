// Package app assembles the application's modules into a running whole.
package app

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/opencourt/field-booking-backend/internal/api"
	"github.com/opencourt/field-booking-backend/internal/auth"
	"github.com/opencourt/field-booking-backend/internal/booking"
	"github.com/opencourt/field-booking-backend/internal/cancelpolicy"
	"github.com/opencourt/field-booking-backend/internal/coach"
	"github.com/opencourt/field-booking-backend/internal/config"
	"github.com/opencourt/field-booking-backend/internal/court"
	"github.com/opencourt/field-booking-backend/internal/events"
	"github.com/opencourt/field-booking-backend/internal/field"
	"github.com/opencourt/field-booking-backend/internal/photo"
	"github.com/opencourt/field-booking-backend/internal/pkg/storage"
	"github.com/opencourt/field-booking-backend/internal/schedule"
	"github.com/opencourt/field-booking-backend/internal/scheduler"
	"github.com/opencourt/field-booking-backend/internal/user"
	"github.com/opencourt/field-booking-backend/internal/venue"
)

// Container holds the initialized components that are needed externally.
type Container struct {
	Router    *gin.Engine
	Scheduler *scheduler.Scheduler
	Publisher events.Publisher
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg *config.Config, pool *pgxpool.Pool) (*Container, error) {
	passwordHasher := auth.NewBcryptPasswordHasherWithCost(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessTokenTTL)

	var publisher events.Publisher
	if cfg.AMQPURL != "" {
		p, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return nil, err
		}
		publisher = p
	} else {
		log.Warn().Msg("AMQP_URL not set; booking events disabled")
		publisher = events.NoopPublisher{}
	}

	// User module
	userRepo := user.NewPgxRepository(pool)
	userService := user.NewService(userRepo, passwordHasher)

	// Venue module
	venueRepo := venue.NewPgxRepository(pool)
	venueService := venue.NewService(venueRepo, userService)

	// Field module
	fieldRepo := field.NewPgxRepository(pool)
	fieldService := field.NewService(fieldRepo, venueService, cfg.Timezone)

	// Court module
	courtRepo := court.NewPgxRepository(pool)
	courtService := court.NewService(courtRepo, fieldService)

	// Coach module
	coachRepo := coach.NewPgxRepository(pool)
	coachService := coach.NewService(coachRepo, venueService, userService)

	// Schedule store
	scheduleRepo := schedule.NewPgxRepository(pool)
	scheduleService := schedule.NewService(scheduleRepo, cfg.ReserveMaxAttempts, cfg.Timezone)

	// Cancellation policy
	policy := cancelpolicy.New(cfg.CancellationTiers, cfg.PlatformFeeRefundable, cfg.Timezone)

	// Booking module
	bookingRepo := booking.NewPgxRepository(pool)
	bookingService := booking.NewService(
		bookingRepo,
		fieldService,
		courtService,
		coachService,
		scheduleService,
		policy,
		publisher,
		cfg.Timezone,
		cfg.PlatformFeePercent,
	)

	// Photo module
	photoStorage, err := storage.NewLocalStorage(cfg.PhotoDir)
	if err != nil {
		return nil, err
	}
	photoRepo := photo.NewPgxRepository(pool)
	photoService := photo.NewService(photoRepo, fieldService, photoStorage)

	router := api.NewRouter(api.Config{
		IsProduction:    cfg.IsProduction,
		ProdOrigins:     cfg.ProdOrigins,
		UserService:     userService,
		VenueService:    venueService,
		FieldService:    fieldService,
		CourtService:    courtService,
		CoachService:    coachService,
		ScheduleService: scheduleService,
		BookingService:  bookingService,
		PhotoService:    photoService,
		JWTManager:      jwtManager,
	})

	sched, err := scheduler.New(fieldService, bookingService, scheduleService)
	if err != nil {
		return nil, err
	}

	return &Container{
		Router:    router,
		Scheduler: sched,
		Publisher: publisher,
	}, nil
}
