package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/opencourt/field-booking-backend/internal/auth"
	"github.com/opencourt/field-booking-backend/internal/booking"
	bookingHttp "github.com/opencourt/field-booking-backend/internal/booking/http"
	"github.com/opencourt/field-booking-backend/internal/coach"
	coachHttp "github.com/opencourt/field-booking-backend/internal/coach/http"
	"github.com/opencourt/field-booking-backend/internal/court"
	courtHttp "github.com/opencourt/field-booking-backend/internal/court/http"
	"github.com/opencourt/field-booking-backend/internal/field"
	fieldHttp "github.com/opencourt/field-booking-backend/internal/field/http"
	"github.com/opencourt/field-booking-backend/internal/photo"
	photoHttp "github.com/opencourt/field-booking-backend/internal/photo/http"
	"github.com/opencourt/field-booking-backend/internal/schedule"
	"github.com/opencourt/field-booking-backend/internal/user"
	"github.com/opencourt/field-booking-backend/internal/venue"
	venueHttp "github.com/opencourt/field-booking-backend/internal/venue/http"
)

// Config carries the services the router wires into handlers.
type Config struct {
	IsProduction bool
	ProdOrigins  string

	UserService     user.Service
	VenueService    venue.Service
	FieldService    field.Service
	CourtService    court.Service
	CoachService    coach.Service
	ScheduleService schedule.Service
	BookingService  booking.Service
	PhotoService    photo.Service

	JWTManager *auth.JWTManager
}

// NewRouter assembles middleware and registers every module's routes
// under /v1.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction && cfg.ProdOrigins != "" {
		corsConfig.AllowOrigins = []string{cfg.ProdOrigins}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	authMiddleware := auth.AuthRequired(cfg.JWTManager)

	authHandler := NewAuthHandler(cfg.UserService, cfg.JWTManager)
	venueHandler := venueHttp.NewHandler(cfg.VenueService, cfg.UserService)
	fieldHandler := fieldHttp.NewHandler(cfg.FieldService, cfg.UserService, cfg.ScheduleService, cfg.BookingService)
	courtHandler := courtHttp.NewHandler(cfg.CourtService, cfg.UserService)
	coachHandler := coachHttp.NewHandler(cfg.CoachService, cfg.UserService)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService, cfg.UserService)
	photoHandler := photoHttp.NewHandler(cfg.PhotoService, cfg.UserService)

	v1 := r.Group("/v1")
	{
		v1.POST("/auth/register", authHandler.Register)
		v1.POST("/auth/login", authHandler.Login)
		v1.GET("/me", authMiddleware, authHandler.Me)

		venueHttp.RegisterRoutes(v1, venueHandler, authMiddleware)
		fieldHttp.RegisterRoutes(v1, fieldHandler, authMiddleware)
		courtHttp.RegisterRoutes(v1, courtHandler, authMiddleware)
		coachHttp.RegisterRoutes(v1, coachHandler, authMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware)
		photoHttp.RegisterRoutes(v1, photoHandler, authMiddleware)
	}

	return r
}
