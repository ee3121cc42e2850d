// Package httpapi is the HTTP surface of the scheduling core: availability
// management for doctors, slot browsing and booking for patients, and a live
// appointment-change stream per doctor.
package httpapi

import (
	"net/http"

	"github.com/carebook/telemed-api/internal/events"
	"github.com/carebook/telemed-api/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type handlers struct {
	availability  *service.AvailabilityService
	slots         *service.SlotService
	booking       *service.BookingService
	users         *service.UserService
	notifications *service.NotificationService
	hub           *events.Hub
	logger        *zap.Logger
}

// Deps carries everything the router needs.
type Deps struct {
	Availability  *service.AvailabilityService
	Slots         *service.SlotService
	Booking       *service.BookingService
	Users         *service.UserService
	Notifications *service.NotificationService
	Hub           *events.Hub
	Logger        *zap.Logger
	Environment   string
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(deps Deps) *gin.Engine {
	if deps.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	h := &handlers{
		availability:  deps.Availability,
		slots:         deps.Slots,
		booking:       deps.Booking,
		users:         deps.Users,
		notifications: deps.Notifications,
		hub:           deps.Hub,
		logger:        deps.Logger,
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(deps.Logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		// Public directory and slot browsing.
		v1.POST("/users", h.registerUser)
		v1.GET("/doctors", h.listDoctors)
		v1.GET("/doctors/:id/availability", h.listAvailability)
		v1.GET("/doctors/:id/slots", h.daySlots)
		v1.GET("/doctors/:id/days", h.bookableDays)
		v1.GET("/doctors/:id/watch", h.watchDoctor)

		// Everything below acts on behalf of an identified user.
		authed := v1.Group("", RequireActor())
		{
			authed.POST("/availability", h.createAvailability)
			authed.DELETE("/availability/:id", h.deleteAvailability)

			authed.POST("/appointments", h.bookAppointment)
			authed.GET("/appointments/:id", h.getAppointment)
			authed.PATCH("/appointments/:id/status", h.updateAppointmentStatus)
			authed.GET("/doctors/:id/appointments", h.listDoctorAppointments)
			authed.GET("/patients/:id/appointments", h.listPatientAppointments)

			authed.GET("/users/:id/notifications", h.listNotifications)
			authed.POST("/notifications/:id/read", h.markNotificationRead)
		}
	}

	return router
}
