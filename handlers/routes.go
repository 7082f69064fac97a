package handlers

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the API under /api. checkinMiddleware runs only on
// the check-in and backup code endpoints.
func RegisterRoutes(router gin.IRouter, checkins *CheckinHandler, events *EventHandler, visitors *VisitorHandler, checkinMiddleware ...gin.HandlerFunc) {
	api := router.Group("/api")

	// Check-in routes
	checkin := api.Group("", checkinMiddleware...)
	{
		checkin.GET("/visit/checkin/:id", checkins.CheckInByURL)
		checkin.POST("/slots/visit/qr-scan", checkins.CheckInPrimaryQR)
		checkin.POST("/event-registrations/checkin", checkins.CheckInEventParticipant)
		checkin.POST("/additional-visitors/:token/checkin", checkins.CheckInAdditionalVisitor)
		checkin.POST("/group-walkin-leaders/:id/checkin", checkins.CheckInGroupLeader)
		checkin.POST("/group-walkin-members/:token/checkin", checkins.CheckInGroupMember)
		checkin.POST("/walkin-visitors/:id/checkin", checkins.CheckInWalkin)
		checkin.POST("/backup-codes/validate", checkins.ValidateBackupCode)
	}

	// Lookup routes
	api.GET("/visitors/:id", visitors.GetVisitor)
	api.GET("/event-registrations/:id", checkins.GetRegistration)
	api.GET("/additional-visitors/:token", checkins.GetAdditionalVisitor)
	api.GET("/group-walkin-members/:token", checkins.GetGroupMember)

	// Visitor profile routes
	api.PUT("/visitors/:id/profile", visitors.UpdateProfile)

	// Event routes
	api.POST("/events", events.CreateEvent)
	api.GET("/events", events.GetEvents)
	api.GET("/events/:id", events.GetEvent)
	api.PUT("/events/:id/status", events.UpdateEventStatus)
	api.POST("/events/:id/register", events.RegisterParticipant)
	api.GET("/events/:id/checkins", events.GetCheckins)
	api.PUT("/event-registrations/:id/status", events.UpdateRegistrationStatus)
}
