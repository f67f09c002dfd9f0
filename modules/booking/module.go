package booking

import (
	"context"

	"roomdisplay/core/database"
	"roomdisplay/core/logger"
	"roomdisplay/modules/booking/controller"
	"roomdisplay/modules/booking/repository"
	"roomdisplay/modules/booking/router"
	bookingService "roomdisplay/modules/booking/service"
	providersvc "roomdisplay/modules/provider/service"
	roomService "roomdisplay/modules/room/service"
	settingsService "roomdisplay/modules/settings/service"

	"github.com/labstack/echo/v4"
)

// Init wires the booking coordinator. db may be nil; the audit trail is
// optional and everything else is stateless.
func Init(e *echo.Echo, db *database.Database, factory *providersvc.Factory, roomSvc *roomService.Service, settingsSvc *settingsService.Service) {
	var audit bookingService.AuditRecorder
	if db != nil {
		repo := repository.NewAuditRepository(db)
		if err := repo.EnsureSchema(context.Background()); err != nil {
			logger.Warn("Booking:Init:AuditSchemaFailed", "error", err)
		} else {
			audit = repo
		}
	}

	coord := bookingService.NewCoordinator(factory, roomSvc, settingsSvc, audit)
	ctrl := controller.NewBookingController(coord)
	router.NewBookingRouter(ctrl).Setup(e)
}
