package sync

import (
	"roomdisplay/modules/sync/controller"
	"roomdisplay/modules/sync/router"
	"roomdisplay/modules/sync/service"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Echo, sched *service.Scheduler) {
	ctrl := controller.NewStatusController(sched)
	router.NewSyncRouter(ctrl).Setup(e)
}
