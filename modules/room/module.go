package room

import (
	"roomdisplay/modules/room/controller"
	"roomdisplay/modules/room/router"
	"roomdisplay/modules/room/service"
	syncservice "roomdisplay/modules/sync/service"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Echo, roomSvc *service.Service, sched *syncservice.Scheduler) {
	ctrl := controller.NewRoomController(roomSvc, sched)
	router.NewRoomRouter(ctrl).Setup(e)
}
