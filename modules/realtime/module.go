package realtime

import (
	"roomdisplay/modules/realtime/controller"
	"roomdisplay/modules/realtime/hub"
	"roomdisplay/modules/realtime/router"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Echo, h *hub.Hub) {
	ctrl := controller.NewWSController(h)
	router.NewRealtimeRouter(ctrl).Setup(e)
}
