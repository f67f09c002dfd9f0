package router

import (
	"roomdisplay/modules/realtime/controller"

	"github.com/labstack/echo/v4"
)

type RealtimeRouter struct {
	Controller *controller.WSController
}

func NewRealtimeRouter(ctrl *controller.WSController) *RealtimeRouter {
	return &RealtimeRouter{Controller: ctrl}
}

func (r *RealtimeRouter) Setup(e *echo.Echo) {
	e.GET("/ws", r.Controller.Serve)
}
