package router

import (
	"roomdisplay/modules/room/controller"

	"github.com/labstack/echo/v4"
)

type RoomRouter struct {
	Controller *controller.RoomController
}

func NewRoomRouter(ctrl *controller.RoomController) *RoomRouter {
	return &RoomRouter{Controller: ctrl}
}

func (r *RoomRouter) Setup(e *echo.Echo) {
	v1 := e.Group("/api/v1")
	v1.GET("/roomlists", r.Controller.ListRoomLists)
	v1.GET("/rooms", r.Controller.ListRooms)
	v1.GET("/rooms/:alias", r.Controller.GetRoom)
}
