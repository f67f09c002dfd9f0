package router

import (
	"roomdisplay/modules/booking/controller"

	"github.com/labstack/echo/v4"
)

type BookingRouter struct {
	Controller *controller.BookingController
}

func NewBookingRouter(ctrl *controller.BookingController) *BookingRouter {
	return &BookingRouter{Controller: ctrl}
}

func (r *BookingRouter) Setup(e *echo.Echo) {
	v1 := e.Group("/api/v1")
	v1.POST("/rooms/:roomId/book", r.Controller.BookRoom)
	v1.POST("/rooms/:roomId/extend", r.Controller.ExtendMeeting)
}
