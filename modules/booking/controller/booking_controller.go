package controller

import (
	"roomdisplay/core/controller"
	"roomdisplay/core/errors"
	"roomdisplay/modules/booking/dto"
	"roomdisplay/modules/booking/service"

	"github.com/labstack/echo/v4"
)

type BookingController struct {
	controller.BaseController
	Coordinator *service.Coordinator
}

func NewBookingController(coord *service.Coordinator) *BookingController {
	return &BookingController{
		BaseController: controller.NewBaseController(),
		Coordinator:    coord,
	}
}

func (b *BookingController) BookRoom(c echo.Context) error {
	roomKey := c.Param("roomId")
	var req dto.BookRoomRequest
	if err := c.Bind(&req); err != nil {
		return b.ErrorResponse(c, errors.NewAppError(errors.ErrInvalidInput, "invalid request body", err))
	}

	res, appErr := b.Coordinator.BookRoom(c.Request().Context(), roomKey, &req)
	if appErr != nil {
		return b.ErrorResponse(c, appErr)
	}
	return b.SuccessResponse(c, res, "room booked")
}

func (b *BookingController) ExtendMeeting(c echo.Context) error {
	roomKey := c.Param("roomId")
	var req dto.ExtendMeetingRequest
	if err := c.Bind(&req); err != nil {
		return b.ErrorResponse(c, errors.NewAppError(errors.ErrInvalidInput, "invalid request body", err))
	}

	res, appErr := b.Coordinator.ExtendMeeting(c.Request().Context(), roomKey, &req)
	if appErr != nil {
		return b.ErrorResponse(c, appErr)
	}
	return b.SuccessResponse(c, res, "meeting extended")
}
