package controller

import (
	"roomdisplay/core/controller"
	"roomdisplay/modules/room/entity"
	"roomdisplay/modules/room/service"
	syncservice "roomdisplay/modules/sync/service"

	"github.com/labstack/echo/v4"
)

type RoomController struct {
	controller.BaseController
	RoomService *service.Service
	Scheduler   *syncservice.Scheduler
}

func NewRoomController(roomSvc *service.Service, sched *syncservice.Scheduler) *RoomController {
	return &RoomController{
		BaseController: controller.NewBaseController(),
		RoomService:    roomSvc,
		Scheduler:      sched,
	}
}

func (r *RoomController) ListRoomLists(c echo.Context) error {
	lists, appErr := r.RoomService.RoomLists(c.Request().Context())
	if appErr != nil {
		return r.ErrorResponse(c, appErr)
	}
	return r.SuccessResponse(c, lists, "room lists")
}

// ListRooms serves the last applied cycle's statuses. Before the first
// successful cycle it falls back to the bare roster so displays can render
// room names while the scheduler warms up.
func (r *RoomController) ListRooms(c echo.Context) error {
	statuses := r.Scheduler.Statuses()
	if len(statuses) > 0 {
		return r.SuccessResponse(c, statuses, "rooms")
	}

	rooms, appErr := r.RoomService.ActiveRooms(c.Request().Context())
	if appErr != nil {
		return r.ErrorResponse(c, appErr)
	}
	statuses = make([]entity.Status, 0, len(rooms))
	for _, rm := range rooms {
		statuses = append(statuses, entity.Status{Room: rm})
	}
	return r.SuccessResponse(c, statuses, "rooms")
}

func (r *RoomController) GetRoom(c echo.Context) error {
	alias := c.Param("alias")
	for _, st := range r.Scheduler.Statuses() {
		if st.Room.Alias == alias || st.Room.Email == alias {
			return r.SuccessResponse(c, st, "room")
		}
	}

	rm, appErr := r.RoomService.FindByAliasOrEmail(c.Request().Context(), alias)
	if appErr != nil {
		return r.ErrorResponse(c, appErr)
	}
	return r.SuccessResponse(c, entity.Status{Room: *rm}, "room")
}
