package router

import (
	"roomdisplay/modules/sync/controller"

	"github.com/labstack/echo/v4"
)

type SyncRouter struct {
	Controller *controller.StatusController
}

func NewSyncRouter(ctrl *controller.StatusController) *SyncRouter {
	return &SyncRouter{Controller: ctrl}
}

func (r *SyncRouter) Setup(e *echo.Echo) {
	e.GET("/api/v1/sync/status", r.Controller.SyncStatus)
}
