package controller

import (
	"roomdisplay/core/controller"
	"roomdisplay/modules/sync/service"

	"github.com/labstack/echo/v4"
)

type StatusController struct {
	controller.BaseController
	Scheduler *service.Scheduler
}

func NewStatusController(sched *service.Scheduler) *StatusController {
	return &StatusController{
		BaseController: controller.NewBaseController(),
		Scheduler:      sched,
	}
}

func (s *StatusController) SyncStatus(c echo.Context) error {
	return s.SuccessResponse(c, s.Scheduler.HealthSnapshot(), "sync status")
}
