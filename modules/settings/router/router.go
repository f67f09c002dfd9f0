package router

import (
	"roomdisplay/modules/settings/controller"

	"github.com/labstack/echo/v4"
)

type SettingsRouter struct {
	Controller *controller.SettingsController
}

func NewSettingsRouter(ctrl *controller.SettingsController) *SettingsRouter {
	return &SettingsRouter{Controller: ctrl}
}

func (r *SettingsRouter) Setup(e *echo.Echo) {
	v1 := e.Group("/api/v1")
	v1.GET("/settings", r.Controller.Get)
	v1.PUT("/settings/:kind", r.Controller.Update)
}
