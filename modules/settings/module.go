package settings

import (
	"roomdisplay/modules/settings/controller"
	"roomdisplay/modules/settings/router"
	"roomdisplay/modules/settings/service"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Echo, svc *service.Service) {
	ctrl := controller.NewSettingsController(svc)
	router.NewSettingsRouter(ctrl).Setup(e)
}
