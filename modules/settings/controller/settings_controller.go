package controller

import (
	"encoding/json"
	"io"

	"roomdisplay/core/controller"
	"roomdisplay/core/errors"
	"roomdisplay/modules/settings/service"

	"github.com/labstack/echo/v4"
)

type SettingsController struct {
	controller.BaseController
	Service *service.Service
}

func NewSettingsController(svc *service.Service) *SettingsController {
	return &SettingsController{
		BaseController: controller.NewBaseController(),
		Service:        svc,
	}
}

func (s *SettingsController) Get(c echo.Context) error {
	return s.SuccessResponse(c, s.Service.Get(), "current settings")
}

func (s *SettingsController) Update(c echo.Context) error {
	kind := c.Param("kind")
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return s.ErrorResponse(c, errors.NewAppError(errors.ErrInvalidInput, "failed to read body", err))
	}

	updated, appErr := s.Service.Update(kind, json.RawMessage(body))
	if appErr != nil {
		return s.ErrorResponse(c, appErr)
	}
	return s.SuccessResponse(c, updated, "settings updated")
}
