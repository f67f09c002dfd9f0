package middleware

import (
	"time"

	"roomdisplay/core/constants"
	"roomdisplay/core/logger"
	"roomdisplay/core/utils"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// RequestID tags every request so display clients can be correlated in logs.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = utils.GenerateID()
			}
			c.Set(constants.ContextRequestID, id)
			c.Response().Header().Set(echo.HeaderXRequestID, id)
			return next(c)
		}
	}
}

func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			reqID, _ := c.Get(constants.ContextRequestID).(string)
			logger.Info("HTTP:Request",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", c.Response().Status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", reqID,
			)
			return err
		}
	}
}

func Recover() echo.MiddlewareFunc {
	return echomw.Recover()
}

func CORS() echo.MiddlewareFunc {
	return echomw.CORS()
}
