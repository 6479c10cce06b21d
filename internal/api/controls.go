package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/markusressel/vent2go/internal/control"
	"github.com/markusressel/vent2go/internal/values"
)

func registerControlEndpoints(rest *echo.Echo, ventilator Ventilator) {
	group := rest.Group("/controls")

	group.GET("/", func(c echo.Context) error {
		var result []values.ControlSetting
		for _, name := range values.ControlNames {
			setting, err := ventilator.GetControl(name)
			if err != nil {
				return err
			}
			result = append(result, setting)
		}
		return c.JSONPretty(http.StatusOK, result, indentationChar)
	})

	group.GET("/:"+urlParamName+"/", func(c echo.Context) error {
		name := c.Param(urlParamName)
		setting, err := ventilator.GetControl(values.ValueName(name))
		if errors.Is(err, control.ErrUnknownControl) {
			return returnNotFound(c, name)
		} else if err != nil {
			return err
		}
		return c.JSONPretty(http.StatusOK, setting, indentationChar)
	})

	group.POST("/", func(c echo.Context) error {
		var setting values.ControlSetting
		if err := c.Bind(&setting); err != nil {
			return returnBadRequest(c, err)
		}
		if err := ventilator.SetControl(setting); err != nil {
			return returnBadRequest(c, err)
		}
		updated, err := ventilator.GetControl(setting.Name)
		if err != nil {
			return err
		}
		return c.JSONPretty(http.StatusOK, updated, indentationChar)
	})
}
