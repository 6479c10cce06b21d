package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/markusressel/vent2go/internal/alarm"
)

func registerAlarmEndpoints(rest *echo.Echo, ventilator Ventilator) {
	group := rest.Group("/alarms")

	group.GET("/", func(c echo.Context) error {
		active := ventilator.GetAlarms()
		if active == nil {
			active = &alarm.Active{}
		}
		return c.JSONPretty(http.StatusOK, active, indentationChar)
	})

	group.GET("/rules/", func(c echo.Context) error {
		return c.JSONPretty(http.StatusOK, alarm.DefaultRules.Sorted(), indentationChar)
	})

	// acknowledges an active technical alarm
	group.DELETE("/:"+urlParamType+"/", func(c echo.Context) error {
		alarmType := c.Param(urlParamType)
		if !ventilator.ClearAlarm(alarm.Type(alarmType)) {
			return returnNotFound(c, alarmType)
		}
		return c.NoContent(http.StatusNoContent)
	})
}
