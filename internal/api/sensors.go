package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func registerSensorEndpoints(rest *echo.Echo, ventilator Ventilator) {
	group := rest.Group("/sensors")

	// returns the most recent measurements of the control loop
	group.GET("/", func(c echo.Context) error {
		return c.JSONPretty(http.StatusOK, ventilator.GetSensors(), indentationChar)
	})

	// hands the archived breath waveforms over, each waveform is only returned once
	rest.GET("/waveforms/", func(c echo.Context) error {
		return c.JSONPretty(http.StatusOK, ventilator.GetPastWaveforms(), indentationChar)
	})
}
