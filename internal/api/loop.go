package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type LoopState struct {
	Running   bool   `json:"running"`
	Heartbeat uint64 `json:"heartbeat"`
}

func registerLoopEndpoints(rest *echo.Echo, ventilator Ventilator) {
	group := rest.Group("/loop")

	state := func(c echo.Context) error {
		return c.JSONPretty(http.StatusOK, LoopState{
			Running:   ventilator.IsRunning(),
			Heartbeat: ventilator.GetHeartbeat(),
		}, indentationChar)
	}

	group.GET("/", state)
	group.POST("/start/", func(c echo.Context) error {
		ventilator.Start()
		return state(c)
	})
	group.POST("/stop/", func(c echo.Context) error {
		ventilator.Stop()
		return state(c)
	})
	group.POST("/interrupt/", func(c echo.Context) error {
		ventilator.Interrupt()
		return state(c)
	})
}
