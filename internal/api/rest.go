package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/markusressel/vent2go/internal/alarm"
	"github.com/markusressel/vent2go/internal/control"
	"github.com/markusressel/vent2go/internal/values"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	urlParamName    = "name"
	urlParamType    = "type"
	indentationChar = "  "
)

type (
	Result struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	}
)

// Ventilator is the coordinator facing surface of the control module
type Ventilator interface {
	GetSensors() values.SensorValues
	GetAlarms() *alarm.Active
	ClearAlarm(alarmType alarm.Type) bool
	SetControl(setting values.ControlSetting) error
	GetControl(name values.ValueName) (values.ControlSetting, error)
	GetPastWaveforms() []control.Waveform
	GetHeartbeat() uint64
	IsRunning() bool
	Start()
	Stop()
	Interrupt()
}

// CreateRestService creates the REST interface of the given ventilator.
// Request metrics are registered with the given registerer.
func CreateRestService(ventilator Ventilator, registerer prometheus.Registerer) *echo.Echo {
	echoRest := CreateWebserver()

	echoRest.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "vent2go",
		Subsystem:  "api",
		Registerer: registerer,
	}))

	echoRest.GET("/alive/", isAlive)

	registerSensorEndpoints(echoRest, ventilator)
	registerAlarmEndpoints(echoRest, ventilator)
	registerControlEndpoints(echoRest, ventilator)
	registerLoopEndpoints(echoRest, ventilator)

	return echoRest
}

// returns an empty "ok" answer
func isAlive(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

// return a "not found" message
func returnNotFound(c echo.Context, id string) (err error) {
	return c.JSONPretty(http.StatusNotFound, &Result{
		Name:    "Not found",
		Message: "No item with id '" + id + "' found",
	}, indentationChar)
}

// return a "bad request" message
func returnBadRequest(c echo.Context, e error) (err error) {
	return c.JSONPretty(http.StatusBadRequest, &Result{
		Name:    "Bad Request",
		Message: e.Error(),
	}, indentationChar)
}
