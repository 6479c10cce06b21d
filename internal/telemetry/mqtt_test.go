package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/markusressel/vent2go/internal/alarm"
	"github.com/markusressel/vent2go/internal/configuration"
	"github.com/markusressel/vent2go/internal/values"
	"github.com/stretchr/testify/assert"
)

type fakeToken struct {
	err error
}

func (t fakeToken) Wait() bool                     { return true }
func (t fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t fakeToken) Done() <-chan struct{} {
	done := make(chan struct{})
	close(done)
	return done
}
func (t fakeToken) Error() error { return t.err }

// fakeClient records publications, all other methods of mqtt.Client are not used
type fakeClient struct {
	mqtt.Client

	mu        sync.Mutex
	published map[string][]byte
	err       error
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.published[topic] = payload.([]byte)
	return fakeToken{err: c.err}
}

type fakeMessage struct {
	mqtt.Message
	payload []byte
}

func (m fakeMessage) Payload() []byte { return m.payload }

type fakeVentilator struct {
	controls map[values.ValueName]float64
}

func (v *fakeVentilator) GetSensors() values.SensorValues { return values.NewSensorValues() }
func (v *fakeVentilator) GetAlarms() *alarm.Active        { return nil }

func (v *fakeVentilator) SetControl(setting values.ControlSetting) error {
	if !values.IsControl(setting.Name) {
		return fmt.Errorf("unknown control: %s", setting.Name)
	}
	v.controls[setting.Name] = setting.Value
	return nil
}

func (v *fakeVentilator) GetControl(name values.ValueName) (values.ControlSetting, error) {
	return values.ControlSetting{Name: name, Value: v.controls[name]}, nil
}

func createTestPublisher() (*Publisher, *fakeClient, *fakeVentilator) {
	ventilator := &fakeVentilator{controls: map[values.ValueName]float64{}}
	client := &fakeClient{published: map[string][]byte{}}
	p := &Publisher{
		config: configuration.MqttConfig{
			TopicPrefix: "ward1/bed3",
			Qos:         1,
		},
		ventilator: ventilator,
		client:     client,
	}
	return p, client, ventilator
}

func TestPublisher_PublishState(t *testing.T) {
	// GIVEN
	p, client, _ := createTestPublisher()

	// WHEN
	err := p.PublishState()

	// THEN
	assert.NoError(t, err)
	assert.Contains(t, client.published, "ward1/bed3/sensors")
	assert.Equal(t, "{}", string(client.published["ward1/bed3/alarms"]))
	assert.Equal(t, uint64(2), p.Published())
}

func TestPublisher_PublishState_Error(t *testing.T) {
	// GIVEN
	p, client, _ := createTestPublisher()
	client.err = errors.New("broker gone")

	// WHEN
	err := p.PublishState()

	// THEN
	assert.Error(t, err)
	assert.Equal(t, uint64(2), p.Failed())
}

func TestPublisher_HandleControl(t *testing.T) {
	// GIVEN
	p, client, ventilator := createTestPublisher()

	// WHEN
	p.handleControl(nil, fakeMessage{payload: []byte(`{"name": "PEEP", "value": 7}`)})

	// THEN
	assert.Equal(t, 7.0, ventilator.controls[values.PEEP])
	var result ControlResult
	assert.NoError(t, json.Unmarshal(client.published["ward1/bed3/control/result"], &result))
	assert.True(t, result.Success)
	assert.Equal(t, 7.0, *result.Value)
}

func TestPublisher_HandleControl_Malformed(t *testing.T) {
	// GIVEN
	p, client, _ := createTestPublisher()

	// WHEN
	p.handleControl(nil, fakeMessage{payload: []byte(`not json`)})

	// THEN
	var result ControlResult
	assert.NoError(t, json.Unmarshal(client.published["ward1/bed3/control/result"], &result))
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
}

func TestPublisher_HandleControl_Unknown(t *testing.T) {
	// GIVEN
	p, client, _ := createTestPublisher()

	// WHEN
	p.handleControl(nil, fakeMessage{payload: []byte(`{"name": "VTE", "value": 1}`)})

	// THEN
	var result ControlResult
	assert.NoError(t, json.Unmarshal(client.published["ward1/bed3/control/result"], &result))
	assert.False(t, result.Success)
	assert.Equal(t, values.Vte, result.Name)
}

func TestPublisher_Topic_NoPrefix(t *testing.T) {
	// GIVEN
	p := &Publisher{}

	// WHEN
	result := p.topic(TopicSensors)

	// THEN
	assert.Equal(t, "sensors", result)
}
