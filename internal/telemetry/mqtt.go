package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/markusressel/vent2go/internal/alarm"
	"github.com/markusressel/vent2go/internal/configuration"
	"github.com/markusressel/vent2go/internal/ui"
	"github.com/markusressel/vent2go/internal/values"
)

const (
	TopicSensors       = "sensors"
	TopicAlarms        = "alarms"
	TopicControlSet    = "control/set"
	TopicControlResult = "control/result"

	connectTimeout = 5 * time.Second
	publishTimeout = 2 * time.Second
)

// Ventilator is the part of the control module exposed via MQTT
type Ventilator interface {
	GetSensors() values.SensorValues
	GetAlarms() *alarm.Active
	SetControl(setting values.ControlSetting) error
	GetControl(name values.ValueName) (values.ControlSetting, error)
}

// ControlResult is published in response to every received control command
type ControlResult struct {
	Name    values.ValueName `json:"name"`
	Success bool             `json:"success"`
	Error   string           `json:"error,omitempty"`
	Value   *float64         `json:"value,omitempty"`
}

// Publisher periodically publishes the measurements and alarms of the ventilator
// and applies control commands received from the broker.
type Publisher struct {
	config     configuration.MqttConfig
	ventilator Ventilator
	client     mqtt.Client

	published atomic.Uint64
	failed    atomic.Uint64
}

func NewPublisher(config configuration.MqttConfig, ventilator Ventilator) *Publisher {
	p := &Publisher{
		config:     config,
		ventilator: ventilator,
	}

	clientId := config.ClientId
	if len(clientId) <= 0 {
		clientId = "vent2go-" + uuid.NewString()
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(config.Broker)
	opts.SetClientID(clientId)
	opts.SetUsername(config.Username)
	opts.SetPassword(config.Password)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.OnConnect = func(c mqtt.Client) {
		ui.Info("Connected to MQTT broker %s", config.Broker)
		// subscriptions are lost on reconnect
		if err := p.subscribe(); err != nil {
			ui.Error("Unable to subscribe to control commands: %v", err)
		}
	}
	opts.OnConnectionLost = func(c mqtt.Client, err error) {
		ui.Warning("Lost connection to MQTT broker %s: %v", config.Broker, err)
	}

	p.client = mqtt.NewClient(opts)
	return p
}

func (p *Publisher) topic(name string) string {
	if len(p.config.TopicPrefix) <= 0 {
		return name
	}
	return fmt.Sprintf("%s/%s", p.config.TopicPrefix, name)
}

// Run connects to the broker and publishes until the context is cancelled
func (p *Publisher) Run(ctx context.Context) error {
	ui.Info("Connecting to MQTT broker %s", p.config.Broker)
	token := p.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		ui.Warning("MQTT broker not reachable yet, retrying in the background")
	} else if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connection failed: %w", err)
	}
	defer p.client.Disconnect(250)

	interval := p.config.PublishInterval
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if !p.client.IsConnected() {
				continue
			}
			if err := p.PublishState(); err != nil {
				ui.Warning("Unable to publish state: %v", err)
			}
		}
	}
}

// PublishState publishes the current measurements and alarms
func (p *Publisher) PublishState() error {
	sensors, err := json.Marshal(p.ventilator.GetSensors())
	if err != nil {
		return err
	}
	active := p.ventilator.GetAlarms()
	if active == nil {
		active = &alarm.Active{}
	}
	alarms, err := json.Marshal(active)
	if err != nil {
		return err
	}

	return errors.Join(
		p.publish(p.topic(TopicSensors), sensors),
		p.publish(p.topic(TopicAlarms), alarms),
	)
}

func (p *Publisher) publish(topic string, payload []byte) error {
	token := p.client.Publish(topic, p.config.Qos, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		p.failed.Add(1)
		return fmt.Errorf("publish to %s timed out", topic)
	}
	if err := token.Error(); err != nil {
		p.failed.Add(1)
		return fmt.Errorf("publish to %s failed: %w", topic, err)
	}
	p.published.Add(1)
	return nil
}

func (p *Publisher) subscribe() error {
	topic := p.topic(TopicControlSet)
	token := p.client.Subscribe(topic, p.config.Qos, p.handleControl)
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("subscription to %s timed out", topic)
	}
	if err := token.Error(); err != nil {
		return err
	}
	ui.Info("Listening for control commands on %s", topic)
	return nil
}

// handleControl applies a control setting received from the broker and publishes the result
func (p *Publisher) handleControl(_ mqtt.Client, message mqtt.Message) {
	result := p.applyControl(message.Payload())
	payload, err := json.Marshal(result)
	if err != nil {
		ui.Error("Unable to encode control result: %v", err)
		return
	}
	if err = p.publish(p.topic(TopicControlResult), payload); err != nil {
		ui.Warning("Unable to publish control result: %v", err)
	}
}

func (p *Publisher) applyControl(payload []byte) ControlResult {
	var setting values.ControlSetting
	if err := json.Unmarshal(payload, &setting); err != nil {
		ui.Warning("Received malformed control command: %v", err)
		return ControlResult{Error: err.Error()}
	}

	result := ControlResult{Name: setting.Name}
	if err := p.ventilator.SetControl(setting); err != nil {
		result.Error = err.Error()
		return result
	}
	current, err := p.ventilator.GetControl(setting.Name)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Success = true
	result.Value = &current.Value
	return result
}

func (p *Publisher) Published() uint64 {
	return p.published.Load()
}

func (p *Publisher) Failed() uint64 {
	return p.failed.Load()
}
