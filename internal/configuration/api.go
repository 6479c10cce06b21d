package configuration

import "time"

type ApiConfig struct {
	Enabled bool   `json:"enabled"`
	Host    string `json:"host"`
	Port    int    `json:"port"`
}

type StatisticsConfig struct {
	Enabled bool `json:"enabled"`
	Port    int  `json:"port"`
}

type MqttConfig struct {
	Enabled bool `json:"enabled"`
	// f.ex. tcp://localhost:1883
	Broker   string `json:"broker"`
	ClientId string `json:"clientId"`
	Username string `json:"username"`
	Password string `json:"password"`
	// all topics are prefixed with this value
	TopicPrefix string `json:"topicPrefix"`
	// interval at which sensor values and alarms are published
	PublishInterval time.Duration `json:"publishInterval"`
	Qos             byte          `json:"qos"`
}

type WatchdogConfig struct {
	Enabled bool `json:"enabled"`
	// Interval at which the control loop heartbeat is checked.
	PollInterval time.Duration `json:"pollInterval"`
	// Time without progress of the loop counter, after which the loop is interrupted.
	StallTimeout time.Duration `json:"stallTimeout"`
}
