package configuration

// ProfilingConfig exposes the pprof endpoints of the daemon
type ProfilingConfig struct {
	Enabled bool   `json:"enabled"`
	Host    string `json:"host"`
	Port    int    `json:"port,omitempty"`
}
