package config

/* --------------------------------- Metrics Config Struct -------------------------------- */

// MetricsConfig configures the optional standalone servers.
// Empty addresses disable the corresponding server.
type MetricsConfig struct {
	// Addr serves /metrics, e.g. ":9090".
	Addr string `yaml:"addr"`
	// PprofAddr serves /debug/pprof, e.g. "localhost:6060".
	PprofAddr string `yaml:"pprof_addr"`
}
