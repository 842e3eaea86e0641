package server

import (
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SessionConfig holds per-session configuration.
type SessionConfig struct {
	// ReadTimeout is the maximum time to wait for a message from the
	// client. Default: 60 seconds.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum time to wait when sending a message.
	// Default: 10 seconds.
	WriteTimeout time.Duration

	// HeartbeatInterval is how often the server pings the client.
	// Default: 30 seconds.
	HeartbeatInterval time.Duration

	// MaxInFlight is the maximum number of concurrently running dispatch
	// goroutines per session. Further events are dropped with an error
	// frame. Default: 256.
	MaxInFlight int

	// MaxMessageSize is the maximum inbound message size in bytes.
	// Default: 1 MB.
	MaxMessageSize int64
}

// DefaultSessionConfig returns the default session configuration.
func DefaultSessionConfig() *SessionConfig {
	return &SessionConfig{
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		HeartbeatInterval: 30 * time.Second,
		MaxInFlight:       256,
		MaxMessageSize:    1 << 20,
	}
}

// ServerConfig holds server-wide configuration.
type ServerConfig struct {
	// Address is the listen address. Default: ":8420".
	Address string

	// ReadBufferSize / WriteBufferSize size the websocket buffers.
	// Default: 4096 each.
	ReadBufferSize  int
	WriteBufferSize int

	// CheckOrigin validates the websocket upgrade origin.
	// Default: same-host check.
	CheckOrigin func(r *http.Request) bool

	// SessionConfig applies to every session created by this server.
	SessionConfig *SessionConfig

	// ShutdownTimeout bounds graceful shutdown. Default: 10 seconds.
	ShutdownTimeout time.Duration

	// ReadHeaderTimeout protects the HTTP server from slowloris clients.
	// Default: 10 seconds.
	ReadHeaderTimeout time.Duration

	// MetricsNamespace is the Prometheus namespace. Default: "glint".
	MetricsNamespace string

	// MetricsRegistry is the Prometheus registry metrics register with.
	// Default: prometheus.DefaultRegisterer.
	MetricsRegistry prometheus.Registerer

	// DisableMetrics turns off metric collection entirely.
	DisableMetrics bool
}

// DefaultServerConfig returns the default server configuration.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Address:           ":8420",
		ReadBufferSize:    4096,
		WriteBufferSize:   4096,
		CheckOrigin:       sameHostOrigin,
		SessionConfig:     DefaultSessionConfig(),
		ShutdownTimeout:   10 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		MetricsNamespace:  "glint",
	}
}

// withDefaults fills zero-valued fields from the defaults.
func (c *ServerConfig) withDefaults() *ServerConfig {
	if c == nil {
		return DefaultServerConfig()
	}
	defaults := DefaultServerConfig()
	if c.Address == "" {
		c.Address = defaults.Address
	}
	if c.ReadBufferSize == 0 {
		c.ReadBufferSize = defaults.ReadBufferSize
	}
	if c.WriteBufferSize == 0 {
		c.WriteBufferSize = defaults.WriteBufferSize
	}
	if c.CheckOrigin == nil {
		c.CheckOrigin = defaults.CheckOrigin
	}
	if c.SessionConfig == nil {
		c.SessionConfig = defaults.SessionConfig
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if c.ReadHeaderTimeout == 0 {
		c.ReadHeaderTimeout = defaults.ReadHeaderTimeout
	}
	if c.MetricsNamespace == "" {
		c.MetricsNamespace = defaults.MetricsNamespace
	}
	return c
}

// sameHostOrigin accepts requests with no Origin header or an Origin whose
// host matches the request host.
func sameHostOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return u.Host == r.Host
}
