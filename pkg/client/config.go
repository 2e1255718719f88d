package client

import "time"

// Config holds tunables for one client instance.
type Config struct {
	// AcceptVersion is the protocol version offered in CONNECT.
	// Default: "1.2".
	AcceptVersion string

	// VHost is the virtual host named in the CONNECT host header.
	// Default: "matchwire".
	VHost string

	// LogoutTimeout bounds how long Logout waits for the broker to
	// acknowledge the disconnect before the connection is discarded and the
	// session force-transitions to logged-out.
	// Default: 3 seconds.
	LogoutTimeout time.Duration

	// DisconnectOnError controls whether a broker ERROR frame terminates
	// the connection. Some brokers send non-fatal errors; set this to false
	// to keep the reader loop alive through them.
	// Default: true.
	DisconnectOnError bool

	// Debug enables verbose frame logging on the session.
	// Default: false.
	Debug bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		AcceptVersion:     "1.2",
		VHost:             "matchwire",
		LogoutTimeout:     3 * time.Second,
		DisconnectOnError: true,
	}
}

// Clone returns a copy of the Config.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// WithVHost sets the CONNECT virtual host and returns the config for chaining.
func (c *Config) WithVHost(vhost string) *Config {
	c.VHost = vhost
	return c
}

// WithLogoutTimeout sets the logout wait bound and returns the config for chaining.
func (c *Config) WithLogoutTimeout(d time.Duration) *Config {
	c.LogoutTimeout = d
	return c
}

// WithDisconnectOnError sets the ERROR frame policy and returns the config for chaining.
func (c *Config) WithDisconnectOnError(v bool) *Config {
	c.DisconnectOnError = v
	return c
}

// WithDebug sets verbose frame logging and returns the config for chaining.
func (c *Config) WithDebug(v bool) *Config {
	c.Debug = v
	return c
}
