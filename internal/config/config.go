package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	DatabasePath      string        `mapstructure:"database_path" yaml:"database_path"`

	JWTSecret   string        `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	JWTIssuer   string        `mapstructure:"jwt_issuer" yaml:"jwt_issuer"`
	JWTAudience string        `mapstructure:"jwt_audience" yaml:"jwt_audience"`
	JWTTTL      time.Duration `mapstructure:"jwt_ttl" yaml:"jwt_ttl"`

	// SendTimeout bounds the durable-store append during a send.
	SendTimeout time.Duration `mapstructure:"send_timeout" yaml:"send_timeout"`
	// WSMessageRateLimit caps inbound websocket frames per minute per
	// connection. Zero disables the limit.
	WSMessageRateLimit int `mapstructure:"ws_message_rate_limit" yaml:"ws_message_rate_limit"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		DatabasePath:      "messaging.db",

		JWTSecret:   "change-me",
		JWTIssuer:   "careerostad-messaging",
		JWTAudience: "careerostad",
		JWTTTL:      24 * time.Hour,

		SendTimeout:        5 * time.Second,
		WSMessageRateLimit: 120,
	}
}
