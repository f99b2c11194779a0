// Package config loads environment-based configuration structs.
//
// Configuration is described by plain structs tagged for
// github.com/caarlos0/env. A .env file in the working directory is loaded
// once per process before the first parse, which keeps local development
// setups working without exporting variables by hand.
//
// # Usage
//
//	type RetryConfig struct {
//	    Interval time.Duration `env:"NOTIFY_RETRY_INTERVAL" envDefault:"30s"`
//	    MaxInFlight int       `env:"NOTIFY_MAX_IN_FLIGHT" envDefault:"16"`
//	}
//
//	var cfg RetryConfig
//	if err := config.Load(&cfg); err != nil {
//	    // handle error
//	}
package config
