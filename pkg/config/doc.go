// Package config populates configuration structs from environment variables.
//
// Struct fields are described with github.com/caarlos0/env tags. A .env file
// in the working directory (or the files passed to WithEnvFiles) is merged
// into the process environment the first time Load runs; variables that are
// already set are never overwritten.
//
//	type Config struct {
//	    Addr string `env:"HTTP_ADDR" envDefault:":8080"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
package config
