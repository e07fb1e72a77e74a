// Package redis opens go-redis clients from environment configuration and
// exposes a health probe. The session cache backend in
// pkg/session/redisstore runs on the client returned by Connect.
package redis
