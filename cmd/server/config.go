package main

import (
	"errors"

	"github.com/dmitrymomot/sessionguard/pkg/config"
	"github.com/dmitrymomot/sessionguard/pkg/cookie"
	"github.com/dmitrymomot/sessionguard/pkg/environment"
	"github.com/dmitrymomot/sessionguard/pkg/httpserver"
	"github.com/dmitrymomot/sessionguard/pkg/pg"
	"github.com/dmitrymomot/sessionguard/pkg/ratelimiter"
	"github.com/dmitrymomot/sessionguard/pkg/redis"
	"github.com/dmitrymomot/sessionguard/pkg/session"
)

// AppConfig is the process configuration.
type AppConfig struct {
	Name        string `env:"APP_NAME" envDefault:"sessionguard"`
	Environment string `env:"APP_ENV" envDefault:"development"`
	// RolesFile overrides the embedded role policy when set.
	RolesFile string `env:"APP_ROLES_FILE"`
	// TrustedProxies lists CIDRs whose forwarding headers are honored. Empty
	// means none; "*" trusts every peer.
	TrustedProxies []string `env:"APP_TRUSTED_PROXIES" envSeparator:","`
	// UseRedis puts a shared Redis cache in front of PostgreSQL.
	UseRedis bool `env:"APP_USE_REDIS" envDefault:"false"`

	SeedAdminEmail    string `env:"APP_SEED_ADMIN_EMAIL"`
	SeedAdminPassword string `env:"APP_SEED_ADMIN_PASSWORD"`
}

type settings struct {
	App     AppConfig
	HTTP    httpserver.Config
	Session session.Config
	Cookie  cookie.Config
	PG      pg.Config
	Redis   redis.Config
	Login   ratelimiter.Config
}

func loadSettings() (settings, error) {
	var s settings
	err := errors.Join(
		config.Load(&s.App),
		config.Load(&s.HTTP),
		config.Load(&s.Session),
		config.Load(&s.Cookie),
		config.Load(&s.PG),
		config.Load(&s.Redis),
		config.Load(&s.Login),
	)
	s.applyEnvironment()
	return s, err
}

// applyEnvironment forces Secure cookies in production whatever the cookie
// settings say.
func (s *settings) applyEnvironment() {
	if environment.Parse(s.App.Environment).IsProduction() {
		s.Cookie.Secure = true
		s.Session.SecureCookies = true
	}
}
