// Command server runs the session service: login, logout, session rotation
// and role-gated routes over PostgreSQL with an optional Redis cache.
package main

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/sessionguard/pkg/audit"
	"github.com/dmitrymomot/sessionguard/pkg/clientip"
	"github.com/dmitrymomot/sessionguard/pkg/cookie"
	"github.com/dmitrymomot/sessionguard/pkg/httpserver"
	"github.com/dmitrymomot/sessionguard/pkg/identity"
	"github.com/dmitrymomot/sessionguard/pkg/logger"
	"github.com/dmitrymomot/sessionguard/pkg/pg"
	"github.com/dmitrymomot/sessionguard/pkg/ratelimiter"
	"github.com/dmitrymomot/sessionguard/pkg/rbac"
	"github.com/dmitrymomot/sessionguard/pkg/redis"
	"github.com/dmitrymomot/sessionguard/pkg/requestid"
	"github.com/dmitrymomot/sessionguard/pkg/session"
	"github.com/dmitrymomot/sessionguard/pkg/session/pgstore"
	"github.com/dmitrymomot/sessionguard/pkg/session/redisstore"
)

//go:embed roles.yaml
var defaultRoles []byte

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("server exited", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	log := logger.New(
		logger.WithEnvironment(cfg.App.Environment, cfg.App.Name),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)
	logger.SetAsDefault(log)

	pool, err := pg.Connect(ctx, cfg.PG)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := pg.Migrate(ctx, pool, cfg.PG, log); err != nil {
		return err
	}

	users := identity.NewPostgresProvider(pool)
	if err := seedAdmin(ctx, users, cfg.App, log); err != nil {
		return err
	}

	policy, err := loadPolicy(ctx, cfg.App.RolesFile, log)
	if err != nil {
		return err
	}

	cookies, err := cookie.NewFromConfig(cfg.Cookie)
	if err != nil {
		return err
	}

	ips, err := clientip.New(cfg.App.TrustedProxies...)
	if err != nil {
		return err
	}

	attempts := ratelimiter.NewMemoryStore()
	defer func() { _ = attempts.Close() }()
	limiter, err := ratelimiter.NewBucket(attempts, cfg.Login)
	if err != nil {
		return err
	}

	readiness := []func(context.Context) error{pg.Healthcheck(pool)}
	opts := []session.Option{
		session.WithConfig(cfg.Session),
		session.WithLogger(log),
		session.WithDurable(pgstore.New(pool)),
		session.WithCookieManager(cookies),
		session.WithIdentityProvider(users),
		session.WithAuthenticator(identity.NewAuthenticator(users)),
		session.WithAuditLogger(audit.NewLogger(
			audit.NewSlogStorage(log.With(logger.Component("audit"))),
			audit.WithRequestIDExtractor(requestid.Lookup),
			audit.WithIPExtractor(clientip.Lookup),
		)),
	}
	if cfg.App.UseRedis {
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()
		opts = append(opts, session.WithCache(redisstore.New(client)))
		readiness = append(readiness, redis.Healthcheck(client))
	}

	mgr := session.New(opts...)

	server := httpserver.New(cfg.HTTP,
		httpserver.WithLogger(log),
		httpserver.WithShutdownHook(func(context.Context) error { return mgr.Close() }),
	)
	return server.Run(ctx, router(routerDeps{
		mgr:       mgr,
		policy:    policy,
		ips:       ips,
		limiter:   limiter,
		log:       log,
		readiness: readiness,
	}))
}

type routerDeps struct {
	mgr       *session.Manager
	policy    *rbac.Policy
	ips       *clientip.Resolver
	limiter   *ratelimiter.Bucket
	log       *slog.Logger
	readiness []func(context.Context) error
}

func router(d routerDeps) http.Handler {
	mgr, policy := d.mgr, d.policy
	h := &handlers{mgr: mgr, log: d.log}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestid.Middleware)
	r.Use(d.ips.Middleware)

	r.Get("/health/live", httpserver.LivenessHandler())
	r.Get("/health/ready", httpserver.ReadinessHandler(d.log, d.readiness...))

	r.With(ratelimiter.Middleware(d.limiter, ratelimiter.ByIP, d.log)).Post("/login", h.login)
	r.Post("/logout", h.logout)

	r.Group(func(r chi.Router) {
		r.Use(mgr.RequireAuth)
		r.Use(mgr.RequireCSRF)

		r.Get("/me", h.me)
		r.Post("/session/rotate", h.rotate)
		r.With(policy.RequirePermissions("sessions.manage")).Post("/session/logout-everywhere", h.logoutEverywhere)

		r.Route("/admin", func(r chi.Router) {
			r.Use(policy.RequireRoles("admin"))
			r.Delete("/users/{userID}/sessions", func(w http.ResponseWriter, r *http.Request) {
				h.revokeUserSessions(w, r, chi.URLParam(r, "userID"))
			})
		})
	})

	return r
}

func loadPolicy(ctx context.Context, path string, log *slog.Logger) (*rbac.Policy, error) {
	var (
		src rbac.RoleSource
		err error
	)
	if path != "" {
		src, err = rbac.NewYAMLSourceFromFile(path)
	} else {
		src, err = rbac.NewYAMLSource(bytes.NewReader(defaultRoles))
	}
	if err != nil {
		return nil, err
	}
	return rbac.NewPolicy(ctx, src, rbac.WithLogger(log))
}

func seedAdmin(ctx context.Context, users *identity.PostgresProvider, app AppConfig, log *slog.Logger) error {
	if app.SeedAdminEmail == "" || app.SeedAdminPassword == "" {
		return nil
	}
	_, err := users.Create(ctx, identity.Identity{Email: app.SeedAdminEmail, Role: "admin"}, app.SeedAdminPassword)
	if errors.Is(err, identity.ErrDuplicateEmail) {
		return nil
	}
	if err != nil {
		return err
	}
	log.InfoContext(ctx, "seeded admin user", slog.String("email", identity.NormalizeEmail(app.SeedAdminEmail)))
	return nil
}
