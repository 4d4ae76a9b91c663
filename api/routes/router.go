package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tripnest/tripnest-backend/api/controllers"
	"github.com/tripnest/tripnest-backend/api/middleware"
	"github.com/tripnest/tripnest-backend/internal/auth"
	"github.com/tripnest/tripnest-backend/internal/groups"
	"github.com/tripnest/tripnest-backend/internal/members"
	"github.com/tripnest/tripnest-backend/internal/posts"
	"github.com/tripnest/tripnest-backend/pkg/config"
	"github.com/tripnest/tripnest-backend/pkg/db"
	"github.com/tripnest/tripnest-backend/pkg/logger"
	"github.com/tripnest/tripnest-backend/pkg/metrics"
	"github.com/tripnest/tripnest-backend/pkg/redis"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config     *config.Config
	Logger     *logger.Logger
	DB         db.Pinger
	Redis      *redis.Client
	Registry   *prometheus.Registry
	Metrics    *metrics.HTTPMetrics
	Resolver   *members.Resolver
	Reconciler *members.Reconciler
	Gate       *members.Gate
	Auth       *auth.Service
	Groups     *groups.Service
	Posts      *posts.Service
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(d.Logger),
		middleware.RequestID(d.Logger),
		middleware.Logging(d.Logger),
		middleware.CORS(),
	)
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}

	rateLimited := func(policy middleware.AuthRateLimitPolicy) func(http.Handler) http.Handler {
		if d.Redis == nil {
			return func(next http.Handler) http.Handler { return next }
		}
		return middleware.AuthRateLimit(policy, d.Redis, d.Logger)
	}
	loginPolicy := middleware.AuthRateLimitPolicy{
		Name:       "login",
		Window:     d.Config.AuthRateLimit.LoginWindow,
		IPLimit:    d.Config.AuthRateLimit.LoginIPLimit,
		EmailLimit: d.Config.AuthRateLimit.LoginEmailLimit,
	}
	registerPolicy := middleware.AuthRateLimitPolicy{
		Name:       "register",
		Window:     d.Config.AuthRateLimit.RegisterWindow,
		IPLimit:    d.Config.AuthRateLimit.RegisterIPLimit,
		EmailLimit: d.Config.AuthRateLimit.RegisterEmailLimit,
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(d.Config))
		r.Get("/ready", controllers.HealthReady(d.Config, d.Logger, d.DB, d.Redis))
	})

	if d.Registry != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(d.Registry))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(rateLimited(registerPolicy)).Post("/register", controllers.AuthRegister(d.Auth, d.Logger))
		r.With(rateLimited(loginPolicy)).Post("/login", controllers.AuthLogin(d.Auth, d.Logger))
		r.Post("/logout", controllers.AuthLogout(d.Auth, d.Logger))
		r.Get("/me", controllers.AuthMe(d.Auth, d.Logger))
		r.Patch("/me", controllers.AuthUpdateProfile(d.Auth, d.Logger))
		r.Post("/me/password", controllers.AuthChangePassword(d.Auth, d.Logger))
		r.Get("/me/groups", controllers.AuthMyGroups(d.Auth, d.Logger))
	})

	r.Route("/api/v1/groups", func(r chi.Router) {
		r.Post("/", controllers.GroupCreate(d.Groups, d.Logger))
		r.Get("/by-slug/{slug}", controllers.GroupGet(d.Groups, d.Logger))
		r.Post("/by-slug/{slug}/join", controllers.GroupJoin(d.Reconciler, d.Logger))

		r.Route("/{groupID}", func(r chi.Router) {
			r.Patch("/", controllers.GroupUpdate(d.Groups, d.Logger))
			r.Get("/me", controllers.MemberMe(d.Resolver, d.Logger))

			r.Route("/members", func(r chi.Router) {
				r.Get("/", controllers.MemberList(d.Groups, d.Logger))
				r.Post("/", controllers.MemberEstablish(d.Reconciler, d.Logger))
				r.Post("/{memberID}/toggle-admin", controllers.MemberToggleAdmin(d.Gate, d.Logger))
				r.Post("/{memberID}/revoke-sessions", controllers.MemberRevokeSessions(d.Gate, d.Logger))
				r.Delete("/{memberID}", controllers.MemberDelete(d.Gate, d.Logger))
			})

			r.Route("/posts", func(r chi.Router) {
				r.Get("/", controllers.PostList(d.Posts, d.Logger))
				r.Post("/", controllers.PostCreate(d.Posts, d.Logger))

				r.Route("/{postID}", func(r chi.Router) {
					r.Delete("/", controllers.PostDelete(d.Posts, d.Logger))
					r.Get("/comments", controllers.CommentList(d.Posts, d.Logger))
					r.Post("/comments", controllers.CommentCreate(d.Posts, d.Logger))
					r.Delete("/comments/{commentID}", controllers.CommentDelete(d.Posts, d.Logger))
					r.Get("/reactions", controllers.ReactionList(d.Posts, d.Logger))
					r.Post("/reactions", controllers.ReactionToggle(d.Posts, d.Logger))
				})
			})
		})
	})

	return r
}
