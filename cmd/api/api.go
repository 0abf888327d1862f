package main

import (
	"context"
	"errors"
	"expvar"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"advisoret/internal/auth"
	"advisoret/internal/cache"
	"advisoret/internal/mailer"
	"advisoret/internal/notifications"
	"advisoret/internal/ratelimiter"
	"advisoret/internal/store"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	hashids "github.com/speps/go-hashids/v2"
	"go.uber.org/zap"
)

type application struct {
	config        config
	store         store.Storage
	logger        *zap.SugaredLogger
	cld           *cloudinary.Cloudinary
	counts        *cache.Counts
	mailer        mailer.Client
	push          notifications.PushSender
	authenticator auth.Authenticator
	rateLimiter   *ratelimiter.FixedWindowRateLimiter
	shareCodes    *hashids.HashID
}

type config struct {
	addr        string
	db          dbConfig
	env         string
	apiURL      string
	mail        mailConfig
	frontendURL string
	auth        authConfig
	redisAddr   string
	redisPass   string
	rateLimiter ratelimiter.Config
}

type authConfig struct {
	basic basicConfig
	token tokenConfig
}

type tokenConfig struct {
	secret          string
	refreshSecret   string
	accessTokenExp  time.Duration
	refreshTokenExp time.Duration
	iss             string
}

type basicConfig struct {
	user string
	pass string
}

type mailConfig struct {
	exp       time.Duration
	fromEmail string
	smtp      smtpConfig
}

type smtpConfig struct {
	host     string
	port     int
	username string
	password string
}

type dbConfig struct {
	addr        string
	maxConns    int32
	maxIdleTime string
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.With(app.BasicAuthMiddleware()).Get("/health", app.healthCheckHandler)
		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)

		// Public routes
		r.Route("/authentication", func(r chi.Router) {
			r.Post("/user", app.registerUserHandler)
			r.Post("/token", app.createTokenHandler)
			r.Post("/refresh", app.refreshTokenHandler)
			r.Post("/code", app.requestLoginCodeHandler)
			r.Post("/code/verify", app.verifyLoginCodeHandler)
		})
		r.Put("/users/activate/{token}", app.activateUserHandler)

		r.Route("/venues", func(r chi.Router) {
			r.Get("/", app.listVenuesHandler)
			r.Get("/nearby", app.nearbyVenuesHandler)
			r.Get("/code/{code}", app.resolveShareCodeHandler)
			r.Route("/{venueID}", func(r chi.Router) {
				r.Get("/", app.getVenueHandler)
				r.Get("/ratings", app.getVenueRatingsHandler)

				r.Group(func(r chi.Router) {
					r.Use(app.AuthTokenMiddleware)
					r.Post("/ratings", app.createVenueRatingHandler)
					r.Post("/reports", app.createVenueReportHandler)
				})

				r.Group(func(r chi.Router) {
					r.Use(app.AuthTokenMiddleware, app.RequireAdmin)
					r.Patch("/", app.updateVenueHandler)
					r.Post("/cover", app.uploadVenueCoverHandler)
					r.Delete("/cover", app.deleteVenueCoverHandler)
				})
			})
		})

		r.Route("/criteria", func(r chi.Router) {
			r.Get("/{productType}", app.listCriteriaHandler)
		})

		r.Route("/rankings", func(r chi.Router) {
			r.Get("/monthly", app.monthlyRankingHandler)
			r.Get("/bayesian", app.bayesianRankingHandler)
		})

		r.Route("/ratings/{ratingID}", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Delete("/", app.deleteRatingHandler)
			r.Put("/kudos", app.toggleKudosHandler)
			r.Get("/kudos", app.getKudosHandler)
		})

		r.Route("/proposals", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.With(app.RateLimiterMiddleware).Post("/", app.createProposalHandler)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Get("/me", app.currentUserHandler)
			r.Post("/logout", app.logoutHandler)
			r.Put("/", app.updateProfileHandler)
			r.Post("/avatar", app.uploadAvatarHandler)
			r.Post("/push-token", app.registerPushTokenHandler)
			r.Delete("/push-token", app.removePushTokenHandler)

			r.Route("/{userID}", func(r chi.Router) {
				r.Get("/", app.getProfileHandler)
				r.Get("/followers", app.listFollowersHandler)
				r.Get("/following", app.listFollowingHandler)
				r.Put("/follow", app.followUserHandler)
				r.Put("/unfollow", app.unfollowUserHandler)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware, app.RequireAdmin)
			r.Get("/pending-count", app.pendingCountHandler)
			r.Route("/proposals", func(r chi.Router) {
				r.Get("/", app.adminListProposalsHandler)
				r.Get("/{id}", app.adminGetProposalHandler)
				r.Post("/{id}/approve", app.adminApproveProposalHandler)
				r.Post("/{id}/reject", app.adminRejectProposalHandler)
			})
			r.Route("/reports", func(r chi.Router) {
				r.Get("/", app.adminListReportsHandler)
				r.Post("/{id}/resolve", app.adminResolveReportHandler)
			})
		})
	})
	return r
}

func (app *application) run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	// Implementing graceful shutdown
	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
